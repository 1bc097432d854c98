package payments

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func (p *Processor) subscribe(ctx context.Context, log *logrus.Entry, args *SubscribeInstructionArgs, accounts []*AccountInfo) error {
	ownerAccount := accounts[0]
	subscriptionAccount := accounts[1]
	merchantAccount := accounts[2]
	orderAccount := accounts[3]

	_, packageName, err := splitSubscriptionName(args.Name)
	if err != nil {
		return err
	}

	var merchant MerchantAccount
	if err := merchant.Unmarshal(merchantAccount.Data); err != nil {
		return err
	}
	if !merchant.IsInitialized {
		return ErrNotInitialized
	}

	var subscription SubscriptionAccount
	if err := subscription.Unmarshal(subscriptionAccount.Data); err != nil {
		return err
	}
	if subscription.IsInitialized {
		return ErrAlreadyInitialized
	}

	derived, err := GetSubscriptionAddress(ownerAccount.Key, args.Name, p.conf.ProgramID)
	if err != nil {
		return errors.Wrap(err, "failed to derive subscription address")
	}
	if err := assertDerivedAddress(subscriptionAccount.Key, derived, "subscription"); err != nil {
		return err
	}

	// The subscription binds strictly to a payment that already happened:
	// a Paid order whose data references this subscription's address.
	var order OrderAccount
	if err := order.Unmarshal(orderAccount.Data); err != nil {
		return err
	}
	if !order.IsInitialized {
		return ErrNotInitialized
	}
	if order.Status != OrderStatusPaid {
		return errors.Wrapf(ErrInvalidOrderStatus, "order is %s", order.Status)
	}
	if err := assertDerivedAddress(merchantAccount.Key, order.Merchant, "merchant"); err != nil {
		return err
	}
	if orderSubscriptionLink(order.Data) != base58.Encode(subscriptionAccount.Key) {
		return ErrInvalidSubscriptionLink
	}

	packages, err := parsePackages(merchant.Data)
	if err != nil {
		return err
	}
	pkg, err := findPackage(packages, packageName)
	if err != nil {
		return err
	}

	periodStart := p.clock.Now().Unix()
	periodEnd, ok := checkedAddI64(periodStart, pkg.Duration)
	if !ok {
		return ErrArithmeticOverflow
	}

	data, err := newSubscriptionData(args.Data, pkg)
	if err != nil {
		return err
	}

	record := SubscriptionAccount{
		IsInitialized: true,
		Status:        SubscriptionStatusInitialized,
		Owner:         ownerAccount.Key,
		Merchant:      merchantAccount.Key,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		Name:          args.Name,
		Data:          data,
	}

	if err := p.system.CreateAccount(ctx, ownerAccount.Key, subscriptionAccount.Key, uint64(record.Size()), p.conf.ProgramID); err != nil {
		return errors.Wrap(err, "failed to allocate subscription account")
	}
	subscriptionAccount.Owner = p.conf.ProgramID
	subscriptionAccount.Data = record.Marshal()

	log.WithFields(logrus.Fields{
		"subscription": base58.Encode(subscriptionAccount.Key),
		"package":      pkg.Name,
	}).Info("subscription created")
	return nil
}

func (p *Processor) renewSubscription(ctx context.Context, log *logrus.Entry, args *RenewSubscriptionInstructionArgs, accounts []*AccountInfo) error {
	ownerAccount := accounts[0]
	subscriptionAccount := accounts[1]
	merchantAccount := accounts[2]
	orderAccount := accounts[3]

	if args.Quantity <= 0 {
		return errors.Wrapf(ErrMalformedInstruction, "quantity %d", args.Quantity)
	}

	var subscription SubscriptionAccount
	if err := subscription.Unmarshal(subscriptionAccount.Data); err != nil {
		return err
	}
	if !subscription.IsInitialized {
		return ErrNotInitialized
	}
	if subscription.Status != SubscriptionStatusInitialized {
		return errors.Wrapf(ErrInvalidOrderStatus, "subscription is %s", subscription.Status)
	}
	if err := assertDerivedAddress(ownerAccount.Key, subscription.Owner, "owner"); err != nil {
		return err
	}
	if err := assertDerivedAddress(merchantAccount.Key, subscription.Merchant, "merchant"); err != nil {
		return err
	}

	// The renewal payment is a fresh Paid order referencing this
	// subscription.
	var order OrderAccount
	if err := order.Unmarshal(orderAccount.Data); err != nil {
		return err
	}
	if !order.IsInitialized {
		return ErrNotInitialized
	}
	if order.Status != OrderStatusPaid {
		return errors.Wrapf(ErrInvalidOrderStatus, "order is %s", order.Status)
	}
	if err := assertDerivedAddress(merchantAccount.Key, order.Merchant, "merchant"); err != nil {
		return err
	}
	if orderSubscriptionLink(order.Data) != base58.Encode(subscriptionAccount.Key) {
		return ErrInvalidSubscriptionLink
	}

	// Extension uses the package pinned at subscribe time, not the
	// merchant's current catalog.
	pinned, err := parseSubscriptionData(subscription.Data)
	if err != nil {
		return err
	}

	extension, ok := checkedMulI64(args.Quantity, pinned.Package.Duration)
	if !ok {
		return ErrArithmeticOverflow
	}
	periodEnd, ok := checkedAddI64(subscription.PeriodEnd, extension)
	if !ok {
		return ErrArithmeticOverflow
	}

	subscription.PeriodEnd = periodEnd
	subscriptionAccount.Data = subscription.Marshal()

	log.WithFields(logrus.Fields{
		"subscription": base58.Encode(subscriptionAccount.Key),
		"period_end":   periodEnd,
	}).Info("subscription renewed")
	return nil
}

func (p *Processor) cancelSubscription(ctx context.Context, log *logrus.Entry, accounts []*AccountInfo) error {
	ownerAccount := accounts[0]
	subscriptionAccount := accounts[1]
	merchantAccount := accounts[2]
	orderAccount := accounts[3]
	escrowAccount := accounts[4]
	refundTokenAccount := accounts[5]

	var subscription SubscriptionAccount
	if err := subscription.Unmarshal(subscriptionAccount.Data); err != nil {
		return err
	}
	if !subscription.IsInitialized {
		return ErrNotInitialized
	}
	if subscription.Status == SubscriptionStatusCancelled {
		return errors.Wrap(ErrInvalidOrderStatus, "subscription is already cancelled")
	}
	if err := assertDerivedAddress(ownerAccount.Key, subscription.Owner, "owner"); err != nil {
		return err
	}
	if err := assertDerivedAddress(merchantAccount.Key, subscription.Merchant, "merchant"); err != nil {
		return err
	}

	var order OrderAccount
	if err := order.Unmarshal(orderAccount.Data); err != nil {
		return err
	}
	if !order.IsInitialized {
		return ErrNotInitialized
	}
	if err := assertDerivedAddress(merchantAccount.Key, order.Merchant, "merchant"); err != nil {
		return err
	}
	if orderSubscriptionLink(order.Data) != base58.Encode(subscriptionAccount.Key) {
		return ErrInvalidSubscriptionLink
	}
	if err := assertDerivedAddress(escrowAccount.Key, order.Escrow, "escrow"); err != nil {
		return err
	}

	pinned, err := parseSubscriptionData(subscription.Data)
	if err != nil {
		return err
	}

	trialEnd, ok := checkedAddI64(subscription.PeriodStart, pinned.Package.TrialDuration())
	if !ok {
		return ErrArithmeticOverflow
	}

	withinTrial := p.clock.Now().Unix() < trialEnd
	if withinTrial {
		// Trial cancellation refunds the full escrowed payment and
		// voids the order. A withdrawn order has nothing left to
		// refund.
		if order.Status != OrderStatusInitialized && order.Status != OrderStatusPaid {
			return errors.Wrapf(ErrInvalidOrderStatus, "order is %s", order.Status)
		}

		balance, err := p.tokens.Balance(ctx, escrowAccount.Key)
		if err != nil {
			return errors.Wrap(err, "failed to load escrow balance")
		}

		authority, _, err := GetAuthorityAddress(p.conf.ProgramID)
		if err != nil {
			return errors.Wrap(err, "failed to derive program authority")
		}
		if err := p.tokens.Transfer(ctx, escrowAccount.Key, refundTokenAccount.Key, authority, balance); err != nil {
			return errors.Wrap(err, "failed to refund escrow")
		}

		order.Status = OrderStatusCancelled
		orderAccount.Data = order.Marshal()

		// PeriodEnd rewinds to PeriodStart to signal the subscription
		// was never effectively active.
		subscription.PeriodEnd = subscription.PeriodStart
	}

	subscription.Status = SubscriptionStatusCancelled
	subscriptionAccount.Data = subscription.Marshal()

	log.WithFields(logrus.Fields{
		"subscription": base58.Encode(subscriptionAccount.Key),
		"within_trial": withinTrial,
	}).Info("subscription cancelled")
	return nil
}

package payments

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/payments-processor/pkg/pointer"
)

// checkoutAccounts names the ordered account list shared by both checkout
// variants.
type checkoutAccounts struct {
	payer        *AccountInfo
	order        *AccountInfo
	merchant     *AccountInfo
	escrow       *AccountInfo
	buyerToken   *AccountInfo
	mint         *AccountInfo
	programOwner *AccountInfo
	sponsor      *AccountInfo
}

func newCheckoutAccounts(accounts []*AccountInfo) *checkoutAccounts {
	return &checkoutAccounts{
		payer:        accounts[0],
		order:        accounts[1],
		merchant:     accounts[2],
		escrow:       accounts[3],
		buyerToken:   accounts[4],
		mint:         accounts[5],
		programOwner: accounts[6],
		sponsor:      accounts[7],
	}
}

// validateCheckout performs every check both checkout variants share, up to
// but excluding the first side effect. It returns the merchant record the
// fee is taken from.
func (p *Processor) validateCheckout(accs *checkoutAccounts, derivedOrder ed25519.PublicKey) (*MerchantAccount, error) {
	var merchant MerchantAccount
	if err := merchant.Unmarshal(accs.merchant.Data); err != nil {
		return nil, err
	}
	if !merchant.IsInitialized {
		return nil, ErrNotInitialized
	}

	var order OrderAccount
	if err := order.Unmarshal(accs.order.Data); err != nil {
		return nil, err
	}
	if order.IsInitialized {
		return nil, ErrAlreadyInitialized
	}

	if derivedOrder != nil {
		if err := assertDerivedAddress(accs.order.Key, derivedOrder, "order"); err != nil {
			return nil, err
		}
	}

	derivedEscrow, _, err := GetEscrowAddress(accs.order.Key, p.conf.TokenProgram, accs.mint.Key, p.conf.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive escrow address")
	}
	if err := assertDerivedAddress(accs.escrow.Key, derivedEscrow, "escrow"); err != nil {
		return nil, err
	}

	if err := assertDerivedAddress(accs.programOwner.Key, p.conf.ProgramOwner, "program_owner"); err != nil {
		return nil, err
	}
	if err := assertDerivedAddress(accs.sponsor.Key, merchant.Sponsor, "sponsor"); err != nil {
		return nil, err
	}

	return &merchant, nil
}

// settleCheckout performs the two money movements of a checkout: the full
// payment into escrow, then the fee in native units split between the
// program owner and the sponsor. No record may be written before this
// succeeds and no validation may remain after it starts.
func (p *Processor) settleCheckout(ctx context.Context, accs *checkoutAccounts, merchant *MerchantAccount, amount uint64) error {
	if err := p.tokens.Transfer(ctx, accs.buyerToken.Key, accs.escrow.Key, accs.payer.Key, amount); err != nil {
		return errors.Wrap(err, "failed to transfer payment to escrow")
	}

	fee := merchant.Fee
	if merchant.HasSponsor(p.conf.ProgramOwner) {
		ownerFee, sponsorFee, err := SplitFee(fee, p.conf.SponsorShareBps)
		if err != nil {
			return err
		}
		if ownerFee > 0 {
			if err := p.system.Transfer(ctx, accs.payer.Key, accs.programOwner.Key, ownerFee); err != nil {
				return errors.Wrap(err, "failed to transfer owner fee")
			}
		}
		if sponsorFee > 0 {
			if err := p.system.Transfer(ctx, accs.payer.Key, accs.sponsor.Key, sponsorFee); err != nil {
				return errors.Wrap(err, "failed to transfer sponsor fee")
			}
		}
		return nil
	}

	// The program owner sponsors this merchant, so the fee moves whole.
	if err := p.system.Transfer(ctx, accs.payer.Key, accs.programOwner.Key, fee); err != nil {
		return errors.Wrap(err, "failed to transfer fee")
	}
	return nil
}

func (p *Processor) writeOrder(ctx context.Context, accs *checkoutAccounts, record *OrderAccount) error {
	if err := p.system.CreateAccount(ctx, accs.payer.Key, accs.order.Key, uint64(record.Size()), p.conf.ProgramID); err != nil {
		return errors.Wrap(err, "failed to allocate order account")
	}
	accs.order.Owner = p.conf.ProgramID
	accs.order.Data = record.Marshal()
	return nil
}

func (p *Processor) expressCheckout(ctx context.Context, log *logrus.Entry, args *ExpressCheckoutInstructionArgs, accounts []*AccountInfo) error {
	accs := newCheckoutAccounts(accounts)

	derivedOrder, err := GetOrderAddress(accs.payer.Key, args.OrderID, p.conf.ProgramID)
	if err != nil {
		return errors.Wrap(err, "failed to derive order address")
	}

	merchant, err := p.validateCheckout(accs, derivedOrder)
	if err != nil {
		return err
	}

	if err := p.settleCheckout(ctx, accs, merchant, args.Amount); err != nil {
		return err
	}

	record := &OrderAccount{
		IsInitialized:  true,
		Status:         OrderStatusPaid,
		Merchant:       accs.merchant.Key,
		Mint:           accs.mint.Key,
		Escrow:         accs.escrow.Key,
		Payer:          accs.payer.Key,
		ExpectedAmount: args.Amount,
		PaidAmount:     args.Amount,
		OrderID:        args.OrderID,
		Secret:         args.Secret,
		Data:           *pointer.StringOrDefault(args.Data, "{}"),
	}
	if err := p.writeOrder(ctx, accs, record); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"order":  base58.Encode(accs.order.Key),
		"amount": args.Amount,
	}).Info("express checkout settled")
	return nil
}

func (p *Processor) chainCheckout(ctx context.Context, log *logrus.Entry, args *ChainCheckoutInstructionArgs, accounts []*AccountInfo) error {
	accs := newCheckoutAccounts(accounts)

	merchant, err := p.validateCheckout(accs, nil)
	if err != nil {
		return err
	}

	catalog, err := parseItemCatalog(merchant.Data)
	if err != nil {
		return err
	}

	var expectedTotal uint64
	it := args.OrderItems.Iterator()
	for it.Next() {
		itemID := it.Key().(string)
		quantity := it.Value().(uint64)

		price, err := catalog.Price(itemID)
		if err != nil {
			return err
		}

		lineTotal, ok := checkedMulU64(price, quantity)
		if !ok {
			return ErrArithmeticOverflow
		}
		expectedTotal, ok = checkedAddU64(expectedTotal, lineTotal)
		if !ok {
			return ErrArithmeticOverflow
		}
	}

	if args.Amount != expectedTotal {
		return errors.Wrapf(ErrInsufficientPayment, "expected %d, got %d", expectedTotal, args.Amount)
	}

	orderData, err := newOrderData(args.Data, args.OrderItems)
	if err != nil {
		return err
	}

	if err := p.settleCheckout(ctx, accs, merchant, args.Amount); err != nil {
		return err
	}

	record := &OrderAccount{
		IsInitialized:  true,
		Status:         OrderStatusPaid,
		Merchant:       accs.merchant.Key,
		Mint:           accs.mint.Key,
		Escrow:         accs.escrow.Key,
		Payer:          accs.payer.Key,
		ExpectedAmount: expectedTotal,
		PaidAmount:     args.Amount,
		Data:           orderData,
	}
	if err := p.writeOrder(ctx, accs, record); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"order":  base58.Encode(accs.order.Key),
		"amount": args.Amount,
		"items":  args.OrderItems.Size(),
	}).Info("chain checkout settled")
	return nil
}

func (p *Processor) withdraw(ctx context.Context, log *logrus.Entry, accounts []*AccountInfo) error {
	ownerAccount := accounts[0]
	orderAccount := accounts[1]
	merchantAccount := accounts[2]
	escrowAccount := accounts[3]
	merchantTokenAccount := accounts[4]

	var merchant MerchantAccount
	if err := merchant.Unmarshal(merchantAccount.Data); err != nil {
		return err
	}
	if !merchant.IsInitialized {
		return ErrNotInitialized
	}
	if err := assertDerivedAddress(ownerAccount.Key, merchant.Owner, "owner"); err != nil {
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
	if order.Status != OrderStatusPaid {
		return errors.Wrapf(ErrInvalidOrderStatus, "order is %s", order.Status)
	}

	if err := assertDerivedAddress(escrowAccount.Key, order.Escrow, "escrow"); err != nil {
		return err
	}
	derivedEscrow, _, err := GetEscrowAddress(orderAccount.Key, p.conf.TokenProgram, order.Mint, p.conf.ProgramID)
	if err != nil {
		return errors.Wrap(err, "failed to derive escrow address")
	}
	if err := assertDerivedAddress(escrowAccount.Key, derivedEscrow, "escrow"); err != nil {
		return err
	}

	// A withdrawal against a subscription-funding order must wait out the
	// trial window, since the buyer can still cancel for a full refund.
	if len(accounts) > 5 {
		subscriptionAccount := accounts[5]

		var subscription SubscriptionAccount
		if err := subscription.Unmarshal(subscriptionAccount.Data); err != nil {
			return err
		}
		if !subscription.IsInitialized {
			return ErrNotInitialized
		}
		if orderSubscriptionLink(order.Data) != base58.Encode(subscriptionAccount.Key) {
			return ErrInvalidSubscriptionLink
		}

		pinned, err := parseSubscriptionData(subscription.Data)
		if err != nil {
			return err
		}

		trialEnd, ok := checkedAddI64(subscription.PeriodStart, pinned.Package.TrialDuration())
		if !ok {
			return ErrArithmeticOverflow
		}
		if p.clock.Now().Unix() < trialEnd {
			return errors.Wrap(ErrInvalidOrderStatus, "subscription is within its trial window")
		}
	}

	balance, err := p.tokens.Balance(ctx, escrowAccount.Key)
	if err != nil {
		return errors.Wrap(err, "failed to load escrow balance")
	}

	authority, _, err := GetAuthorityAddress(p.conf.ProgramID)
	if err != nil {
		return errors.Wrap(err, "failed to derive program authority")
	}
	if err := p.tokens.Transfer(ctx, escrowAccount.Key, merchantTokenAccount.Key, authority, balance); err != nil {
		return errors.Wrap(err, "failed to release escrow")
	}

	order.Status = OrderStatusWithdrawn
	orderAccount.Data = order.Marshal()

	log.WithFields(logrus.Fields{
		"order":  base58.Encode(orderAccount.Key),
		"amount": balance,
	}).Info("order withdrawn")
	return nil
}

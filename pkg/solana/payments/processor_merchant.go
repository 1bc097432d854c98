package payments

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/payments-processor/pkg/pointer"
)

func (p *Processor) registerMerchant(ctx context.Context, log *logrus.Entry, args *RegisterMerchantInstructionArgs, accounts []*AccountInfo) error {
	ownerAccount := accounts[0]
	merchantAccount := accounts[1]

	var record MerchantAccount
	if err := record.Unmarshal(merchantAccount.Data); err != nil {
		return err
	}
	if record.IsInitialized {
		return ErrAlreadyInitialized
	}

	seed := *pointer.StringOrDefault(args.Seed, "")
	derived, err := GetMerchantAddress(ownerAccount.Key, seed, p.conf.ProgramID)
	if err != nil {
		return errors.Wrap(err, "failed to derive merchant address")
	}
	if err := assertDerivedAddress(merchantAccount.Key, derived, "merchant"); err != nil {
		return err
	}

	sponsor := p.conf.ProgramOwner
	if len(accounts) > 2 {
		sponsor = accounts[2].Key
	}

	record = MerchantAccount{
		IsInitialized: true,
		Owner:         ownerAccount.Key,
		Sponsor:       sponsor,
		Fee:           EnforceMinimumFee(*pointer.Uint64OrDefault(args.Fee, p.conf.DefaultFee), p.conf.MinFee),
		Seed:          seed,
		Data:          *pointer.StringOrDefault(args.Data, "{}"),
	}

	if err := p.system.CreateAccount(ctx, ownerAccount.Key, merchantAccount.Key, uint64(record.Size()), p.conf.ProgramID); err != nil {
		return errors.Wrap(err, "failed to allocate merchant account")
	}
	merchantAccount.Owner = p.conf.ProgramID
	merchantAccount.Data = record.Marshal()

	log.WithFields(logrus.Fields{
		"merchant": base58.Encode(merchantAccount.Key),
		"fee":      record.Fee,
	}).Info("registered merchant")
	return nil
}

package payments

import (
	"crypto/ed25519"

	"github.com/code-payments/payments-processor/pkg/solana"
)

// RenewSubscriptionInstructionArgs extends a subscription by Quantity
// periods of the package duration pinned at subscribe time.
type RenewSubscriptionInstructionArgs struct {
	Quantity int64
}

type RenewSubscriptionInstructionAccounts struct {
	Owner        ed25519.PublicKey
	Subscription ed25519.PublicKey
	Merchant     ed25519.PublicKey
	Order        ed25519.PublicKey
}

func (args *RenewSubscriptionInstructionArgs) Size() int {
	return 8
}

func (args *RenewSubscriptionInstructionArgs) marshal(dst []byte, offset *int) {
	putInt64(dst, args.Quantity, offset)
}

func (args *RenewSubscriptionInstructionArgs) Unmarshal(payload []byte) error {
	var offset int
	if !readInt64(payload, &args.Quantity, &offset) {
		return ErrMalformedInstruction
	}
	if offset != len(payload) {
		return ErrMalformedInstruction
	}
	return nil
}

func NewRenewSubscriptionInstruction(
	accounts *RenewSubscriptionInstructionAccounts,
	args *RenewSubscriptionInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 1+args.Size())

	putOpcode(data, OpcodeRenewSubscription, &offset)
	args.marshal(data, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,
		Data:    data,
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Owner,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Subscription,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Merchant,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Order,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

package payments

import (
	"crypto/ed25519"

	"github.com/code-payments/payments-processor/pkg/solana"
)

// SubscribeInstructionArgs starts a subscription. Name is the composite
// "subscriptionId:packageName"; the package half selects an entry from the
// merchant's catalog.
type SubscribeInstructionArgs struct {
	Name string
	Data *string
}

type SubscribeInstructionAccounts struct {
	Owner        ed25519.PublicKey
	Subscription ed25519.PublicKey
	Merchant     ed25519.PublicKey
	Order        ed25519.PublicKey
}

func (args *SubscribeInstructionArgs) Size() int {
	return stringSize(args.Name) + optionalStringSize(args.Data)
}

func (args *SubscribeInstructionArgs) marshal(dst []byte, offset *int) {
	putString(dst, args.Name, offset)
	putOptionalString(dst, args.Data, offset)
}

func (args *SubscribeInstructionArgs) Unmarshal(payload []byte) error {
	var offset int
	if !getString(payload, &args.Name, &offset) {
		return ErrMalformedInstruction
	}
	if !readOptionalString(payload, &args.Data, &offset) {
		return ErrMalformedInstruction
	}
	if offset != len(payload) {
		return ErrMalformedInstruction
	}
	return nil
}

func NewSubscribeInstruction(
	accounts *SubscribeInstructionAccounts,
	args *SubscribeInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 1+args.Size())

	putOpcode(data, OpcodeSubscribe, &offset)
	args.marshal(data, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,
		Data:    data,
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Owner,
				IsWritable: true,
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

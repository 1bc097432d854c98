package payments

import (
	"crypto/ed25519"

	"github.com/code-payments/payments-processor/pkg/solana"
)

// RegisterMerchantInstructionArgs carries the optional registration fields.
// A nil Fee selects the program's default fee, a nil Seed the owner's
// default merchant namespace, and a nil Data an empty JSON object.
type RegisterMerchantInstructionArgs struct {
	Seed *string
	Fee  *uint64
	Data *string
}

type RegisterMerchantInstructionAccounts struct {
	Owner    ed25519.PublicKey
	Merchant ed25519.PublicKey

	// Optional; when nil the program owner sponsors the merchant and
	// collects the full fee.
	Sponsor ed25519.PublicKey
}

func (args *RegisterMerchantInstructionArgs) Size() int {
	return optionalStringSize(args.Seed) + optionalUint64Size(args.Fee) + optionalStringSize(args.Data)
}

func (args *RegisterMerchantInstructionArgs) marshal(dst []byte, offset *int) {
	putOptionalString(dst, args.Seed, offset)
	putOptionalUint64(dst, args.Fee, offset)
	putOptionalString(dst, args.Data, offset)
}

func (args *RegisterMerchantInstructionArgs) Unmarshal(payload []byte) error {
	var offset int
	if !readOptionalString(payload, &args.Seed, &offset) {
		return ErrMalformedInstruction
	}
	if !readOptionalUint64(payload, &args.Fee, &offset) {
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

func NewRegisterMerchantInstruction(
	accounts *RegisterMerchantInstructionAccounts,
	args *RegisterMerchantInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 1+args.Size())

	putOpcode(data, OpcodeRegisterMerchant, &offset)
	args.marshal(data, &offset)

	metas := []solana.AccountMeta{
		{
			PublicKey:  accounts.Owner,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Merchant,
			IsWritable: true,
			IsSigner:   false,
		},
	}
	if len(accounts.Sponsor) > 0 {
		metas = append(metas, solana.AccountMeta{
			PublicKey:  accounts.Sponsor,
			IsWritable: false,
			IsSigner:   false,
		})
	}

	return solana.Instruction{
		Program:  PROGRAM_ADDRESS,
		Data:     data,
		Accounts: metas,
	}
}

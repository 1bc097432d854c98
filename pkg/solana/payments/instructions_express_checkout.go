package payments

import (
	"crypto/ed25519"

	"github.com/code-payments/payments-processor/pkg/solana"
)

type ExpressCheckoutInstructionArgs struct {
	Amount  uint64
	OrderID string
	Secret  string
	Data    *string
}

type ExpressCheckoutInstructionAccounts struct {
	Payer      ed25519.PublicKey
	Order      ed25519.PublicKey
	Merchant   ed25519.PublicKey
	Escrow     ed25519.PublicKey
	BuyerToken ed25519.PublicKey
	Mint       ed25519.PublicKey

	// Fee destinations, in native units.
	ProgramOwner ed25519.PublicKey
	Sponsor      ed25519.PublicKey
}

func (args *ExpressCheckoutInstructionArgs) Size() int {
	return 8 + stringSize(args.OrderID) + stringSize(args.Secret) + optionalStringSize(args.Data)
}

func (args *ExpressCheckoutInstructionArgs) marshal(dst []byte, offset *int) {
	putUint64(dst, args.Amount, offset)
	putString(dst, args.OrderID, offset)
	putString(dst, args.Secret, offset)
	putOptionalString(dst, args.Data, offset)
}

func (args *ExpressCheckoutInstructionArgs) Unmarshal(payload []byte) error {
	var offset int
	if !readUint64(payload, &args.Amount, &offset) {
		return ErrMalformedInstruction
	}
	if !getString(payload, &args.OrderID, &offset) {
		return ErrMalformedInstruction
	}
	if !getString(payload, &args.Secret, &offset) {
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

func NewExpressCheckoutInstruction(
	accounts *ExpressCheckoutInstructionAccounts,
	args *ExpressCheckoutInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 1+args.Size())

	putOpcode(data, OpcodeExpressCheckout, &offset)
	args.marshal(data, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,
		Data:    data,
		Accounts: checkoutAccountMetas(
			accounts.Payer,
			accounts.Order,
			accounts.Merchant,
			accounts.Escrow,
			accounts.BuyerToken,
			accounts.Mint,
			accounts.ProgramOwner,
			accounts.Sponsor,
		),
	}
}

// checkoutAccountMetas is the ordered account list shared by both checkout
// variants.
func checkoutAccountMetas(payer, order, merchant, escrow, buyerToken, mint, programOwner, sponsor ed25519.PublicKey) []solana.AccountMeta {
	return []solana.AccountMeta{
		{
			PublicKey:  payer,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  order,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  merchant,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  escrow,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  buyerToken,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  mint,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  programOwner,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  sponsor,
			IsWritable: true,
			IsSigner:   false,
		},
	}
}

package payments

import (
	"crypto/ed25519"

	"github.com/code-payments/payments-processor/pkg/solana"
)

type CancelSubscriptionInstructionAccounts struct {
	Owner        ed25519.PublicKey
	Subscription ed25519.PublicKey
	Merchant     ed25519.PublicKey
	Order        ed25519.PublicKey
	Escrow       ed25519.PublicKey

	// RefundToken receives the full escrowed balance when cancellation
	// happens inside the package's trial window.
	RefundToken ed25519.PublicKey
}

func NewCancelSubscriptionInstruction(accounts *CancelSubscriptionInstructionAccounts) solana.Instruction {
	var offset int

	data := make([]byte, 1)
	putOpcode(data, OpcodeCancelSubscription, &offset)

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
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Escrow,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.RefundToken,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}
}

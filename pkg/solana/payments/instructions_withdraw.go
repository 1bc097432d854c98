package payments

import (
	"crypto/ed25519"

	"github.com/code-payments/payments-processor/pkg/solana"
)

type WithdrawInstructionAccounts struct {
	Owner         ed25519.PublicKey
	Order         ed25519.PublicKey
	Merchant      ed25519.PublicKey
	Escrow        ed25519.PublicKey
	MerchantToken ed25519.PublicKey

	// Optional; supplied when the order funded a subscription so the
	// trial window can be enforced before funds are released.
	Subscription ed25519.PublicKey
}

func NewWithdrawInstruction(accounts *WithdrawInstructionAccounts) solana.Instruction {
	var offset int

	data := make([]byte, 1)
	putOpcode(data, OpcodeWithdraw, &offset)

	metas := []solana.AccountMeta{
		{
			PublicKey:  accounts.Owner,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Order,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Merchant,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Escrow,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.MerchantToken,
			IsWritable: true,
			IsSigner:   false,
		},
	}
	if len(accounts.Subscription) > 0 {
		metas = append(metas, solana.AccountMeta{
			PublicKey:  accounts.Subscription,
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

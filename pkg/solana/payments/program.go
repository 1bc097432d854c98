package payments

import (
	"crypto/ed25519"

	"github.com/code-payments/payments-processor/pkg/solana"
)

var (
	// todo: lock in the mainnet deployment address
	PROGRAM_ADDRESS = mustBase58Decode("3M1491vfFMvsLPS6XU3YBq9e7gD9TKWCQTz8pRJbyh1x")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SPL_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))

	PROGRAM_OWNER = ed25519.PublicKey(mustBase58Decode("7hSddKRhsNcD4QmfwAi3Zw5kTrHsicrqfKCmLkq9dGdh"))
)

const (
	merchantSeedPrefix = "merchant"
	orderSeedPrefix    = "order"

	authoritySeed    = "authority"
	subscriptionSeed = "subscription"
)

// Config holds the program's immutable constants. Values are fixed at
// construction and never mutated afterwards.
type Config struct {
	ProgramID    ed25519.PublicKey
	TokenProgram ed25519.PublicKey

	// ProgramOwner receives the owner share of every checkout fee, and
	// the full fee when a merchant has no sponsor.
	ProgramOwner ed25519.PublicKey

	// MinFee is the smallest checkout fee a merchant may register with,
	// in native units.
	MinFee uint64

	// DefaultFee applies when a merchant registers without requesting
	// a fee.
	DefaultFee uint64

	// SponsorShareBps is the sponsor's portion of each checkout fee, in
	// basis points. The remainder from integer division always goes to
	// the program owner.
	SponsorShareBps uint64
}

func DefaultConfig() *Config {
	return &Config{
		ProgramID:       PROGRAM_ID,
		TokenProgram:    SPL_TOKEN_PROGRAM_ID,
		ProgramOwner:    PROGRAM_OWNER,
		MinFee:          100_000,
		DefaultFee:      300_000,
		SponsorShareBps: 3000,
	}
}

// GetMerchantAddress derives the merchant account address for an owner and
// registration seed. An empty seed selects the owner's default merchant; a
// distinct seed yields an independent merchant identity for the same owner.
func GetMerchantAddress(owner ed25519.PublicKey, seed string, programID ed25519.PublicKey) (ed25519.PublicKey, error) {
	derivationSeed := merchantSeedPrefix
	if len(seed) > 0 {
		derivationSeed = merchantSeedPrefix + ":" + seed
	}
	return solana.CreateAddressWithSeed(owner, derivationSeed, programID)
}

// GetOrderAddress derives the order account address for a payer and an
// external order id.
func GetOrderAddress(payer ed25519.PublicKey, orderID string, programID ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.CreateAddressWithSeed(payer, orderSeedPrefix+":"+orderID, programID)
}

// GetEscrowAddress derives the escrow token account that holds an order's
// payment until withdrawal or refund.
func GetEscrowAddress(order, tokenProgram, mint, programID ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(programID, order, tokenProgram, mint)
}

// GetAuthorityAddress derives the program authority that signs transfers
// out of escrow. No private key exists for this address.
func GetAuthorityAddress(programID ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(programID, []byte(authoritySeed))
}

// GetSubscriptionAddress derives the subscription account address for an
// owner and the composite subscription name.
func GetSubscriptionAddress(owner ed25519.PublicKey, name string, programID ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(programID, []byte(subscriptionSeed), owner, []byte(name))
}

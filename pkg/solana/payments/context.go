package payments

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

// AccountInfo is a caller-supplied account handle. The processor mutates
// Data in place; the host commits or discards all mutations as a unit.
type AccountInfo struct {
	Key   ed25519.PublicKey
	Owner ed25519.PublicKey

	IsSigner   bool
	IsWritable bool

	Data []byte
}

// accountRule is one row of an opcode's expected account table. Accounts
// holding records that must already exist are marked programOwned; accounts
// the operation itself allocates are not, since they only receive this
// program as owner during the operation.
type accountRule struct {
	name         string
	isSigner     bool
	isWritable   bool
	programOwned bool
}

type accountSpec struct {
	required []accountRule
	optional []accountRule
}

var commandAccountSpecs = map[Opcode]accountSpec{
	OpcodeRegisterMerchant: {
		required: []accountRule{
			{name: "owner", isSigner: true, isWritable: true},
			{name: "merchant", isWritable: true},
		},
		optional: []accountRule{
			{name: "sponsor"},
		},
	},
	OpcodeExpressCheckout: {
		required: []accountRule{
			{name: "payer", isSigner: true, isWritable: true},
			{name: "order", isWritable: true},
			{name: "merchant", programOwned: true},
			{name: "escrow", isWritable: true},
			{name: "buyer_token", isWritable: true},
			{name: "mint"},
			{name: "program_owner", isWritable: true},
			{name: "sponsor", isWritable: true},
		},
	},
	OpcodeChainCheckout: {
		required: []accountRule{
			{name: "payer", isSigner: true, isWritable: true},
			// The order account has no seed derivation for chain
			// checkouts, so a fresh keypair must sign instead.
			{name: "order", isSigner: true, isWritable: true},
			{name: "merchant", programOwned: true},
			{name: "escrow", isWritable: true},
			{name: "buyer_token", isWritable: true},
			{name: "mint"},
			{name: "program_owner", isWritable: true},
			{name: "sponsor", isWritable: true},
		},
	},
	OpcodeWithdraw: {
		required: []accountRule{
			{name: "owner", isSigner: true},
			{name: "order", isWritable: true, programOwned: true},
			{name: "merchant", programOwned: true},
			{name: "escrow", isWritable: true},
			{name: "merchant_token", isWritable: true},
		},
		optional: []accountRule{
			{name: "subscription", programOwned: true},
		},
	},
	OpcodeSubscribe: {
		required: []accountRule{
			{name: "owner", isSigner: true, isWritable: true},
			{name: "subscription", isWritable: true},
			{name: "merchant", programOwned: true},
			{name: "order", programOwned: true},
		},
	},
	OpcodeRenewSubscription: {
		required: []accountRule{
			{name: "owner", isSigner: true},
			{name: "subscription", isWritable: true, programOwned: true},
			{name: "merchant", programOwned: true},
			{name: "order", programOwned: true},
		},
	},
	OpcodeCancelSubscription: {
		required: []accountRule{
			{name: "owner", isSigner: true},
			{name: "subscription", isWritable: true, programOwned: true},
			{name: "merchant", programOwned: true},
			{name: "order", isWritable: true, programOwned: true},
			{name: "escrow", isWritable: true},
			{name: "refund_token", isWritable: true},
		},
	},
}

// validateAccounts checks the supplied account list against the opcode's
// table: list length, signer and writable flags, and program ownership
// where a record must already exist. Address re-derivation happens in the
// per-operation handlers once the instruction arguments are known.
func validateAccounts(opcode Opcode, accounts []*AccountInfo, programID ed25519.PublicKey) error {
	spec, ok := commandAccountSpecs[opcode]
	if !ok {
		return ErrMalformedInstruction
	}

	minAccounts := len(spec.required)
	maxAccounts := minAccounts + len(spec.optional)
	if len(accounts) < minAccounts || len(accounts) > maxAccounts {
		if minAccounts == maxAccounts {
			return errors.Wrapf(ErrMalformedInstruction, "expected %d account(s), got %d", minAccounts, len(accounts))
		}
		return errors.Wrapf(ErrMalformedInstruction, "expected %d to %d account(s), got %d", minAccounts, maxAccounts, len(accounts))
	}

	rules := append([]accountRule{}, spec.required...)
	rules = append(rules, spec.optional...)

	for i, account := range accounts {
		rule := rules[i]

		if len(account.Key) != ed25519.PublicKeySize {
			return errors.Wrapf(ErrMalformedInstruction, "account %s has an invalid key", rule.name)
		}
		if rule.isSigner && !account.IsSigner {
			return errors.Wrapf(ErrMalformedInstruction, "account %s must sign", rule.name)
		}
		if rule.isWritable && !account.IsWritable {
			return errors.Wrapf(ErrMalformedInstruction, "account %s must be writable", rule.name)
		}
		if rule.programOwned && !bytes.Equal(account.Owner, programID) {
			return errors.Wrapf(ErrInvalidAccountOwner, "account %s is not owned by this program", rule.name)
		}
	}

	return nil
}

// assertDerivedAddress recomputes an address the caller claims to have
// derived and compares it byte for byte. A divergence is treated as a
// substitution attempt and is always fatal.
func assertDerivedAddress(supplied, derived ed25519.PublicKey, name string) error {
	if !bytes.Equal(supplied, derived) {
		return errors.Wrapf(ErrAddressMismatch, "account %s", name)
	}
	return nil
}

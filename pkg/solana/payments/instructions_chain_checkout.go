package payments

import (
	"crypto/ed25519"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/code-payments/payments-processor/pkg/solana"
)

// ChainCheckoutInstructionArgs pays for multiple line items at once.
// OrderItems maps item id to quantity and preserves the caller's ordering
// through decode and into the order's durable receipt.
type ChainCheckoutInstructionArgs struct {
	Amount     uint64
	OrderItems *linkedhashmap.Map
	Data       *string
}

type ChainCheckoutInstructionAccounts struct {
	Payer      ed25519.PublicKey
	Order      ed25519.PublicKey
	Merchant   ed25519.PublicKey
	Escrow     ed25519.PublicKey
	BuyerToken ed25519.PublicKey
	Mint       ed25519.PublicKey

	ProgramOwner ed25519.PublicKey
	Sponsor      ed25519.PublicKey
}

func (args *ChainCheckoutInstructionArgs) Size() int {
	size := 8 + 4 + optionalStringSize(args.Data)
	if args.OrderItems != nil {
		it := args.OrderItems.Iterator()
		for it.Next() {
			size += stringSize(it.Key().(string)) + 8
		}
	}
	return size
}

func (args *ChainCheckoutInstructionArgs) marshal(dst []byte, offset *int) {
	putUint64(dst, args.Amount, offset)

	if args.OrderItems == nil {
		putUint32(dst, 0, offset)
	} else {
		putUint32(dst, uint32(args.OrderItems.Size()), offset)
		it := args.OrderItems.Iterator()
		for it.Next() {
			putString(dst, it.Key().(string), offset)
			putUint64(dst, it.Value().(uint64), offset)
		}
	}

	putOptionalString(dst, args.Data, offset)
}

func (args *ChainCheckoutInstructionArgs) Unmarshal(payload []byte) error {
	var offset int
	if !readUint64(payload, &args.Amount, &offset) {
		return ErrMalformedInstruction
	}

	var count uint32
	if !readUint32(payload, &count, &offset) {
		return ErrMalformedInstruction
	}

	args.OrderItems = linkedhashmap.New()
	for i := uint32(0); i < count; i++ {
		var itemID string
		var quantity uint64
		if !getString(payload, &itemID, &offset) {
			return ErrMalformedInstruction
		}
		if !readUint64(payload, &quantity, &offset) {
			return ErrMalformedInstruction
		}
		if _, found := args.OrderItems.Get(itemID); found {
			return ErrMalformedInstruction
		}
		args.OrderItems.Put(itemID, quantity)
	}

	if !readOptionalString(payload, &args.Data, &offset) {
		return ErrMalformedInstruction
	}
	if offset != len(payload) {
		return ErrMalformedInstruction
	}
	return nil
}

func NewChainCheckoutInstruction(
	accounts *ChainCheckoutInstructionAccounts,
	args *ChainCheckoutInstructionArgs,
) solana.Instruction {
	var offset int

	data := make([]byte, 1+args.Size())

	putOpcode(data, OpcodeChainCheckout, &offset)
	args.marshal(data, &offset)

	metas := checkoutAccountMetas(
		accounts.Payer,
		accounts.Order,
		accounts.Merchant,
		accounts.Escrow,
		accounts.BuyerToken,
		accounts.Mint,
		accounts.ProgramOwner,
		accounts.Sponsor,
	)

	// A chain checkout order has no seed derivation, so the fresh order
	// keypair signs for its own creation.
	metas[1].IsSigner = true

	return solana.Instruction{
		Program:  PROGRAM_ADDRESS,
		Data:     data,
		Accounts: metas,
	}
}

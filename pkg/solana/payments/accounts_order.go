package payments

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

type OrderStatus uint8

const (
	OrderStatusInitialized OrderStatus = iota
	OrderStatusPaid
	OrderStatusWithdrawn
	OrderStatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusInitialized:
		return "initialized"
	case OrderStatusPaid:
		return "paid"
	case OrderStatusWithdrawn:
		return "withdrawn"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

const OrderAccountFixedSize = (1 + // initialized
	1 + // status
	32 + // merchant
	32 + // mint
	32 + // escrow
	32 + // payer
	8 + // expected_amount
	8) // paid_amount

// OrderAccount is the durable record of a checkout. Status only ever moves
// forward: Initialized -> Paid -> Withdrawn, or to Cancelled from
// Initialized/Paid via a trial-window subscription cancellation.
type OrderAccount struct {
	IsInitialized bool
	Status        OrderStatus

	Merchant ed25519.PublicKey
	Mint     ed25519.PublicKey
	Escrow   ed25519.PublicKey
	Payer    ed25519.PublicKey

	ExpectedAmount uint64
	PaidAmount     uint64

	OrderID string
	Secret  string
	Data    string
}

func (obj *OrderAccount) Size() int {
	return OrderAccountFixedSize + stringSize(obj.OrderID) + stringSize(obj.Secret) + stringSize(obj.Data)
}

func (obj *OrderAccount) Marshal() []byte {
	data := make([]byte, obj.Size())

	var offset int
	if obj.IsInitialized {
		putUint8(data, 1, &offset)
	} else {
		putUint8(data, 0, &offset)
	}
	putUint8(data, uint8(obj.Status), &offset)
	putKey(data, obj.Merchant, &offset)
	putKey(data, obj.Mint, &offset)
	putKey(data, obj.Escrow, &offset)
	putKey(data, obj.Payer, &offset)
	putUint64(data, obj.ExpectedAmount, &offset)
	putUint64(data, obj.PaidAmount, &offset)
	putString(data, obj.OrderID, &offset)
	putString(data, obj.Secret, &offset)
	putString(data, obj.Data, &offset)

	return data
}

func (obj *OrderAccount) Unmarshal(data []byte) error {
	if len(data) == 0 || data[0] == 0 {
		*obj = OrderAccount{}
		return nil
	}
	if len(data) < OrderAccountFixedSize {
		return ErrCorruptAccountData
	}

	var offset int
	var initialized, status uint8
	getUint8(data, &initialized, &offset)
	obj.IsInitialized = initialized == 1

	getUint8(data, &status, &offset)
	obj.Status = OrderStatus(status)

	getKey(data, &obj.Merchant, &offset)
	getKey(data, &obj.Mint, &offset)
	getKey(data, &obj.Escrow, &offset)
	getKey(data, &obj.Payer, &offset)
	getUint64(data, &obj.ExpectedAmount, &offset)
	getUint64(data, &obj.PaidAmount, &offset)
	if !getString(data, &obj.OrderID, &offset) {
		return ErrCorruptAccountData
	}
	if !getString(data, &obj.Secret, &offset) {
		return ErrCorruptAccountData
	}
	if !getString(data, &obj.Data, &offset) {
		return ErrCorruptAccountData
	}

	return nil
}

func (obj *OrderAccount) String() string {
	return fmt.Sprintf(
		"OrderAccount{status=%s,merchant=%s,mint=%s,escrow=%s,payer=%s,expected=%d,paid=%d,order_id=%s}",
		obj.Status,
		base58.Encode(obj.Merchant),
		base58.Encode(obj.Mint),
		base58.Encode(obj.Escrow),
		base58.Encode(obj.Payer),
		obj.ExpectedAmount,
		obj.PaidAmount,
		obj.OrderID,
	)
}

package payments

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

type SubscriptionStatus uint8

const (
	SubscriptionStatusInitialized SubscriptionStatus = iota
	SubscriptionStatusCancelled
)

func (s SubscriptionStatus) String() string {
	switch s {
	case SubscriptionStatusInitialized:
		return "initialized"
	case SubscriptionStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

const SubscriptionAccountFixedSize = (1 + // initialized
	1 + // status
	32 + // owner
	32 + // merchant
	8 + // period_start
	8) // period_end

// SubscriptionAccount tracks one renewable subscription. The name is the
// composite "subscriptionId:packageName". PeriodStart never exceeds
// PeriodEnd; a trial cancellation rewinds PeriodEnd back to PeriodStart.
type SubscriptionAccount struct {
	IsInitialized bool
	Status        SubscriptionStatus

	Owner    ed25519.PublicKey
	Merchant ed25519.PublicKey

	PeriodStart int64
	PeriodEnd   int64

	Name string
	Data string
}

func (obj *SubscriptionAccount) Size() int {
	return SubscriptionAccountFixedSize + stringSize(obj.Name) + stringSize(obj.Data)
}

func (obj *SubscriptionAccount) Marshal() []byte {
	data := make([]byte, obj.Size())

	var offset int
	if obj.IsInitialized {
		putUint8(data, 1, &offset)
	} else {
		putUint8(data, 0, &offset)
	}
	putUint8(data, uint8(obj.Status), &offset)
	putKey(data, obj.Owner, &offset)
	putKey(data, obj.Merchant, &offset)
	putInt64(data, obj.PeriodStart, &offset)
	putInt64(data, obj.PeriodEnd, &offset)
	putString(data, obj.Name, &offset)
	putString(data, obj.Data, &offset)

	return data
}

func (obj *SubscriptionAccount) Unmarshal(data []byte) error {
	if len(data) == 0 || data[0] == 0 {
		*obj = SubscriptionAccount{}
		return nil
	}
	if len(data) < SubscriptionAccountFixedSize {
		return ErrCorruptAccountData
	}

	var offset int
	var initialized, status uint8
	getUint8(data, &initialized, &offset)
	obj.IsInitialized = initialized == 1

	getUint8(data, &status, &offset)
	obj.Status = SubscriptionStatus(status)

	getKey(data, &obj.Owner, &offset)
	getKey(data, &obj.Merchant, &offset)
	getInt64(data, &obj.PeriodStart, &offset)
	getInt64(data, &obj.PeriodEnd, &offset)
	if !getString(data, &obj.Name, &offset) {
		return ErrCorruptAccountData
	}
	if !getString(data, &obj.Data, &offset) {
		return ErrCorruptAccountData
	}

	return nil
}

func (obj *SubscriptionAccount) String() string {
	return fmt.Sprintf(
		"SubscriptionAccount{status=%s,owner=%s,merchant=%s,period_start=%d,period_end=%d,name=%s}",
		obj.Status,
		base58.Encode(obj.Owner),
		base58.Encode(obj.Merchant),
		obj.PeriodStart,
		obj.PeriodEnd,
		obj.Name,
	)
}

package payments

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// MerchantAccountFixedSize covers the initialized flag and fixed-width
// fields; the seed and data strings follow length-prefixed.
const MerchantAccountFixedSize = (1 + // initialized
	32 + // owner
	32 + // sponsor
	8) // fee

// MerchantAccount is a merchant's registration record. It is written once
// at registration and never mutated or deleted afterwards.
type MerchantAccount struct {
	IsInitialized bool

	Owner   ed25519.PublicKey
	Sponsor ed25519.PublicKey
	Fee     uint64

	Seed string
	Data string
}

func (obj *MerchantAccount) Size() int {
	return MerchantAccountFixedSize + stringSize(obj.Seed) + stringSize(obj.Data)
}

func (obj *MerchantAccount) Marshal() []byte {
	data := make([]byte, obj.Size())

	var offset int
	if obj.IsInitialized {
		putUint8(data, 1, &offset)
	} else {
		putUint8(data, 0, &offset)
	}
	putKey(data, obj.Owner, &offset)
	putKey(data, obj.Sponsor, &offset)
	putUint64(data, obj.Fee, &offset)
	putString(data, obj.Seed, &offset)
	putString(data, obj.Data, &offset)

	return data
}

// Unmarshal decodes a persisted merchant record. A record whose initialized
// flag is unset decodes to the zero value with IsInitialized false, which is
// the expected state of a freshly allocated account.
func (obj *MerchantAccount) Unmarshal(data []byte) error {
	if len(data) == 0 || data[0] == 0 {
		*obj = MerchantAccount{}
		return nil
	}
	if len(data) < MerchantAccountFixedSize {
		return ErrCorruptAccountData
	}

	var offset int
	var initialized uint8
	getUint8(data, &initialized, &offset)
	obj.IsInitialized = initialized == 1

	getKey(data, &obj.Owner, &offset)
	getKey(data, &obj.Sponsor, &offset)
	getUint64(data, &obj.Fee, &offset)
	if !getString(data, &obj.Seed, &offset) {
		return ErrCorruptAccountData
	}
	if !getString(data, &obj.Data, &offset) {
		return ErrCorruptAccountData
	}

	return nil
}

// HasSponsor reports whether the merchant registered a sponsor distinct
// from the program owner, which is what makes fee splitting applicable.
func (obj *MerchantAccount) HasSponsor(programOwner ed25519.PublicKey) bool {
	return !bytes.Equal(obj.Sponsor, programOwner)
}

func (obj *MerchantAccount) String() string {
	return fmt.Sprintf(
		"MerchantAccount{owner=%s,sponsor=%s,fee=%d,seed=%s}",
		base58.Encode(obj.Owner),
		base58.Encode(obj.Sponsor),
		obj.Fee,
		obj.Seed,
	)
}

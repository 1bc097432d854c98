package payments

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/mr-tron/base58"
)

func putKey(dst []byte, v ed25519.PublicKey, offset *int) {
	copy(dst[*offset:], v)
	*offset += ed25519.PublicKeySize
}

func getKey(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
}

func putUint8(dst []byte, v uint8, offset *int) {
	dst[*offset] = v
	*offset += 1
}

func getUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[*offset]
	*offset += 1
}

func putUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst[*offset:], v)
	*offset += 4
}

func putUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], v)
	*offset += 8
}

func getUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src[*offset:])
	*offset += 8
}

func putInt64(dst []byte, v int64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], uint64(v))
	*offset += 8
}

func getInt64(src []byte, dst *int64, offset *int) {
	*dst = int64(binary.LittleEndian.Uint64(src[*offset:]))
	*offset += 8
}

func putString(dst []byte, src string, offset *int) {
	putUint32(dst, uint32(len(src)), offset)
	copy(dst[*offset:], src)
	*offset += len(src)
}

// getString reads a u32-length-prefixed string, reporting false when the
// source is truncated.
func getString(src []byte, dst *string, offset *int) bool {
	if len(src) < *offset+4 {
		return false
	}
	length := int(binary.LittleEndian.Uint32(src[*offset:]))
	*offset += 4

	if len(src) < *offset+length {
		return false
	}
	*dst = string(src[*offset : *offset+length])
	*offset += length
	return true
}

func stringSize(v string) int {
	return 4 + len(v)
}

func readUint64(src []byte, dst *uint64, offset *int) bool {
	if len(src) < *offset+8 {
		return false
	}
	*dst = binary.LittleEndian.Uint64(src[*offset:])
	*offset += 8
	return true
}

func readInt64(src []byte, dst *int64, offset *int) bool {
	if len(src) < *offset+8 {
		return false
	}
	*dst = int64(binary.LittleEndian.Uint64(src[*offset:]))
	*offset += 8
	return true
}

func readUint32(src []byte, dst *uint32, offset *int) bool {
	if len(src) < *offset+4 {
		return false
	}
	*dst = binary.LittleEndian.Uint32(src[*offset:])
	*offset += 4
	return true
}

func putOptionalUint64(dst []byte, v *uint64, offset *int) {
	if v == nil {
		putUint8(dst, 0, offset)
		return
	}
	putUint8(dst, 1, offset)
	putUint64(dst, *v, offset)
}

func readOptionalUint64(src []byte, dst **uint64, offset *int) bool {
	if len(src) < *offset+1 {
		return false
	}
	flag := src[*offset]
	*offset += 1

	switch flag {
	case 0:
		*dst = nil
		return true
	case 1:
		var value uint64
		if !readUint64(src, &value, offset) {
			return false
		}
		*dst = &value
		return true
	default:
		return false
	}
}

func putOptionalString(dst []byte, v *string, offset *int) {
	if v == nil {
		putUint8(dst, 0, offset)
		return
	}
	putUint8(dst, 1, offset)
	putString(dst, *v, offset)
}

func readOptionalString(src []byte, dst **string, offset *int) bool {
	if len(src) < *offset+1 {
		return false
	}
	flag := src[*offset]
	*offset += 1

	switch flag {
	case 0:
		*dst = nil
		return true
	case 1:
		var value string
		if !getString(src, &value, offset) {
			return false
		}
		*dst = &value
		return true
	default:
		return false
	}
}

func optionalUint64Size(v *uint64) int {
	if v == nil {
		return 1
	}
	return 9
}

func optionalStringSize(v *string) int {
	if v == nil {
		return 1
	}
	return 1 + stringSize(*v)
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}

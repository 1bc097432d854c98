package payments

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorCode uint32

const (
	ErrorCodeMalformedInstruction ErrorCode = iota
	ErrorCodeCorruptAccountData
	ErrorCodeAlreadyInitialized
	ErrorCodeNotInitialized
	ErrorCodeInvalidAccountOwner
	ErrorCodeAddressMismatch
	ErrorCodeArithmeticOverflow
	ErrorCodeInsufficientPayment
	ErrorCodeInvalidOrderItems
	ErrorCodePackageNotFound
	ErrorCodeNoPackagesDefined
	ErrorCodeInvalidOrderStatus
	ErrorCodeInvalidSubscriptionLink
)

// Error is a terminal program error. Every failure surfaces a stable code
// alongside the message; the host discards all pending writes when one is
// returned.
type Error struct {
	Code    ErrorCode
	message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("payments: %s (code %d)", e.message, e.Code)
}

var (
	ErrMalformedInstruction    = &Error{ErrorCodeMalformedInstruction, "malformed instruction"}
	ErrCorruptAccountData      = &Error{ErrorCodeCorruptAccountData, "corrupt account data"}
	ErrAlreadyInitialized      = &Error{ErrorCodeAlreadyInitialized, "account already initialized"}
	ErrNotInitialized          = &Error{ErrorCodeNotInitialized, "account not initialized"}
	ErrInvalidAccountOwner     = &Error{ErrorCodeInvalidAccountOwner, "invalid account owner"}
	ErrAddressMismatch         = &Error{ErrorCodeAddressMismatch, "derived address mismatch"}
	ErrArithmeticOverflow      = &Error{ErrorCodeArithmeticOverflow, "arithmetic overflow"}
	ErrInsufficientPayment     = &Error{ErrorCodeInsufficientPayment, "payment does not match expected total"}
	ErrInvalidOrderItems       = &Error{ErrorCodeInvalidOrderItems, "order items not present in merchant catalog"}
	ErrPackageNotFound         = &Error{ErrorCodePackageNotFound, "package not found in merchant catalog"}
	ErrNoPackagesDefined       = &Error{ErrorCodeNoPackagesDefined, "merchant has no packages defined"}
	ErrInvalidOrderStatus      = &Error{ErrorCodeInvalidOrderStatus, "order status does not permit this operation"}
	ErrInvalidSubscriptionLink = &Error{ErrorCodeInvalidSubscriptionLink, "order is not linked to this subscription"}
)

// IsErrorCode reports whether err is (or wraps) a program error with the
// given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var programErr *Error
	if errors.As(err, &programErr) {
		return programErr.Code == code
	}
	return false
}

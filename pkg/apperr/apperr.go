// Package apperr attaches stable, machine-readable reason codes to errors so
// presentation layers can localize messages without parsing strings.
package apperr

import "errors"

type Code string

const (
	CodeInvalidInput          Code = "invalid_input"
	CodeNotFound              Code = "not_found"
	CodeSlotNoLongerAvailable Code = "slot_no_longer_available"
	CodePromotionInvalid      Code = "promotion_invalid"
	CodeRoundingInvariant     Code = "rounding_invariant_violation"
	CodeInvalidTransition     Code = "invalid_transition"
	CodeInternal              Code = "internal"
)

// Error is a sentinel-friendly error carrying a reason code. Compare with
// errors.Is against the package-level values declared by each service.
type Error struct {
	Code    Code
	Message string
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func (e *Error) Error() string {
	return e.Message
}

// Coder is implemented by errors that expose their own reason code.
type Coder interface {
	ErrorCode() Code
}

func (e *Error) ErrorCode() Code {
	return e.Code
}

// CodeOf returns the reason code of the first error in the chain that has one,
// or CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return CodeInternal
}

package payment

import "github.com/Alijeyrad/salonora_backend/pkg/apperr"

var (
	ErrInvalidAmount      = apperr.New(apperr.CodeInvalidInput, "amount must not be negative")
	ErrUnknownPaymentMode = apperr.New(apperr.CodeInvalidInput, "unknown payment mode")
	ErrRoundingInvariant  = apperr.New(apperr.CodeRoundingInvariant, "payment split does not reproduce its total")
	ErrInvalidDepositRate = apperr.New(apperr.CodeRoundingInvariant, "deposit rate out of range")
	ErrInvalidCommission  = apperr.New(apperr.CodeRoundingInvariant, "commission rate out of range")
)

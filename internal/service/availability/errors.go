package availability

import "github.com/Alijeyrad/salonora_backend/pkg/apperr"

var (
	ErrInvalidDuration    = apperr.New(apperr.CodeInvalidInput, "service duration must be positive")
	ErrInvalidGranularity = apperr.New(apperr.CodeInvalidInput, "slot granularity must be positive")
	ErrInvalidDate        = apperr.New(apperr.CodeInvalidInput, "date is required")
)

package scheduling

import "github.com/Alijeyrad/salonora_backend/pkg/apperr"

var (
	ErrExceptionNotFound = apperr.New(apperr.CodeNotFound, "schedule exception not found")
	ErrInvalidTimeRange  = apperr.New(apperr.CodeInvalidInput, "end must be after start")
	ErrInvalidHours      = apperr.New(apperr.CodeInvalidInput, "invalid weekly hours")
	ErrInvalidRange      = apperr.New(apperr.CodeInvalidInput, "invalid date range")
)

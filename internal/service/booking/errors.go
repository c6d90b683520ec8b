package booking

import (
	"errors"

	"github.com/Alijeyrad/salonora_backend/pkg/apperr"
)

var (
	ErrNotFound              = apperr.New(apperr.CodeNotFound, "booking not found")
	ErrInvalidInput          = apperr.New(apperr.CodeInvalidInput, "invalid booking request")
	ErrServiceUnavailable    = apperr.New(apperr.CodeInvalidInput, "service is not bookable")
	ErrSlotNoLongerAvailable = apperr.New(apperr.CodeSlotNoLongerAvailable, "the selected slot is no longer available")
	ErrInvalidTransition     = apperr.New(apperr.CodeInvalidTransition, "booking cannot move to the requested status")

	// errStageOrder means the submission pipeline skipped or repeated a step.
	errStageOrder = errors.New("booking transaction stage out of order")
)

package promotion

import (
	"errors"

	"github.com/Alijeyrad/salonora_backend/pkg/apperr"
)

var (
	ErrInvalid       = apperr.New(apperr.CodePromotionInvalid, "promotion invalid")
	ErrNotFound      = apperr.New(apperr.CodeNotFound, "promotion not found")
	ErrInvalidInput  = apperr.New(apperr.CodeInvalidInput, "invalid promotion")
	ErrInvalidAmount = apperr.New(apperr.CodeInvalidInput, "amount must not be negative")
	ErrCodeTaken     = apperr.New(apperr.CodeInvalidInput, "promotion code already in use")
	ErrServiceGone   = apperr.New(apperr.CodeNotFound, "service not found")
)

// Reason names the first validation check a promotion failed.
type Reason string

const (
	ReasonInactive              Reason = "promotion_inactive"
	ReasonOutOfWindow           Reason = "promotion_out_of_window"
	ReasonBelowMinPurchase      Reason = "below_min_purchase"
	ReasonMaxUsesReached        Reason = "max_uses_reached"
	ReasonMaxUsesPerUserReached Reason = "max_uses_per_user_reached"
	ReasonNewClientsOnly        Reason = "new_clients_only"
	ReasonFirstBookingOnly      Reason = "first_booking_only"
	ReasonInvalidDayOfWeek      Reason = "invalid_day_of_week"
	ReasonServiceNotApplicable  Reason = "service_not_applicable"
)

// InvalidError reports why a promotion cannot be applied.
// errors.Is(err, ErrInvalid) holds for every reason.
type InvalidError struct {
	Reason Reason
}

func Invalid(r Reason) error {
	return &InvalidError{Reason: r}
}

func (e *InvalidError) Error() string {
	return "promotion invalid: " + string(e.Reason)
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalid
}

func (e *InvalidError) ErrorCode() apperr.Code {
	return apperr.CodePromotionInvalid
}

// ReasonOf extracts the validation reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var ie *InvalidError
	if errors.As(err, &ie) {
		return ie.Reason, true
	}
	return "", false
}

package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ExceptionInput struct {
	Date        model.Date
	Start       model.TimeOfDay
	End         model.TimeOfDay
	IsAvailable bool
	Reason      string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Weekly hours
	GetWeeklyHours(ctx context.Context, providerID uuid.UUID) (model.WeeklyHours, error)
	SetWeeklyHours(ctx context.Context, providerID uuid.UUID, hours model.WeeklyHours) error

	// Date exceptions
	ListExceptions(ctx context.Context, providerID uuid.UUID, from, to model.Date) ([]model.ScheduleException, error)
	AddException(ctx context.Context, providerID uuid.UUID, in ExceptionInput) (*model.ScheduleException, error)
	DeleteException(ctx context.Context, providerID, exceptionID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

// maxExceptionRangeDays bounds ListExceptions queries.
const maxExceptionRangeDays = 366

type schedulingService struct {
	store repo.ScheduleStore
}

func New(store repo.ScheduleStore) Service {
	return &schedulingService{store: store}
}

// ---------------------------------------------------------------------------
// Weekly hours
// ---------------------------------------------------------------------------

func (s *schedulingService) GetWeeklyHours(ctx context.Context, providerID uuid.UUID) (model.WeeklyHours, error) {
	hours, err := s.store.GetWeeklyHours(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("get weekly hours: %w", err)
	}
	return hours, nil
}

func (s *schedulingService) SetWeeklyHours(ctx context.Context, providerID uuid.UUID, hours model.WeeklyHours) error {
	if err := hours.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHours, err)
	}
	if err := s.store.SetWeeklyHours(ctx, providerID, hours); err != nil {
		return fmt.Errorf("set weekly hours: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Exceptions
// ---------------------------------------------------------------------------

func (s *schedulingService) ListExceptions(ctx context.Context, providerID uuid.UUID, from, to model.Date) ([]model.ScheduleException, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, ErrInvalidRange
	}
	if to.After(from.AddDays(maxExceptionRangeDays)) {
		return nil, fmt.Errorf("%w: at most %d days", ErrInvalidRange, maxExceptionRangeDays)
	}
	out, err := s.store.ListExceptions(ctx, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list exceptions: %w", err)
	}
	return out, nil
}

func (s *schedulingService) AddException(ctx context.Context, providerID uuid.UUID, in ExceptionInput) (*model.ScheduleException, error) {
	e := &model.ScheduleException{
		ProviderID:  providerID,
		Date:        in.Date,
		Start:       in.Start,
		End:         model.NormalizeEnd(in.End),
		IsAvailable: in.IsAvailable,
		Reason:      strings.TrimSpace(in.Reason),
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if err := s.store.InsertException(ctx, e); err != nil {
		return nil, fmt.Errorf("insert exception: %w", err)
	}
	return e, nil
}

func (s *schedulingService) DeleteException(ctx context.Context, providerID, exceptionID uuid.UUID) error {
	err := s.store.DeleteException(ctx, providerID, exceptionID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrExceptionNotFound
	}
	if err != nil {
		return fmt.Errorf("delete exception: %w", err)
	}
	return nil
}

func weekday(d int) time.Weekday {
	return time.Weekday(d)
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
)

type weeklyHoursRow struct {
	DayOfWeek   int             `db:"day_of_week"`
	OpenMinute  model.TimeOfDay `db:"open_minute"`
	CloseMinute model.TimeOfDay `db:"close_minute"`
	Active      bool            `db:"active"`
}

func (s *Store) GetWeeklyHours(ctx context.Context, providerID uuid.UUID) (model.WeeklyHours, error) {
	var rows []weeklyHoursRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT day_of_week, open_minute, close_minute, active
		FROM weekly_hours WHERE provider_id = $1`, providerID)
	if err != nil {
		return nil, mapErr(err)
	}

	hours := make(model.WeeklyHours, len(rows))
	for _, r := range rows {
		hours[time.Weekday(r.DayOfWeek)] = model.DayHours{Open: r.OpenMinute, Close: r.CloseMinute, Active: r.Active}
	}
	return hours, nil
}

func (s *Store) SetWeeklyHours(ctx context.Context, providerID uuid.UUID, hours model.WeeklyHours) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_hours WHERE provider_id = $1`, providerID); err != nil {
		return fmt.Errorf("clear weekly hours: %w", err)
	}
	for day, h := range hours {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO weekly_hours (provider_id, day_of_week, open_minute, close_minute, active)
			VALUES ($1, $2, $3, $4, $5)`,
			providerID, int(day), h.Open, h.Close, h.Active)
		if err != nil {
			return fmt.Errorf("insert %s hours: %w", day, mapErr(err))
		}
	}
	return tx.Commit()
}

const exceptionColumns = `id, provider_id, exception_date, start_minute, end_minute, is_available, reason, created_at`

func (s *Store) GetExceptions(ctx context.Context, providerID uuid.UUID, date model.Date) ([]model.ScheduleException, error) {
	return s.ListExceptions(ctx, providerID, date, date)
}

func (s *Store) ListExceptions(ctx context.Context, providerID uuid.UUID, from, to model.Date) ([]model.ScheduleException, error) {
	out := []model.ScheduleException{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+exceptionColumns+` FROM schedule_exceptions
		WHERE provider_id = $1 AND exception_date BETWEEN $2 AND $3
		ORDER BY exception_date, start_minute`, providerID, from, to)
	return out, mapErr(err)
}

func (s *Store) InsertException(ctx context.Context, e *model.ScheduleException) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = s.now()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO schedule_exceptions (`+exceptionColumns+`)
		VALUES (:id, :provider_id, :exception_date, :start_minute, :end_minute, :is_available, :reason, :created_at)`, e)
	return mapErr(err)
}

func (s *Store) DeleteException(ctx context.Context, providerID, id uuid.UUID) error {
	return execOne(ctx, s.db, `DELETE FROM schedule_exceptions WHERE id = $1 AND provider_id = $2`, id, providerID)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/repository"
)

const apptColumns = `id, doctor_id, patient_name, start_time, end_time, appt_type, created_at`

// Half-open interval overlap: an existing appointment conflicts with
// [$2, $3) iff start_time < $3 AND end_time > $2. Touching endpoints
// do not conflict.
const conflictQuery = `
	SELECT ` + apptColumns + `
	FROM appointments
	WHERE doctor_id = $1
	AND start_time < $3
	AND end_time > $2
	ORDER BY start_time ASC
	LIMIT 1
`

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + apptColumns + `
		FROM appointments
		WHERE id = $1
	`
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) ListForDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT ` + apptColumns + `
		FROM appointments
		WHERE doctor_id = $1
		AND start_time >= $2
		AND start_time < $3
		ORDER BY start_time ASC
	`
	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, doctorID, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) FindConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, conflictQuery, doctorID, start, end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return &appt, nil
}

// Insert performs the conflict check and insert in one transaction.
// An advisory lock keyed on the doctor id serializes concurrent
// inserts for the same doctor; bookings for different doctors proceed
// in parallel. The lock is released when the transaction ends.
func (r *appointmentRepository) Insert(ctx context.Context, appt *model.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.CreatedAt = time.Now()

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
			appt.DoctorID.String(),
		); err != nil {
			return fmt.Errorf("failed to acquire doctor lock: %w", err)
		}

		var existing model.Appointment
		err := tx.GetContext(ctx, &existing, conflictQuery, appt.DoctorID, appt.StartTime, appt.EndTime)
		if err == nil {
			return &repository.ConflictError{Existing: &existing}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO appointments (`+apptColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			appt.ID,
			appt.DoctorID,
			appt.PatientName,
			appt.StartTime,
			appt.EndTime,
			appt.ApptType,
			appt.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert appointment: %w", err)
		}
		return nil
	})
}

func (r *appointmentRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/booking-api/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ConflictError is returned by AppointmentRepository.Insert when the
// requested interval overlaps an existing appointment. Existing is the
// appointment that blocked the insert.
type ConflictError struct {
	Existing *model.Appointment
}

func (e *ConflictError) Error() string {
	return "appointment interval conflicts with " + e.Existing.ID.String()
}

// All repository interfaces in one file
type (
	// DoctorRepository handles doctor provisioning and lookup.
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	// AppointmentRepository stores committed bookings.
	//
	// Insert is the correctness-critical operation: it checks for an
	// overlapping appointment and inserts in one linearizable step per
	// doctor. Concurrent Insert calls for the same doctor serialize;
	// calls for different doctors do not block each other. On overlap
	// it returns a *ConflictError and persists nothing.
	AppointmentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		ListForDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error)
		FindConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (*model.Appointment, error)
		Insert(ctx context.Context, appt *model.Appointment) error
	}
)

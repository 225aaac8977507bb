package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default working hours for a newly provisioned doctor.
const (
	DefaultWorkStart = "09:00"
	DefaultWorkEnd   = "17:00"
)

// Doctor is a provider accepting appointments. Working hours are one
// fixed daily window stored as "HH:MM" wall-clock strings, resolved
// against a calendar date when schedules are computed. Doctors are
// immutable after provisioning.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	WorkStart string    `db:"work_start" json:"work_start"`
	WorkEnd   string    `db:"work_end" json:"work_end"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WorkingWindow resolves the doctor's daily window on the calendar
// date of day, in day's location. The window never spans midnight.
func (d *Doctor) WorkingWindow(day time.Time) (time.Time, time.Time, error) {
	start, err := combineDateTime(day, d.WorkStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid work_start %q: %w", d.WorkStart, err)
	}
	end, err := combineDateTime(day, d.WorkEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid work_end %q: %w", d.WorkEnd, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("work_end %q before work_start %q", d.WorkEnd, d.WorkStart)
	}
	return start, end, nil
}

func combineDateTime(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

type CreateDoctorRequest struct {
	Name      string `json:"name" binding:"required"`
	WorkStart string `json:"work_start" binding:"omitempty,hhmm"`
	WorkEnd   string `json:"work_end" binding:"omitempty,hhmm"`
}

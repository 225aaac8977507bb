package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a committed booking. The interval is half-open:
// [StartTime, EndTime), with EndTime = StartTime + duration of the
// appointment type. Appointments are immutable once created; for any
// doctor no two appointment intervals overlap.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	ApptType    string    `db:"appt_type" json:"appt_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TimeSlot is a candidate bookable interval proposed by the slot
// generator, not yet committed.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CreateAppointmentRequest carries a booking request. Start is an ISO
// timestamp, with or without a zone offset ("2025-12-03T10:00:00").
type CreateAppointmentRequest struct {
	DoctorID    string `json:"doctor_id" binding:"required,uuid"`
	PatientName string `json:"patient_name" binding:"required,max=200"`
	Start       string `json:"start" binding:"required"`
	ApptType    string `json:"appt_type" binding:"required"`
}

// DaySchedule is the GetSchedule response: doctor metadata plus,
// when a date was requested, that day's appointments.
type DaySchedule struct {
	Doctor       *Doctor        `json:"doctor"`
	Appointments []*Appointment `json:"appointments,omitempty"`
}

// Availability is the GetAvailableSlots response.
type Availability struct {
	DoctorID        uuid.UUID  `json:"doctor_id"`
	Date            string     `json:"date"`
	ApptType        string     `json:"appt_type"`
	DurationMinutes int        `json:"duration_minutes"`
	Slots           []TimeSlot `json:"slots"`
}

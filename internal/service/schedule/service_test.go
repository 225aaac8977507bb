package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/repository/memory"
	"github.com/clinicdesk/booking-api/internal/service/schedule"
	apperrors "github.com/clinicdesk/booking-api/pkg/errors"
)

var day = time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return time.Date(2025, time.December, 3, hour, min, 0, 0, time.UTC)
}

func newFixture(t *testing.T) (*schedule.Service, *memory.AppointmentRepository, *model.Doctor) {
	t.Helper()
	doctors := memory.NewDoctorRepository()
	appts := memory.NewAppointmentRepository()

	doc := &model.Doctor{Name: "Dr. Mehta", WorkStart: "09:00", WorkEnd: "17:00"}
	require.NoError(t, doctors.Create(context.Background(), doc))

	svc := schedule.NewService(doctors, appts, schedule.Defaults{}, nil, zerolog.Nop())
	return svc, appts, doc
}

func TestAvailableSlotsEmptyDay(t *testing.T) {
	svc, _, doc := newFixture(t)

	avail, err := svc.GetAvailableSlots(context.Background(), doc.ID, day, "General Consultation", 15)
	require.NoError(t, err)

	require.Len(t, avail.Slots, 31)
	assert.Equal(t, model.TimeSlot{Start: at(9, 0), End: at(9, 30)}, avail.Slots[0])
	assert.Equal(t, model.TimeSlot{Start: at(16, 30), End: at(17, 0)}, avail.Slots[30])
	assert.Equal(t, 30, avail.DurationMinutes)
}

func TestAvailableSlotsAroundBusyInterval(t *testing.T) {
	svc, appts, doc := newFixture(t)

	require.NoError(t, appts.Insert(context.Background(), &model.Appointment{
		DoctorID:    doc.ID,
		PatientName: "Bob",
		StartTime:   at(10, 0),
		EndTime:     at(10, 30),
		ApptType:    "General Consultation",
	}))

	avail, err := svc.GetAvailableSlots(context.Background(), doc.ID, day, "General Consultation", 15)
	require.NoError(t, err)

	// the 09:45, 10:00 and 10:15 candidates overlap the booking
	require.Len(t, avail.Slots, 28)
	assert.NotContains(t, avail.Slots, model.TimeSlot{Start: at(9, 45), End: at(10, 15)})
	assert.NotContains(t, avail.Slots, model.TimeSlot{Start: at(10, 0), End: at(10, 30)})
	assert.NotContains(t, avail.Slots, model.TimeSlot{Start: at(10, 15), End: at(10, 45)})
	assert.Contains(t, avail.Slots, model.TimeSlot{Start: at(9, 30), End: at(10, 0)})
	assert.Contains(t, avail.Slots, model.TimeSlot{Start: at(10, 30), End: at(11, 0)})
}

func TestAvailableSlotsFitWindowAndDuration(t *testing.T) {
	svc, appts, doc := newFixture(t)

	require.NoError(t, appts.Insert(context.Background(), &model.Appointment{
		DoctorID:  doc.ID,
		StartTime: at(12, 0),
		EndTime:   at(13, 0),
		ApptType:  "Specialist Consultation",
	}))

	for _, apptType := range []string{"Follow-up", "General Consultation", "Physical Exam", "Specialist Consultation"} {
		duration, ok := model.DurationFor(apptType)
		require.True(t, ok)

		avail, err := svc.GetAvailableSlots(context.Background(), doc.ID, day, apptType, 15)
		require.NoError(t, err)

		for _, slot := range avail.Slots {
			assert.Equal(t, duration, slot.End.Sub(slot.Start))
			assert.False(t, slot.Start.Before(at(9, 0)))
			assert.False(t, slot.End.After(at(17, 0)))
			// no slot may touch the busy hour
			assert.False(t, slot.Start.Before(at(13, 0)) && at(12, 0).Before(slot.End))
		}
	}
}

func TestAvailableSlotsDurationExceedsWindow(t *testing.T) {
	doctors := memory.NewDoctorRepository()
	appts := memory.NewAppointmentRepository()
	doc := &model.Doctor{Name: "Dr. Brief", WorkStart: "09:00", WorkEnd: "09:45"}
	require.NoError(t, doctors.Create(context.Background(), doc))

	svc := schedule.NewService(doctors, appts, schedule.Defaults{}, nil, zerolog.Nop())
	avail, err := svc.GetAvailableSlots(context.Background(), doc.ID, day, "Specialist Consultation", 15)
	require.NoError(t, err)
	assert.Empty(t, avail.Slots)
}

func TestAvailableSlotsDefaults(t *testing.T) {
	svc, _, doc := newFixture(t)

	avail, err := svc.GetAvailableSlots(context.Background(), doc.ID, day, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "General Consultation", avail.ApptType)
	require.Len(t, avail.Slots, 31)
}

func TestAvailableSlotsConfiguredDefaults(t *testing.T) {
	doctors := memory.NewDoctorRepository()
	appts := memory.NewAppointmentRepository()
	doc := &model.Doctor{Name: "Dr. Mehta", WorkStart: "09:00", WorkEnd: "17:00"}
	require.NoError(t, doctors.Create(context.Background(), doc))

	svc := schedule.NewService(doctors, appts, schedule.Defaults{StepMinutes: 30, ApptType: "Follow-up"}, nil, zerolog.Nop())

	avail, err := svc.GetAvailableSlots(context.Background(), doc.ID, day, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "Follow-up", avail.ApptType)
	assert.Equal(t, 15, avail.DurationMinutes)
	require.Len(t, avail.Slots, 16)
	assert.Equal(t, model.TimeSlot{Start: at(16, 30), End: at(16, 45)}, avail.Slots[15])

	// an explicit step still wins over the configured one
	avail, err = svc.GetAvailableSlots(context.Background(), doc.ID, day, "Follow-up", 60)
	require.NoError(t, err)
	require.Len(t, avail.Slots, 8)
}

func TestAvailableSlotsErrors(t *testing.T) {
	svc, _, doc := newFixture(t)

	_, err := svc.GetAvailableSlots(context.Background(), doc.ID, day, "Telepathy Session", 15)
	assert.Equal(t, apperrors.ErrUnknownApptType, apperrors.CodeOf(err))

	_, err = svc.GetAvailableSlots(context.Background(), uuid.New(), day, "General Consultation", 15)
	assert.Equal(t, apperrors.ErrDoctorNotFound, apperrors.CodeOf(err))

	_, err = svc.GetAvailableSlots(context.Background(), doc.ID, day, "General Consultation", -5)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.CodeOf(err))
}

func TestGetSchedule(t *testing.T) {
	svc, appts, doc := newFixture(t)

	// without a date: metadata only
	sched, err := svc.GetSchedule(context.Background(), doc.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, sched.Doctor.ID)
	assert.Nil(t, sched.Appointments)

	require.NoError(t, appts.Insert(context.Background(), &model.Appointment{
		DoctorID:    doc.ID,
		PatientName: "Carol",
		StartTime:   at(11, 0),
		EndTime:     at(11, 30),
		ApptType:    "General Consultation",
	}))

	sched, err = svc.GetSchedule(context.Background(), doc.ID, &day)
	require.NoError(t, err)
	require.Len(t, sched.Appointments, 1)
	assert.Equal(t, "Carol", sched.Appointments[0].PatientName)

	_, err = svc.GetSchedule(context.Background(), uuid.New(), &day)
	assert.Equal(t, apperrors.ErrDoctorNotFound, apperrors.CodeOf(err))
}

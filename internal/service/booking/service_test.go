package booking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/repository/memory"
	"github.com/clinicdesk/booking-api/internal/service/booking"
	apperrors "github.com/clinicdesk/booking-api/pkg/errors"
	"github.com/clinicdesk/booking-api/pkg/interval"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.December, 3, hour, min, 0, 0, time.UTC)
}

func newFixture(t *testing.T) (*booking.Service, *memory.AppointmentRepository, *model.Doctor) {
	t.Helper()
	doctors := memory.NewDoctorRepository()
	appts := memory.NewAppointmentRepository()

	doc := &model.Doctor{Name: "Dr. Mehta", WorkStart: "09:00", WorkEnd: "17:00"}
	require.NoError(t, doctors.Create(context.Background(), doc))

	svc := booking.NewService(doctors, appts, nil, nil, zerolog.Nop())
	return svc, appts, doc
}

func TestBookSuccess(t *testing.T) {
	svc, appts, doc := newFixture(t)

	appt, err := svc.Book(context.Background(), doc.ID, "Alice", at(10, 0), "General Consultation")
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), appt.StartTime)
	assert.Equal(t, at(10, 30), appt.EndTime)
	assert.Equal(t, "Alice", appt.PatientName)

	stored, err := appts.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.StartTime, stored.StartTime)
}

func TestBookUnknownApptType(t *testing.T) {
	svc, appts, doc := newFixture(t)

	_, err := svc.Book(context.Background(), doc.ID, "Alice", at(10, 0), "Telepathy Session")
	assert.Equal(t, apperrors.ErrUnknownApptType, apperrors.CodeOf(err))

	got, err := appts.ListForDay(context.Background(), doc.ID, at(0, 0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBookDoctorNotFound(t *testing.T) {
	svc, appts, _ := newFixture(t)

	unknown := uuid.New()
	_, err := svc.Book(context.Background(), unknown, "Alice", at(10, 0), "General Consultation")
	assert.Equal(t, apperrors.ErrDoctorNotFound, apperrors.CodeOf(err))

	got, err := appts.ListForDay(context.Background(), unknown, at(0, 0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBookMissingPatientName(t *testing.T) {
	svc, _, doc := newFixture(t)

	_, err := svc.Book(context.Background(), doc.ID, "   ", at(10, 0), "General Consultation")
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.CodeOf(err))
}

func TestBookOutsideWorkingHours(t *testing.T) {
	svc, _, doc := newFixture(t)

	// before opening
	_, err := svc.Book(context.Background(), doc.ID, "Alice", at(8, 30), "General Consultation")
	assert.Equal(t, apperrors.ErrOutsideWorkingHours, apperrors.CodeOf(err))

	// would run past closing
	_, err = svc.Book(context.Background(), doc.ID, "Alice", at(16, 45), "General Consultation")
	assert.Equal(t, apperrors.ErrOutsideWorkingHours, apperrors.CodeOf(err))

	// exactly the closing slot is fine
	_, err = svc.Book(context.Background(), doc.ID, "Alice", at(16, 30), "General Consultation")
	assert.NoError(t, err)
}

func TestBookSlotConflictCarriesBlockingID(t *testing.T) {
	svc, _, doc := newFixture(t)

	first, err := svc.Book(context.Background(), doc.ID, "Alice", at(10, 0), "General Consultation")
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), doc.ID, "Bob", at(10, 0), "General Consultation")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrSlotConflict, appErr.Code)
	assert.Equal(t, first.ID, appErr.ConflictingID)
}

func TestBookTouchingSlots(t *testing.T) {
	svc, _, doc := newFixture(t)

	_, err := svc.Book(context.Background(), doc.ID, "Alice", at(10, 0), "General Consultation")
	require.NoError(t, err)

	// back to back on both sides, half-open intervals do not collide
	_, err = svc.Book(context.Background(), doc.ID, "Bob", at(10, 30), "General Consultation")
	assert.NoError(t, err)
	_, err = svc.Book(context.Background(), doc.ID, "Carol", at(9, 30), "General Consultation")
	assert.NoError(t, err)
}

func TestBookRaceExactlyOneWinner(t *testing.T) {
	svc, _, doc := newFixture(t)

	const racers = 24
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), doc.ID, "Racer", at(11, 0), "General Consultation")
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.CodeOf(err) == apperrors.ErrSlotConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, conflicts)
}

func TestNoDoubleBookingAfterManyBooks(t *testing.T) {
	svc, appts, doc := newFixture(t)

	starts := []time.Time{at(9, 0), at(9, 15), at(9, 30), at(10, 0), at(10, 15), at(11, 0), at(14, 30)}
	var wg sync.WaitGroup
	for _, start := range starts {
		for _, apptType := range []string{"Follow-up", "General Consultation"} {
			wg.Add(1)
			go func(start time.Time, apptType string) {
				defer wg.Done()
				svc.Book(context.Background(), doc.ID, "Patient", start, apptType)
			}(start, apptType)
		}
	}
	wg.Wait()

	stored, err := appts.ListForDay(context.Background(), doc.ID, at(0, 0))
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	for i := range stored {
		for j := i + 1; j < len(stored); j++ {
			assert.False(t, interval.Overlaps(
				stored[i].StartTime, stored[i].EndTime,
				stored[j].StartTime, stored[j].EndTime,
			), "appointments %d and %d overlap", i, j)
		}
	}
}

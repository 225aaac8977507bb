package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/repository"
	apperrors "github.com/clinicdesk/booking-api/pkg/errors"
	"github.com/clinicdesk/booking-api/pkg/interval"
	"github.com/clinicdesk/booking-api/pkg/metrics"
)

// DefaultStepMinutes is the slot proposal granularity used when
// neither the caller nor the configuration specifies one.
const DefaultStepMinutes = 15

// Doctors are immutable after provisioning, so a short TTL cache in
// front of the repository is safe.
const (
	doctorCacheTTL     = 5 * time.Minute
	doctorCacheCleanup = 15 * time.Minute
)

// Defaults holds the configured scheduling policy applied when a
// request leaves the step or appointment type unspecified. Zero values
// fall back to DefaultStepMinutes and model.DefaultApptType.
type Defaults struct {
	StepMinutes int
	ApptType    string
}

type Service struct {
	doctors  repository.DoctorRepository
	appts    repository.AppointmentRepository
	defaults Defaults
	cache    *cache.Cache
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(doctors repository.DoctorRepository, appts repository.AppointmentRepository, defaults Defaults, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if defaults.StepMinutes <= 0 {
		defaults.StepMinutes = DefaultStepMinutes
	}
	if defaults.ApptType == "" {
		defaults.ApptType = model.DefaultApptType
	}
	return &Service{
		doctors:  doctors,
		appts:    appts,
		defaults: defaults,
		cache:    cache.New(doctorCacheTTL, doctorCacheCleanup),
		metrics:  m,
		logger:   logger.With().Str("service", "schedule").Logger(),
	}
}

// CreateDoctor provisions a doctor. Empty working hours fall back to
// the clinic defaults; configured hours must parse and not be inverted.
func (s *Service) CreateDoctor(ctx context.Context, doctor *model.Doctor) error {
	if doctor.WorkStart == "" {
		doctor.WorkStart = model.DefaultWorkStart
	}
	if doctor.WorkEnd == "" {
		doctor.WorkEnd = model.DefaultWorkEnd
	}
	if _, _, err := doctor.WorkingWindow(time.Now()); err != nil {
		return apperrors.InvalidInput("invalid working hours", err)
	}

	if err := s.doctors.Create(ctx, doctor); err != nil {
		return apperrors.StorageUnavailable(err)
	}
	return nil
}

// GetDoctor resolves a doctor through the cache.
func (s *Service) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*model.Doctor, error) {
	if cached, ok := s.cache.Get(doctorID.String()); ok {
		return cached.(*model.Doctor), nil
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.DoctorNotFound(doctorID)
	}
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	s.cache.Set(doctorID.String(), doctor, cache.DefaultExpiration)
	return doctor, nil
}

// ListDoctors returns all provisioned doctors.
func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	return doctors, nil
}

// GetSchedule returns the doctor's metadata and, when date is non-nil,
// that day's appointments ordered by start time.
func (s *Service) GetSchedule(ctx context.Context, doctorID uuid.UUID, date *time.Time) (*model.DaySchedule, error) {
	doctor, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	sched := &model.DaySchedule{Doctor: doctor}
	if date == nil {
		return sched, nil
	}

	appts, err := s.appts.ListForDay(ctx, doctorID, *date)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	sched.Appointments = appts
	return sched, nil
}

// GetAvailableSlots proposes bookable slots for the doctor on the
// given date: discrete, step-aligned candidates of the appointment
// type's duration that fit the working window and clear every existing
// booking. Results are advisory; a slot can be taken by a concurrent
// booking before the caller commits it, and Book resolves that race.
func (s *Service) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, apptType string, stepMinutes int) (*model.Availability, error) {
	if apptType == "" {
		apptType = s.defaults.ApptType
	}
	if stepMinutes == 0 {
		stepMinutes = s.defaults.StepMinutes
	}
	if stepMinutes < 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("step_minutes must be positive, got %d", stepMinutes), nil)
	}

	duration, ok := model.DurationFor(apptType)
	if !ok {
		return nil, apperrors.UnknownApptType(apptType)
	}

	doctor, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	workStart, workEnd, err := doctor.WorkingWindow(date)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	busy, err := s.appts.ListForDay(ctx, doctorID, date)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	started := time.Now()
	slots := sweepSlots(workStart, workEnd, busy, duration, time.Duration(stepMinutes)*time.Minute)
	if s.metrics != nil {
		s.metrics.SlotRequestsTotal.Inc()
		s.metrics.SlotGenerationLatency.Observe(time.Since(started).Seconds())
		s.metrics.SlotsReturned.Observe(float64(len(slots)))
	}

	s.logger.Debug().
		Str("doctor_id", doctorID.String()).
		Str("appt_type", apptType).
		Int("busy", len(busy)).
		Int("slots", len(slots)).
		Msg("availability computed")

	return &model.Availability{
		DoctorID:        doctorID,
		Date:            date.Format("2006-01-02"),
		ApptType:        apptType,
		DurationMinutes: int(duration.Minutes()),
		Slots:           slots,
	}, nil
}

// sweepSlots walks the working window at step granularity and keeps
// every candidate [cursor, cursor+duration) that clears all busy
// intervals. It proposes bookable choices, not maximal free gaps, so
// consecutive candidates may overlap one another when step < duration.
func sweepSlots(workStart, workEnd time.Time, busy []*model.Appointment, duration, step time.Duration) []model.TimeSlot {
	slots := []model.TimeSlot{}
	for cursor := workStart; !cursor.Add(duration).After(workEnd); cursor = cursor.Add(step) {
		end := cursor.Add(duration)

		conflict := false
		for _, a := range busy {
			if interval.Overlaps(cursor, end, a.StartTime, a.EndTime) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, model.TimeSlot{Start: cursor, End: end})
		}
	}
	return slots
}

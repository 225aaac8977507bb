package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/repository"
	apperrors "github.com/clinicdesk/booking-api/pkg/errors"
	"github.com/clinicdesk/booking-api/pkg/interval"
	"github.com/clinicdesk/booking-api/pkg/messaging"
	"github.com/clinicdesk/booking-api/pkg/metrics"
)

const publishTimeout = 2 * time.Second

type Service struct {
	doctors repository.DoctorRepository
	appts   repository.AppointmentRepository
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(doctors repository.DoctorRepository, appts repository.AppointmentRepository, broker messaging.Broker, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		doctors: doctors,
		appts:   appts,
		broker:  broker,
		metrics: m,
		logger:  logger.With().Str("service", "booking").Logger(),
	}
}

// Book validates the request against the appointment-type catalogue
// and the doctor's working window, then commits the appointment
// through the repository's atomic conflict-check-and-insert. The
// checks run in a fixed order so callers get consistent errors:
// unknown type, unknown doctor, outside working hours, slot conflict.
// On any failure nothing is persisted.
func (s *Service) Book(ctx context.Context, doctorID uuid.UUID, patientName string, start time.Time, apptType string) (*model.Appointment, error) {
	duration, ok := model.DurationFor(apptType)
	if !ok {
		return nil, apperrors.UnknownApptType(apptType)
	}
	end := start.Add(duration)

	if strings.TrimSpace(patientName) == "" {
		return nil, apperrors.InvalidInput("patient_name is required", nil)
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.DoctorNotFound(doctorID)
	}
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	workStart, workEnd, err := doctor.WorkingWindow(start)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !interval.Contains(workStart, workEnd, start, end) {
		return nil, apperrors.OutsideWorkingHours(fmt.Sprintf(
			"appointment %s-%s outside working hours %s-%s",
			start.Format("15:04"), end.Format("15:04"),
			doctor.WorkStart, doctor.WorkEnd,
		))
	}

	appt := &model.Appointment{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		PatientName: patientName,
		StartTime:   start,
		EndTime:     end,
		ApptType:    apptType,
	}

	started := time.Now()
	err = s.appts.Insert(ctx, appt)
	if s.metrics != nil {
		s.metrics.BookingLatency.Observe(time.Since(started).Seconds())
	}

	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		s.count("conflict")
		if s.metrics != nil {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, apperrors.SlotConflict(conflict.Existing.ID)
	}
	if err != nil {
		s.count("error")
		return nil, apperrors.StorageUnavailable(err)
	}

	s.count("booked")
	s.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("doctor_id", doctorID.String()).
		Time("start", start).
		Str("appt_type", apptType).
		Msg("appointment booked")

	s.publishCreated(appt)
	return appt, nil
}

// GetAppointment returns a committed booking by id.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appts.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	return appt, nil
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(outcome).Inc()
	}
}

// publishCreated announces the booking on the broker. Best-effort: the
// appointment is already committed, so a broker failure is logged and
// counted but never surfaced to the caller.
func (s *Service) publishCreated(appt *model.Appointment) {
	if s.broker == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.broker.Publish(ctx, messaging.ChannelAppointmentCreated, appt); err != nil {
		if s.metrics != nil {
			s.metrics.EventsFailed.Inc()
		}
		s.logger.Warn().Err(err).
			Str("appointment_id", appt.ID.String()).
			Msg("failed to publish booking event")
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.Inc()
	}
}

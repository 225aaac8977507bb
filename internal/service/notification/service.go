package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/clinicdesk/booking-api/internal/config"
	"github.com/clinicdesk/booking-api/internal/model"
)

type Service interface {
	SendBookingConfirmation(ctx context.Context, appt *model.Appointment) error
}

type emailService struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
	logger zerolog.Logger
}

func NewEmailService(cfg config.EmailConfig, logger zerolog.Logger) Service {
	return &emailService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger.With().Str("service", "notification").Logger(),
	}
}

// SendBookingConfirmation mails a booking summary to the clinic desk.
// Patients are not modeled with contact details, so the front desk is
// the notification target.
func (s *emailService) SendBookingConfirmation(_ context.Context, appt *model.Appointment) error {
	if s.cfg.DeskAddress == "" {
		s.logger.Debug().Msg("no desk address configured, skipping confirmation mail")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.DeskAddress)
	m.SetHeader("Subject", fmt.Sprintf("New appointment: %s on %s", appt.PatientName, appt.StartTime.Format("2006-01-02")))
	m.SetBody("text/plain", fmt.Sprintf(
		"Appointment %s\n\nPatient: %s\nType: %s\nWhen: %s - %s\nDoctor: %s\n",
		appt.ID,
		appt.PatientName,
		appt.ApptType,
		appt.StartTime.Format("2006-01-02 15:04"),
		appt.EndTime.Format("15:04"),
		appt.DoctorID,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation mail: %w", err)
	}

	s.logger.Info().Str("appointment_id", appt.ID.String()).Msg("confirmation mail sent")
	return nil
}

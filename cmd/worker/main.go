package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinicdesk/booking-api/internal/config"
	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/service/notification"
	"github.com/clinicdesk/booking-api/pkg/logger"
	"github.com/clinicdesk/booking-api/pkg/messaging"
	redisBroker "github.com/clinicdesk/booking-api/pkg/messaging/redis"
)

// The worker consumes booking events off the broker and sends
// confirmation mail, keeping SMTP latency out of the booking path.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Logging.Pretty,
	})

	broker, err := redisBroker.NewBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	notifier := notification.NewEmailService(cfg.Email, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := broker.Subscribe(ctx, messaging.ChannelAppointmentCreated)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe")
	}

	go func() {
		for payload := range msgs {
			var appt model.Appointment
			if err := json.Unmarshal(payload, &appt); err != nil {
				log.Warn().Err(err).Msg("dropping malformed booking event")
				continue
			}
			if err := notifier.SendBookingConfirmation(ctx, &appt); err != nil {
				log.Error().Err(err).
					Str("appointment_id", appt.ID.String()).
					Msg("failed to send confirmation")
			}
		}
	}()

	log.Info().Msg("notification worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("notification worker stopped")
}

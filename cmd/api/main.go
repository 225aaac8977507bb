package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinicdesk/booking-api/internal/config"
	"github.com/clinicdesk/booking-api/internal/handler"
	appointmentHandler "github.com/clinicdesk/booking-api/internal/handler/appointment"
	doctorHandler "github.com/clinicdesk/booking-api/internal/handler/doctor"
	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/repository"
	"github.com/clinicdesk/booking-api/internal/repository/postgres"
	"github.com/clinicdesk/booking-api/internal/router"
	bookingService "github.com/clinicdesk/booking-api/internal/service/booking"
	scheduleService "github.com/clinicdesk/booking-api/internal/service/schedule"
	"github.com/clinicdesk/booking-api/pkg/logger"
	"github.com/clinicdesk/booking-api/pkg/messaging"
	redisBroker "github.com/clinicdesk/booking-api/pkg/messaging/redis"
	"github.com/clinicdesk/booking-api/pkg/metrics"
)

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

	model.SetApptDurations(cfg.Booking.ApptTypeMinutes)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	if err := seedDoctor(doctorRepo, cfg.Booking); err != nil {
		log.Fatal().Err(err).Msg("failed to seed doctor")
	}

	// The broker is best-effort: bookings work without it, the
	// notification worker just sees nothing.
	var broker messaging.Broker
	broker, err = redisBroker.NewBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, booking events disabled")
		broker = nil
	} else {
		defer broker.Close()
	}

	m := metrics.New("clinicdesk")

	scheduleSvc := scheduleService.NewService(doctorRepo, appointmentRepo, scheduleService.Defaults{
		StepMinutes: cfg.Booking.StepMinutes,
		ApptType:    cfg.Booking.DefaultApptType,
	}, m, log.Logger)
	bookingSvc := bookingService.NewService(doctorRepo, appointmentRepo, broker, m, log.Logger)

	routerCfg := router.DefaultConfig()
	routerCfg.Timeout = time.Duration(cfg.Server.TimeoutSeconds) * time.Second

	r := router.New(
		routerCfg,
		handler.NewHandler(),
		doctorHandler.NewHandler(scheduleSvc),
		appointmentHandler.NewHandler(bookingSvc),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// seedDoctor provisions a default doctor on an empty database so a
// fresh deployment is immediately bookable.
func seedDoctor(repo repository.DoctorRepository, cfg config.BookingConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doctors, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(doctors) > 0 {
		return nil
	}

	doc := &model.Doctor{
		Name:      "Dr. Mehta",
		WorkStart: cfg.DefaultWorkStart,
		WorkEnd:   cfg.DefaultWorkEnd,
	}
	if err := repo.Create(ctx, doc); err != nil {
		return err
	}
	log.Info().Str("doctor_id", doc.ID.String()).Msg("seeded default doctor")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/confirmation-links/internal/application"
	"github.com/example/confirmation-links/internal/config"
	httptransport "github.com/example/confirmation-links/internal/http"
	"github.com/example/confirmation-links/internal/notify"
	"github.com/example/confirmation-links/internal/persistence"
	"github.com/example/confirmation-links/internal/persistence/sqlite"
	"github.com/example/confirmation-links/internal/signing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Ping(context.Background()); err != nil {
		logger.Error("failed to reach storage", "error", err)
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	store := newAppointmentStoreAdapter(sqlite.NewAppointmentRepository(storage))
	signer := signing.NewSigner([]byte(cfg.LinkSecret))

	var notifier application.Notifier = notify.NopNotifier{}
	if cfg.NotifyEnabled() {
		sender := notify.NewWebhookSender(cfg.NotifyURL, []byte(cfg.NotifySecret), cfg.NotifyTimeout)
		dispatcher := notify.NewDispatcher(sender, cfg.NotifyTimeout, 64, logger)
		defer dispatcher.Close()
		notifier = dispatcher
	} else {
		logger.Info("notification endpoint not configured, outbound notifications disabled")
	}

	service := application.NewConfirmationServiceWithLogger(store, signer, notifier, nil, time.Now, cfg.DefaultTTL, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Confirmations: httptransport.NewConfirmationHandler(service, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("confirmation API listening", "addr", server.Addr)
	serveErr := server.ListenAndServe()

	// Shutdown waits for in-flight handlers; the dispatcher must stay open
	// until it finishes so their notifications are not dropped.
	stop()
	<-shutdownDone

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", serveErr)
		os.Exit(1)
	}
}

type appointmentStoreAdapter struct {
	repo persistence.AppointmentRepository
}

func newAppointmentStoreAdapter(repo persistence.AppointmentRepository) *appointmentStoreAdapter {
	return &appointmentStoreAdapter{repo: repo}
}

func (a *appointmentStoreAdapter) CreateAppointment(ctx context.Context, appointment application.Appointment) (application.Appointment, error) {
	stored, err := a.repo.CreateAppointment(ctx, toPersistenceAppointment(appointment))
	if err != nil {
		return application.Appointment{}, toApplicationError(err)
	}
	return toApplicationAppointment(stored), nil
}

func (a *appointmentStoreAdapter) GetAppointment(ctx context.Context, id int64) (application.Appointment, error) {
	stored, err := a.repo.GetAppointment(ctx, id)
	if err != nil {
		return application.Appointment{}, toApplicationError(err)
	}
	return toApplicationAppointment(stored), nil
}

func (a *appointmentStoreAdapter) TransitionStatus(ctx context.Context, id int64, to application.Status, at time.Time) (application.Appointment, error) {
	stored, err := a.repo.TransitionStatus(ctx, id, persistence.Status(to), at)
	if err != nil {
		// A conflict carries the record's current state so the service can
		// apply its idempotence policy.
		return toApplicationAppointment(stored), toApplicationError(err)
	}
	return toApplicationAppointment(stored), nil
}

func toApplicationError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrStatusConflict):
		return application.ErrStatusConflict
	}
	return err
}

func toApplicationAppointment(model persistence.Appointment) application.Appointment {
	return application.Appointment{
		ID:          model.ID,
		ClientName:  model.ClientName,
		ClientPhone: model.ClientPhone,
		ScheduledAt: model.ScheduledAt,
		Status:      application.Status(model.Status),
		SigningSalt: model.SigningSalt,
		ExpiresAt:   model.ExpiresAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceAppointment(appointment application.Appointment) persistence.Appointment {
	return persistence.Appointment{
		ID:          appointment.ID,
		ClientName:  appointment.ClientName,
		ClientPhone: appointment.ClientPhone,
		ScheduledAt: appointment.ScheduledAt,
		Status:      persistence.Status(appointment.Status),
		SigningSalt: appointment.SigningSalt,
		ExpiresAt:   appointment.ExpiresAt,
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}
}

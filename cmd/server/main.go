package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/v-anushka05/mockmate-backend/internal/app"
	"github.com/v-anushka05/mockmate-backend/internal/config"
	"github.com/v-anushka05/mockmate-backend/internal/controller/httpapi"
	"github.com/v-anushka05/mockmate-backend/internal/mailer"
	"github.com/v-anushka05/mockmate-backend/internal/repository"
	"github.com/v-anushka05/mockmate-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting MockMate booking service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	userRepo := repository.NewUserRepository(pool)
	interviewerRepo := repository.NewInterviewerRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	transport, err := mailer.NewSMTPTransport(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSecure,
		cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom,
	)
	if err != nil {
		logger.Fatal("Failed to create mail transport", zap.Error(err))
	}

	dispatcher := mailer.NewDispatcher(transport, cfg.BaseURL, logger)
	dispatcher.Subscribe(func(event mailer.NotificationSent) {
		logger.Debug("Notification delivered",
			zap.String("template", string(event.Kind)),
			zap.String("to", event.To))
	})

	bookingService := service.NewBookingService(
		userRepo, interviewerRepo, bookingRepo, dispatcher, logger,
	)

	sweeper := app.NewSweeper(bookingRepo, cfg.SweepSpec, logger)
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatal("Failed to start sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	router := httpapi.NewRouter(httpapi.NewHandler(bookingService), cfg.Environment)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

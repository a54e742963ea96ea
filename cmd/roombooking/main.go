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

	"github.com/google/uuid"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/config"
	"github.com/example/room-booking/internal/email"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	bookingRepo := sqlite.NewBookingRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	employeeRepo := sqlite.NewEmployeeRepository(pool)

	validator := booking.NewValidator(booking.DefaultPrimePolicy(cfg.Location()), idGenerator)

	var notifier application.Notifier
	if cfg.MailEnabled() {
		notifier = email.NewSMTPSender(cfg.SMTPAddr, cfg.SenderEmail)
		logger.Info("mail notifications enabled", "smtp_addr", cfg.SMTPAddr)
	} else {
		logger.Info("mail notifications disabled")
	}

	bookingService := application.NewBookingServiceWithLogger(bookingRepo, roomRepo, employeeRepo, validator, notifier, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(roomRepo, idGenerator, now, logger)
	employeeService := application.NewEmployeeServiceWithLogger(employeeRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings:   httptransport.NewBookingHandler(bookingService, logger),
		Rooms:      httptransport.NewRoomHandler(roomService, logger),
		Employees:  httptransport.NewEmployeeHandler(employeeService, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room booking API listening", "addr", server.Addr, "timezone", cfg.Timezone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/fleetminder/fleetminder-go/internal/config"
	"github.com/fleetminder/fleetminder-go/internal/crypto"
	"github.com/fleetminder/fleetminder-go/internal/handler"
	"github.com/fleetminder/fleetminder-go/internal/mailer"
	"github.com/fleetminder/fleetminder-go/internal/middleware"
	"github.com/fleetminder/fleetminder-go/internal/model"
	"github.com/fleetminder/fleetminder-go/internal/repository"
	"github.com/fleetminder/fleetminder-go/internal/scanner"
	"github.com/fleetminder/fleetminder-go/internal/scheduler"
	"github.com/fleetminder/fleetminder-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Warn("unknown timezone, falling back to local", "timezone", cfg.Timezone)
		loc = time.Local
	}

	client, err := repository.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		seedAdminUser(userRepo, cfg)
	}

	smtpMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	vehicleService := service.NewVehicleService(vehicleRepo, smtpMailer, cfg.ObserverEmail, cfg.SendTimeout)

	authHandler := handler.NewAuthHandler(authService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)

	scan := scanner.New(vehicleRepo, smtpMailer, cfg.ObserverEmail, cfg.SendTimeout)
	sched, err := scheduler.New(loc, cfg.ScanSchedule, func() {
		report, err := scan.Run(context.Background())
		if err != nil {
			slog.Error("expiration scan failed", "error", err)
			return
		}
		slog.Info("expiration scan finished",
			"scanned", report.Scanned, "sent", report.Sent,
			"skipped", report.Skipped, "failed", report.Failed)
	})
	if err != nil {
		slog.Error("invalid scan schedule", "schedule", cfg.ScanSchedule, "error", err)
		os.Exit(1)
	}

	sched.Start()
	slog.Info("expiration scheduler started", "schedule", cfg.ScanSchedule, "timezone", loc.String())

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/login", authHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authService, cfg.JWTSecret))
		r.Post("/api/vehicles", vehicleHandler.HandleCreate)
		r.Get("/api/vehicles", vehicleHandler.HandleList)
		r.Put("/api/vehicles/{vehicle_id}", vehicleHandler.HandleUpdate)
		r.Delete("/api/vehicles/{vehicle_id}", vehicleHandler.HandleDelete)
		r.Post("/api/vehicles/{vehicle_id}/notify", vehicleHandler.HandleNotify)
	})

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
		slog.Info("serving static files", "dir", cfg.StaticDir)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	// Let an in-flight scan finish its current sends rather than tearing the
	// process down mid-dispatch.
	schedCtx, schedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer schedCancel()
	if err := sched.Stop(schedCtx); err != nil {
		slog.Error("scheduler stopped with in-flight scan abandoned", "error", err)
	}

	slog.Info("server stopped")
}

// seedAdminUser creates the configured initial account if it does not exist.
// The original deployment provisioned users directly in the database; this
// gives a fresh install one working login.
func seedAdminUser(users *repository.UserRepository, cfg config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := users.GetByUsername(ctx, cfg.AdminUsername); err == nil {
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		slog.Warn("admin seed lookup failed", "error", err)
		return
	}

	hash, err := crypto.HashPassword(cfg.AdminPassword)
	if err != nil {
		slog.Warn("admin seed hashing failed", "error", err)
		return
	}

	err = users.Create(ctx, &model.User{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		FullName:     cfg.AdminFullName,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicateUsername) {
		slog.Warn("admin seed failed", "error", err)
		return
	}
	slog.Info("seeded admin user", "username", cfg.AdminUsername)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicindia/api/internal/config"
	"github.com/clinicindia/api/internal/domain/account"
	"github.com/clinicindia/api/internal/domain/appointment"
	"github.com/clinicindia/api/internal/domain/billing"
	"github.com/clinicindia/api/internal/domain/doctor"
	"github.com/clinicindia/api/internal/domain/medicalrecord"
	"github.com/clinicindia/api/internal/domain/notification"
	"github.com/clinicindia/api/internal/domain/patient"
	"github.com/clinicindia/api/internal/domain/prescription"
	"github.com/clinicindia/api/internal/platform/auth"
	"github.com/clinicindia/api/internal/platform/db"
	"github.com/clinicindia/api/internal/platform/middleware"
)

// scheduleAdapter exposes the doctor schedule to the appointment domain
// without the two packages importing each other.
type scheduleAdapter struct {
	doctors *doctor.Service
}

func (a scheduleAdapter) WindowsForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]appointment.Window, error) {
	entries, err := a.doctors.WindowsForDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	windows := make([]appointment.Window, 0, len(entries))
	for _, e := range entries {
		windows = append(windows, appointment.Window{
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			SlotMinutes: e.SlotMinutes,
		})
	}
	return windows, nil
}

// notifierAdapter adapts the notification service to the simpler Notify
// shape appointment expects.
type notifierAdapter struct {
	svc *notification.Service
}

func (n notifierAdapter) Notify(ctx context.Context, userID uuid.UUID, typ, title, message string) error {
	_, err := n.svc.Notify(ctx, userID, typ, title, message)
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, poolConfig(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, poolConfig(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: cfg.DBConnTimeout,
		IdleTimeout:    cfg.DBIdleTimeout,
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	handle := db.NewHandle(poolConfig(cfg))
	defer handle.Close()

	pool, err := handle.Get(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	logger.Info().Msg("connected to database")

	// Platform services
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTExpiry)
	hasher := auth.NewHasher(cfg.BcryptCost)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger, cfg.IsDev())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", db.HealthHandler(handle))

	// API group with rate limiting. Optional auth runs first so the
	// limiter can bucket authenticated callers by user id; protected
	// routes still enforce auth.Required in their own groups.
	api := e.Group("/api")
	api.Use(auth.Optional(tokens))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Domain wiring. Cross-domain lookups go through the small directory
	// interfaces each consumer declares, implemented by the services here.
	accountSvc := account.NewService(account.NewUserRepoPG(pool), hasher, tokens)
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	doctorSvc := doctor.NewService(doctor.NewRepoPG(pool), doctor.NewScheduleRepoPG(pool))
	notificationSvc := notification.NewService(notification.NewRepoPG(pool))
	appointmentSvc := appointment.NewService(
		appointment.NewRepoPG(pool),
		patientSvc,
		scheduleAdapter{doctors: doctorSvc},
		notifierAdapter{svc: notificationSvc},
	)
	recordSvc := medicalrecord.NewService(medicalrecord.NewRepoPG(pool), doctorSvc)
	prescriptionSvc := prescription.NewService(prescription.NewRepoPG(pool), doctorSvc)
	billingSvc := billing.NewService(billing.NewRepoPG(pool), doctorSvc)

	account.NewHandler(accountSvc, tokens).RegisterRoutes(api)
	patient.NewHandler(patientSvc, tokens).RegisterRoutes(api)
	doctor.NewHandler(doctorSvc, tokens).RegisterRoutes(api)
	appointment.NewHandler(appointmentSvc, tokens).RegisterRoutes(api)
	medicalrecord.NewHandler(recordSvc, tokens).RegisterRoutes(api)
	prescription.NewHandler(prescriptionSvc, tokens).RegisterRoutes(api)
	billing.NewHandler(billingSvc, tokens).RegisterRoutes(api)
	notification.NewHandler(notificationSvc, tokens).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

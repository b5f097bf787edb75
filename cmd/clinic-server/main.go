package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinident/clinident/internal/config"
	"github.com/clinident/clinident/internal/domain/billing"
	"github.com/clinident/clinident/internal/domain/clinical"
	"github.com/clinident/clinident/internal/domain/dashboard"
	"github.com/clinident/clinident/internal/domain/inventory"
	"github.com/clinident/clinident/internal/domain/patient"
	"github.com/clinident/clinident/internal/domain/scheduling"
	"github.com/clinident/clinident/internal/domain/treatment"
	"github.com/clinident/clinident/internal/platform/auth"
	"github.com/clinident/clinident/internal/platform/db"
	"github.com/clinident/clinident/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Dental clinic management API server",
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
		Short: "Start the clinic API server",
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
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
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
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
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

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health endpoints stay outside the auth stack.
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Patient registry
	patientRepo := patient.NewPgRepository(pool)
	patientSvc := patient.NewService(patientRepo)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	// Scheduling
	apptRepo := scheduling.NewPgRepository(pool)
	reminderRepo := scheduling.NewPgReminderRepository(pool)
	schedSvc := scheduling.NewService(apptRepo, reminderRepo)
	scheduling.NewHandler(schedSvc).RegisterRoutes(apiV1)

	// Clinical record
	odontogramRepo := clinical.NewPgOdontogramRepository(pool)
	noteRepo := clinical.NewPgNoteRepository(pool)
	attachmentRepo := clinical.NewPgAttachmentRepository(pool)
	prescriptionRepo := clinical.NewPgPrescriptionRepository(pool)
	consentRepo := clinical.NewPgConsentRepository(pool)
	clinicalSvc := clinical.NewService(odontogramRepo, noteRepo, attachmentRepo, prescriptionRepo, consentRepo)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(apiV1)

	// Treatment planning
	catalogRepo := treatment.NewPgCatalogRepository(pool)
	planRepo := treatment.NewPgPlanRepository(pool)
	plannedRepo := treatment.NewPgPlannedRepository(pool)
	executedRepo := treatment.NewPgExecutedRepository(pool)
	quoteRepo := treatment.NewPgQuoteRepository(pool)
	treatmentSvc := treatment.NewService(catalogRepo, planRepo, plannedRepo, executedRepo, quoteRepo)
	treatment.NewHandler(treatmentSvc).RegisterRoutes(apiV1)

	// Billing
	invoiceRepo := billing.NewPgInvoiceRepository(pool)
	paymentRepo := billing.NewPgPaymentRepository(pool)
	billingSvc := billing.NewService(invoiceRepo, paymentRepo)
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)

	// Inventory
	itemRepo := inventory.NewPgItemRepository(pool)
	movementRepo := inventory.NewPgMovementRepository(pool)
	inventorySvc := inventory.NewService(itemRepo, movementRepo, pool)
	inventory.NewHandler(inventorySvc).RegisterRoutes(apiV1)

	// Dashboard
	dashboardRepo := dashboard.NewPgRepository(pool)
	dashboardSvc := dashboard.NewService(dashboardRepo, loc)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

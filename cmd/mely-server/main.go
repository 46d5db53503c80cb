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

	"github.com/nyny77/mely-api/internal/config"
	"github.com/nyny77/mely-api/internal/domain/appointment"
	"github.com/nyny77/mely-api/internal/domain/availability"
	"github.com/nyny77/mely-api/internal/domain/family"
	"github.com/nyny77/mely-api/internal/domain/resident"
	"github.com/nyny77/mely-api/internal/local"
	"github.com/nyny77/mely-api/internal/platform/auth"
	"github.com/nyny77/mely-api/internal/platform/db"
	"github.com/nyny77/mely-api/internal/platform/middleware"
	"github.com/nyny77/mely-api/internal/platform/notification"
	"github.com/nyny77/mely-api/internal/platform/scheduler"
	"github.com/nyny77/mely-api/internal/platform/videocall"
	storesync "github.com/nyny77/mely-api/internal/sync"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "mely-server",
		Short: "API du portail familles Mely",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(consoleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Démarre l'API du portail familles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.ValidateServe(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
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
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(db.SessionMiddleware(pool))

	// Platform pieces
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, 24*time.Hour)
	rooms := videocall.NewAllocator(cfg.VideoBaseURL, cfg.TenantSlug)
	var sender notification.EmailSender = notification.NewSMTPSender(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})
	notifier := notification.NewNotifier(sender, notification.NewTemplateEngine(), logger)

	// Domain wiring
	residentSvc := resident.NewService(resident.NewRepoPG(pool))
	familySvc := family.NewService(family.NewRepoPG(pool), residentSvc, tokens, notifier)
	rdvSvc := appointment.NewService(appointment.NewRepoPG(pool), residentSvc, familySvc, rooms, notifier)
	dispoSvc := availability.NewService(availability.NewRepoPG(pool), rdvSvc)

	api := e.Group("/api")
	resident.NewHandler(residentSvc).RegisterRoutes(api)
	family.NewHandler(familySvc, tokens).RegisterRoutes(api)
	appointment.NewHandler(rdvSvc).RegisterRoutes(api)
	availability.NewHandler(dispoSvc).RegisterRoutes(api)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"name":    "API Mely - Portail Familles",
			"version": version,
			"status":  "online",
			"endpoints": map[string]string{
				"login":          "POST /api/login",
				"register":       "POST /api/familles/register",
				"residents":      "GET /api/residents",
				"rdv":            "GET /api/rdv/<famille_id>",
				"request":        "POST /api/rdv/request",
				"cancel":         "POST /api/rdv/<rdv_id>/cancel",
				"disponibilites": "GET /api/disponibilites",
				"health":         "GET /api/health",
			},
		})
	})
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "API Mely opérationnelle",
		})
	})

	// Reminder mail sweep, cancellable and never overlapping
	reminders := scheduler.NewTask("rappels-rdv", cfg.RefreshInterval, func(ctx context.Context) error {
		_, err := rdvSvc.SendReminders(ctx, 24*time.Hour)
		return err
	}, logger)
	schedCtx, schedCancel := context.WithCancel(ctx)
	defer schedCancel()
	reminders.Start(schedCtx)
	defer reminders.Stop()

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

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Gère les migrations du schéma distant",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Applique les migrations en attente",
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

			count, err := db.NewMigrator(pool, dir).Up(ctx)
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
		Short: "Affiche l'état des migrations",
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

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
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

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pousse les données locales vers le serveur distant",
	}

	newReconciler := func() (*storesync.Reconciler, *local.Store, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.ValidateSync(); err != nil {
			return nil, nil, err
		}
		store, err := local.Open(cfg.LocalDBPath)
		if err != nil {
			return nil, nil, err
		}
		client := storesync.NewClient(cfg.RemoteAPIURL, cfg.SyncTimeout)
		return storesync.NewReconciler(store, client, newLogger()), store, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "residents",
		Short: "Synchronise les résidents actifs",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, store, err := newReconciler()
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := rec.SyncResidents(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Résidents synchronisés : %d créés, %d mis à jour.\n", report.Created, report.Updated)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disponibilites",
		Short: "Synchronise les créneaux de disponibilité",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, store, err := newReconciler()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := rec.SyncAvailability(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Créneaux synchronisés : %d.\n", count)
			return nil
		},
	})

	return cmd
}

// consoleCmd runs the headless console loop: it keeps the local store open
// and refreshes the pending-counts badge on the configured interval until
// interrupted.
func consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Suit les demandes en attente dans la base locale",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := local.Open(cfg.LocalDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			refresh := scheduler.NewTask("compteurs-en-attente", cfg.RefreshInterval, func(ctx context.Context) error {
				counts, err := store.CountPending()
				if err != nil {
					return err
				}
				logger.Info().
					Int64("inscriptions", counts.Inscriptions).
					Int64("demandes_rdv", counts.RendezVous).
					Msg("pending counts")
				return nil
			}, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			refresh.Start(ctx)
			defer refresh.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			logger.Info().Msg("console stopped")
			return nil
		},
	}
}

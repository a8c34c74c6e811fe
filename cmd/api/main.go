package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	redisbroker "github.com/jwalitptl/hospital-api/pkg/messaging/redis"
)

var configDir string

func main() {
	rootCmd := &cobra.Command{
		Use:           "api",
		Short:         "Hospital management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory holding config.yaml")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(eventsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func load() (*config.Config, *zerolog.Logger, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Log.ToLoggerConfig()
	l := logger.NewLogger(&logCfg)
	l.SetGlobal()
	return cfg, l.Zerolog(), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, log)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, log *zerolog.Logger) error {
	if err := middleware.SetupValidation(); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Database.Driver == "postgres" && cfg.Database.AutoMigrate {
		if err := migrateUp(a); err != nil {
			return err
		}
	}
	if err := a.ensureAdmin(ctx); err != nil {
		return err
	}
	if cfg.Seed.DemoData {
		if err := a.seed(ctx); err != nil {
			// seeding is a convenience; the API still serves without it
			log.Error().Err(err).Msg("demo data seeding failed")
		}
	}

	srv := &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.Server.Port),
		Handler:        a.router().Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("database", cfg.Database.Driver).
			Bool("redis", cfg.Redis.Enabled).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

func migrateUp(a *app) error {
	m, err := postgres.NewMigrator(a.db)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return err
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	a.logger.Info().Uint("version", version).Msg("database schema up to date")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// withMigrator opens only the database, not Redis
	withMigrator := func(fn func(m *postgres.Migrator, log *zerolog.Logger) error) error {
		cfg, log, err := load()
		if err != nil {
			return err
		}
		if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("migrations need the postgres driver, got %q", cfg.Database.Driver)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		db, err := postgres.NewDB(ctx, cfg.Database.ToPostgresConfig())
		if err != nil {
			return err
		}
		defer db.Close()

		m, err := postgres.NewMigrator(db)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(m, log)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *postgres.Migrator, log *zerolog.Logger) error {
				if err := m.Up(); err != nil {
					return err
				}
				log.Info().Msg("migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			return withMigrator(func(m *postgres.Migrator, log *zerolog.Logger) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				log.Info().Int("steps", steps).Msg("migrations rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *postgres.Migrator, _ *zerolog.Logger) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(func(m *postgres.Migrator, log *zerolog.Logger) error {
				if err := m.Force(version); err != nil {
					return err
				}
				log.Info().Int("version", version).Msg("schema version forced")
				return nil
			})
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo data set and the default admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == "memory" {
				return errors.New("seeding the memory driver from the CLI has no lasting effect; set seed.demo_data and run serve")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ensureAdmin(ctx); err != nil {
				return err
			}
			return a.seed(ctx)
		},
	}
}

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Follow appointment events published on the Redis channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if !cfg.Redis.Enabled {
				return errors.New("following events needs redis.enabled")
			}

			client, err := redisbroker.NewClient(cfg.Redis.ToBrokerConfig())
			if err != nil {
				return err
			}
			broker := redisbroker.NewRedisBroker(client, log)
			defer broker.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return event.Listen(ctx, broker, cfg.Redis.EventsChannel, func(_ context.Context, ev event.Received) error {
				_, err := fmt.Fprintf(out, "%s %s %s\n", ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.Payload)
				return err
			}, log)
		},
	}
}

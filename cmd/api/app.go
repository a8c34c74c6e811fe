package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/config"
	appointmenthandler "github.com/jwalitptl/hospital-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/hospital-api/internal/handler/auth"
	doctorhandler "github.com/jwalitptl/hospital-api/internal/handler/doctor"
	"github.com/jwalitptl/hospital-api/internal/handler/health"
	patienthandler "github.com/jwalitptl/hospital-api/internal/handler/patient"
	promhandler "github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
	authservice "github.com/jwalitptl/hospital-api/internal/service/auth"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/internal/service/identifier"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/internal/service/seed"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/lock"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	redisbroker "github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

type repositories struct {
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	sequences    repository.SequenceRepository
}

type app struct {
	cfg    *config.Config
	logger *zerolog.Logger

	db     *sqlx.DB
	redis  *goredis.Client
	broker messaging.Broker

	registry *prometheus.Registry
	repos    repositories

	patients     *patient.Service
	doctors      *doctor.Service
	appointments *appointment.Service
	auth         *authservice.Service
}

func newApp(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   log,
		registry: prometheus.NewRegistry(),
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	if err := a.openRedis(); err != nil {
		a.Close()
		return nil, err
	}
	a.buildServices()
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	if a.cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		a.repos = repositories{
			patients:     store.Patients(),
			doctors:      store.Doctors(),
			appointments: store.Appointments(),
			users:        store.Users(),
			sequences:    store.Sequences(),
		}
		a.logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return nil
	}

	db, err := postgres.NewDB(ctx, a.cfg.Database.ToPostgresConfig())
	if err != nil {
		return err
	}
	a.db = db
	a.repos = repositories{
		patients:     postgres.NewPatientRepository(db),
		doctors:      postgres.NewDoctorRepository(db),
		appointments: postgres.NewAppointmentRepository(db),
		users:        postgres.NewUserRepository(db),
		sequences:    postgres.NewSequenceRepository(db),
	}
	a.logger.Info().
		Str("host", a.cfg.Database.Host).
		Str("database", a.cfg.Database.Name).
		Msg("connected to database")
	return nil
}

func (a *app) openRedis() error {
	if !a.cfg.Redis.Enabled {
		return nil
	}
	client, err := redisbroker.NewClient(a.cfg.Redis.ToBrokerConfig())
	if err != nil {
		return err
	}
	a.redis = client
	a.broker = redisbroker.NewRedisBroker(client, a.logger)
	a.logger.Info().Str("channel", a.cfg.Redis.EventsChannel).Msg("connected to redis")
	return nil
}

func (a *app) identifiers() *identifier.Generator {
	if a.cfg.Identifier.Strategy == "count" {
		return identifier.NewGenerator(identifier.NewCountSequence(map[identifier.Kind]identifier.Counter{
			identifier.KindPatient:     a.repos.patients,
			identifier.KindDoctor:      a.repos.doctors,
			identifier.KindAppointment: a.repos.appointments,
		}))
	}
	return identifier.NewGenerator(identifier.NewCounterSequence(a.repos.sequences))
}

func (a *app) buildServices() {
	m := metrics.NewMetrics(a.registry, "hospital", "")
	ids := a.identifiers()

	var events event.Emitter = event.NopEmitter{}
	if a.broker != nil {
		events = event.NewEventService(a.broker, a.cfg.Redis.EventsChannel, m, a.logger)
	}

	var locker lock.Locker = lock.NopLocker{}
	if a.cfg.Booking.SlotLock.Enabled {
		locker = lock.NewRedisLocker(a.redis, lock.Config{
			Prefix: "hospital:slot:",
			TTL:    a.cfg.Booking.SlotLock.TTL,
			Wait:   a.cfg.Booking.SlotLock.Wait,
		})
	}

	a.patients = patient.NewService(a.repos.patients, ids, m, a.logger)
	a.doctors = doctor.NewService(a.repos.doctors, ids, m, a.logger)
	a.appointments = appointment.NewService(appointment.Options{
		Appointments: a.repos.appointments,
		Patients:     a.repos.patients,
		Doctors:      a.repos.doctors,
		IDs:          ids,
		Locker:       locker,
		Events:       events,
		Metrics:      m,
		Logger:       a.logger,
		Location:     a.cfg.App.Location(),
	})

	jwtSvc := auth.NewJWTService(a.cfg.Auth.JWTSecret, a.cfg.Auth.JWTExpiry, a.cfg.Auth.Issuer)
	a.auth = authservice.NewService(a.repos.users, jwtSvc, security.NewBcryptHasher(a.cfg.Auth.BcryptCost), a.logger)
}

func (a *app) healthChecks() map[string]health.Check {
	checks := map[string]health.Check{}
	if a.db != nil {
		checks["Database"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["Redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (a *app) router() *router.Router {
	cfg := a.cfg

	r := router.NewRouter(
		middleware.NewAuthMiddleware(a.auth),
		promhandler.New(a.registry),
		router.Handlers{
			Patient:     patienthandler.NewHandler(a.patients),
			Doctor:      doctorhandler.NewHandler(a.doctors),
			Appointment: appointmenthandler.NewHandler(a.appointments),
			Health:      health.NewHandler(a.healthChecks()),
			Auth:        authhandler.NewHandler(a.auth),
		},
		router.RouterConfig{
			Mode:             cfg.Server.Mode,
			BasePath:         cfg.Server.BasePath,
			Timeout:          cfg.Server.RequestTimeout,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RateTTL:          cfg.RateLimit.TTL,
			CORSConfig: middleware.CORSConfig{
				AllowOrigins: cfg.CORS.AllowedOrigins,
				AllowMethods: cfg.CORS.AllowedMethods,
				AllowHeaders: cfg.CORS.AllowedHeaders,
				MaxAge:       86400,
			},
			AuthRequired: cfg.Auth.Required,
		},
		a.logger,
	)
	r.Setup()
	return r
}

func (a *app) ensureAdmin(ctx context.Context) error {
	if a.cfg.Seed.AdminEmail == "" {
		return nil
	}
	_, created, err := a.auth.EnsureUser(ctx, "Administrator", a.cfg.Seed.AdminEmail, a.cfg.Seed.AdminPassword, model.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	if created {
		a.logger.Info().Str("email", a.cfg.Seed.AdminEmail).Msg("default admin user created")
	}
	return nil
}

func (a *app) seed(ctx context.Context) error {
	return seed.Run(ctx, seed.Deps{
		PatientRepo:     a.repos.patients,
		DoctorRepo:      a.repos.doctors,
		AppointmentRepo: a.repos.appointments,
		Patients:        a.patients,
		Doctors:         a.doctors,
		Appointments:    a.appointments,
		Location:        a.cfg.App.Location(),
		Logger:          a.logger,
	})
}

func (a *app) Close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Error().Err(err).Msg("failed to close redis broker")
		}
	} else if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("failed to close database")
		}
	}
}

// Package app is the composition root: it turns a Config into a wired,
// migrated clinic backend ready to serve calls.
package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/medkarta/go-clinic-backend/internal/cache"
	"github.com/medkarta/go-clinic-backend/internal/config"
	"github.com/medkarta/go-clinic-backend/internal/observability"
	"github.com/medkarta/go-clinic-backend/internal/repo"
	"github.com/medkarta/go-clinic-backend/internal/services"
	"github.com/medkarta/go-clinic-backend/internal/sysutil"
)

// App bundles the wired services and the resources they own.
type App struct {
	DB    *gorm.DB
	Cache *cache.Coordinator

	Offices         *services.OfficeService
	Specializations *services.SpecializationService
	Doctors         *services.DoctorService
	Patients        *services.PatientService
	Cards           *services.CardService
	Appointments    *services.AppointmentService

	redis        *cache.Redis
	otelShutdown func(context.Context) error
}

// New wires logging, storage, caching, tracing and the services from cfg.
// The returned App must be closed with Close.
func New(ctx context.Context, cfg config.Config, version string) (*App, error) {
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "postgres":
		db, err = repo.OpenPostgres(cfg.PostgresDSN)
	default:
		db, err = repo.OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}

	a := &App{DB: db}

	if cfg.Cache.Enabled {
		var store cache.Store
		if cfg.Cache.RedisAddr != "" {
			r := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPass, cfg.Cache.RedisDB)
			if err := r.Ping(ctx); err != nil {
				return nil, err
			}
			a.redis = r
			store = r
		} else {
			store = cache.NewMemory()
		}
		a.Cache = cache.New(store, cfg.Cache.TTL)
	}

	shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return nil, err
	}
	a.otelShutdown = shutdown

	a.Offices = services.NewOfficeService(db, a.Cache)
	a.Specializations = services.NewSpecializationService(db, a.Cache)
	a.Doctors = services.NewDoctorService(db, a.Cache)
	a.Patients = services.NewPatientService(db, a.Cache)
	a.Cards = services.NewCardService(db, a.Cache)
	a.Appointments = services.NewAppointmentService(db, a.Cache)

	log.Info().
		Str("driver", cfg.DBDriver).
		Bool("cache", cfg.Cache.Enabled).
		Msg("clinic backend wired")
	return a, nil
}

// Close releases the App's resources: tracer provider, redis connection and
// the database pool.
func (a *App) Close(ctx context.Context) error {
	var first error
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			first = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && first == nil {
			first = err
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

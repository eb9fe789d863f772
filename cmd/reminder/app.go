package main

import (
	"context"
	"fmt"
	"time"

	"github.com/duedate/reminder/internal/config"
	"github.com/duedate/reminder/internal/database"
	"github.com/duedate/reminder/internal/email"
	"github.com/duedate/reminder/internal/logger"
	"github.com/duedate/reminder/internal/render"
	"github.com/duedate/reminder/internal/repository"
	"github.com/duedate/reminder/internal/service"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	loc        *time.Location
	db         *database.Postgres
	rdb        *database.Redis
	dispatcher *service.DispatchService
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	loc, err := cfg.Dispatch.Location()
	if err != nil {
		return nil, err
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Debug().Msg("connected to PostgreSQL")

	sender, err := email.New(ctx, cfg.Email)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize email sender: %w", err)
	}

	dispatcher := service.NewDispatchService(
		repository.NewReminderRepository(db),
		repository.NewClientRepository(db),
		repository.NewSuppressionRepository(db),
		repository.NewStatusRepository(db),
		sender,
		render.New(cfg.Dispatch.DateLayout),
		loc,
		log,
	)

	a := &app{cfg: cfg, log: log, loc: loc, db: db, dispatcher: dispatcher}

	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.rdb = rdb
		dispatcher.WithRunLock(rdb, cfg.Redis.LockTTL)
		log.Debug().Msg("run lock enabled")
	}

	log.Info().
		Str("email_provider", cfg.Email.Provider).
		Str("timezone", loc.String()).
		Msg("reminder system initialized")
	return a, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	a.db.Close()
}

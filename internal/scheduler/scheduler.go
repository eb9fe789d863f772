// Package scheduler runs the reminder dispatch on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/duedate/reminder/internal/logger"
	"github.com/robfig/cron/v3"
)

// Job is the unit of work run on each tick
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner with a single job
type Scheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
	job     Job
	log     *logger.Logger

	mu  sync.Mutex
	ctx context.Context
}

// New parses spec (standard five-field cron or a descriptor like @daily) and
// registers job. Ticks never overlap: a tick that fires while the previous
// one is still running is skipped.
func New(spec string, loc *time.Location, job Job, log *logger.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	log = log.WithComponent("scheduler")
	cl := cronLogger{log: log}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		job: job,
		log: log,
		ctx: context.Background(),
	}

	id, err := s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	s.entryID = id
	return s, nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := s.job(ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled run failed")
	}
}

// Start begins running ticks in the background. ctx is handed to every job.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info().Time("next_run", s.Next()).Msg("scheduler started")
}

// Stop halts the schedule and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// Next returns the next activation time, zero before Start
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// cronLogger adapts the zerolog wrapper to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

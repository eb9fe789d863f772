package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/duedate/reminder/internal/scheduler"
	"github.com/duedate/reminder/internal/service"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the reminder dispatch on a cron schedule until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().String("cron", "", "cron expression overriding scheduler.cron")
	scheduleCmd.Flags().Bool("run-now", false, "run once immediately before waiting for the first tick")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	spec := a.cfg.Scheduler.Cron
	if override, _ := cmd.Flags().GetString("cron"); override != "" {
		spec = override
	}

	job := func(ctx context.Context) error {
		_, err := a.dispatcher.Run(ctx)
		if errors.Is(err, service.ErrRunInProgress) {
			a.log.Info().Msg("skipping tick, another run is in progress")
			return nil
		}
		return err
	}

	s, err := scheduler.New(spec, a.loc, job, a.log)
	if err != nil {
		return err
	}

	if runNow, _ := cmd.Flags().GetBool("run-now"); runNow {
		if err := job(ctx); err != nil {
			a.log.Error().Err(err).Msg("initial run failed")
		}
	}

	s.Start(ctx)
	<-ctx.Done()

	a.log.Info().Msg("shutting down scheduler...")
	s.Stop()
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/duedate/reminder/internal/config"
	"github.com/duedate/reminder/internal/database"
	"github.com/duedate/reminder/internal/email"
	"github.com/duedate/reminder/internal/repository"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration, database access and email provider setup",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

// setupCheck is one named verification step
type setupCheck struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// runChecks runs every check, reports each to w and returns the number that passed
func runChecks(ctx context.Context, w io.Writer, checks []setupCheck) int {
	passed := 0
	for _, c := range checks {
		detail, err := c.run(ctx)
		if err != nil {
			fmt.Fprintf(w, "FAIL  %s: %v\n", c.name, err)
			continue
		}
		passed++
		if detail != "" {
			fmt.Fprintf(w, "ok    %s (%s)\n", c.name, detail)
		} else {
			fmt.Fprintf(w, "ok    %s\n", c.name)
		}
	}
	fmt.Fprintf(w, "\n%d/%d checks passed\n", passed, len(checks))
	return passed
}

func setupChecks(cfg *config.Config) []setupCheck {
	checks := []setupCheck{
		{name: "configuration", run: func(context.Context) (string, error) {
			return "", cfg.Validate()
		}},
		{name: "database", run: func(ctx context.Context) (string, error) {
			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return "", err
			}
			defer db.Close()
			n, err := repository.NewClientRepository(db).Count(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d clients", n), nil
		}},
		{name: "email provider", run: func(ctx context.Context) (string, error) {
			if _, err := email.New(ctx, cfg.Email); err != nil {
				return "", err
			}
			return cfg.Email.Provider, nil
		}},
		{name: "timezone", run: func(context.Context) (string, error) {
			loc, err := cfg.Dispatch.Location()
			if err != nil {
				return "", err
			}
			return time.Now().In(loc).Format("2006-01-02 MST"), nil
		}},
	}

	if cfg.Redis.Enabled {
		checks = append(checks, setupCheck{name: "redis", run: func(ctx context.Context) (string, error) {
			rdb, err := database.NewRedis(cfg.Redis)
			if err != nil {
				return "", err
			}
			defer rdb.Close()
			return cfg.Redis.Addr(), rdb.HealthCheck(ctx)
		}})
	}
	return checks
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	checks := setupChecks(cfg)
	if passed := runChecks(ctx, cmd.OutOrStdout(), checks); passed < len(checks) {
		return fmt.Errorf("%d setup check(s) failed", len(checks)-passed)
	}
	return nil
}

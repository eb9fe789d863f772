package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/duedate/reminder/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRunChecks_ReportsEachStep(t *testing.T) {
	var out bytes.Buffer
	checks := []setupCheck{
		{name: "configuration", run: func(context.Context) (string, error) { return "", nil }},
		{name: "database", run: func(context.Context) (string, error) { return "", errors.New("connection refused") }},
		{name: "email provider", run: func(context.Context) (string, error) { return "resend", nil }},
	}

	passed := runChecks(context.Background(), &out, checks)

	assert.Equal(t, 2, passed)
	assert.Contains(t, out.String(), "ok    configuration\n")
	assert.Contains(t, out.String(), "FAIL  database: connection refused\n")
	assert.Contains(t, out.String(), "ok    email provider (resend)\n")
	assert.Contains(t, out.String(), "2/3 checks passed")
}

func TestSetupChecks_ConfigurationStepReportsMissingSettings(t *testing.T) {
	cfg := &config.Config{Email: config.EmailConfig{Provider: "resend"}}

	checks := setupChecks(cfg)
	assert.Len(t, checks, 4)

	_, err := checks[0].run(context.Background())
	assert.ErrorIs(t, err, config.ErrMissingSetting)

	cfg.Redis.Enabled = true
	assert.Len(t, setupChecks(cfg), 5)
}

package main

import (
	"errors"
	"testing"

	"github.com/duedate/reminder/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitErr(t *testing.T) {
	t.Run("clean run", func(t *testing.T) {
		assert.NoError(t, exitErr(service.Summary{Sent: 3, Skipped: 1, AlreadySent: 2}, nil))
	})

	t.Run("nothing due", func(t *testing.T) {
		assert.NoError(t, exitErr(service.Summary{}, nil))
	})

	t.Run("failed sends", func(t *testing.T) {
		err := exitErr(service.Summary{Sent: 2, Failed: 1}, nil)
		require.Error(t, err)
		assert.Equal(t, "1 of 3 reminder emails failed to send", err.Error())
	})

	t.Run("aborted run", func(t *testing.T) {
		err := exitErr(service.Summary{Sent: 1}, service.ErrRunInProgress)
		assert.True(t, errors.Is(err, service.ErrRunInProgress))
	})
}

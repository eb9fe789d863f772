package repository

import (
	"errors"
	"time"
)

// Common repository errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// dateLayout is how calendar dates are bound as query parameters. Dates are
// sent as text and cast with ::date so the session time zone cannot shift them.
const dateLayout = "2006-01-02"

func sqlDate(t time.Time) string {
	return t.Format(dateLayout)
}

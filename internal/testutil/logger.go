// Package testutil holds test doubles shared across packages.
package testutil

import (
	"io"

	"github.com/dtroode/cohort-migrator/internal/logger"
)

// MakeNoopLogger returns a logger that drops every record.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0)
}

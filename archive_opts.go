package gpak

import (
	"log/slog"

	"github.com/meigma/gpak/internal/file"
)

// DefaultMaxEntrySize is the default per-entry read limit (1GB).
const DefaultMaxEntrySize = file.DefaultMaxEntrySize

// Option configures an Archive.
type Option func(*Archive)

// WithMaxEntrySize limits the stored and uncompressed size of any entry
// read from the archive. Larger entries fail with ErrSizeOverflow before
// any buffer is allocated. Set to 0 to disable the limit.
//
// Default: DefaultMaxEntrySize.
func WithMaxEntrySize(limit uint64) Option {
	return func(a *Archive) {
		a.maxEntrySize = limit
	}
}

// WithLogger sets the logger for archive diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

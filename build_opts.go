package gpak

import (
	"log/slog"
	"runtime"
)

// MissingSourcePolicy decides what happens when an uncompressed source
// cannot be read while its payload is written.
type MissingSourcePolicy uint8

const (
	// MissingSourceFail aborts the build with ErrMissingSource.
	MissingSourceFail MissingSourcePolicy = iota

	// MissingSourceZeroFill writes zero bytes of the planned size and logs a
	// warning. Sources that cannot be opened while planning are left out of
	// the archive.
	MissingSourceZeroFill
)

// String returns the policy name.
func (p MissingSourcePolicy) String() string {
	switch p {
	case MissingSourceFail:
		return "fail"
	case MissingSourceZeroFill:
		return "zero-fill"
	default:
		return "unknown"
	}
}

// buildConfig holds configuration for archive builds.
type buildConfig struct {
	compression     Compression
	skipCompression []SkipCompressionFunc
	missingSource   MissingSourcePolicy
	workers         int
	logger          *slog.Logger
	progress        ProgressFunc
}

// BuildOption configures Build, BuildDir, and BuildFile.
type BuildOption func(*buildConfig)

// BuildWithCompression requests compression for every entry.
//
// The default is CompressionNone. A compressed form is stored only when it
// is smaller than 75% of the entry's size; otherwise the entry is stored raw.
func BuildWithCompression(c Compression) BuildOption {
	return func(cfg *buildConfig) {
		cfg.compression = c
	}
}

// BuildWithSkipCompression adds predicates that force entries to be stored
// raw without running the codec. If any predicate returns true, the entry
// is not compressed.
func BuildWithSkipCompression(fns ...SkipCompressionFunc) BuildOption {
	return func(cfg *buildConfig) {
		cfg.skipCompression = append(cfg.skipCompression, fns...)
	}
}

// BuildWithMissingSource sets the policy for unreadable sources.
// The default is MissingSourceFail.
func BuildWithMissingSource(p MissingSourcePolicy) BuildOption {
	return func(cfg *buildConfig) {
		cfg.missingSource = p
	}
}

// BuildWithWorkers sets how many entries are compressed and checksummed
// concurrently. Values < 1 use runtime.GOMAXPROCS(0); the default is 1.
// The output is identical for every worker count.
func BuildWithWorkers(n int) BuildOption {
	return func(cfg *buildConfig) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		cfg.workers = n
	}
}

// BuildWithLogger sets the logger for build warnings and diagnostics.
// If not set, logging is disabled.
func BuildWithLogger(logger *slog.Logger) BuildOption {
	return func(cfg *buildConfig) {
		cfg.logger = logger
	}
}

// BuildWithProgress sets a callback to receive progress updates.
// With more than one worker the callback is invoked concurrently.
func BuildWithProgress(fn ProgressFunc) BuildOption {
	return func(cfg *buildConfig) {
		cfg.progress = fn
	}
}

func newBuildConfig(opts []BuildOption) buildConfig {
	cfg := buildConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

package gpak

import (
	"errors"
	"fmt"

	"github.com/meigma/gpak/internal/sink"
)

// extractConfig holds configuration for Extract.
type extractConfig struct {
	overwrite bool
	progress  ProgressFunc
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// ExtractWithOverwrite controls whether existing files are replaced.
// Default: true.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = overwrite
	}
}

// ExtractWithProgress sets a callback invoked after each entry is written.
// FilesDone counts written files; skipped and failed entries are not included.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.progress = fn
	}
}

// ExtractStats summarizes an extraction.
type ExtractStats struct {
	// Files is the number of files written.
	Files int

	// Bytes is the number of content bytes written.
	Bytes uint64

	// Skipped counts existing files left untouched because overwrite was disabled.
	Skipped int

	// Failed counts entries that could not be read or written.
	Failed int
}

// Extract writes every entry's content below destDir, in path order.
//
// destDir and any needed subdirectories are created. Files are written to
// a temp file and renamed into place. Entry paths that would resolve
// outside destDir are rejected. A failing entry does not stop the
// extraction; all failures are returned joined.
func (a *Archive) Extract(destDir string, opts ...ExtractOption) (ExtractStats, error) {
	cfg := extractConfig{overwrite: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	var stats ExtractStats
	s, err := sink.New(destDir, sink.WithOverwrite(cfg.overwrite))
	if err != nil {
		return stats, err
	}
	defer s.Close()

	paths := a.Paths()
	var errs []error
	for _, p := range paths {
		e, _ := a.Entry(p)
		content, err := a.ReadLogical(e)
		if err != nil {
			stats.Failed++
			errs = append(errs, err)
			a.log().Warn("unable to read entry", "path", p, "error", err)
			continue
		}
		wrote, err := s.Put(p, content)
		if err != nil {
			stats.Failed++
			errs = append(errs, fmt.Errorf("write %s: %w", p, err))
			a.log().Warn("unable to write entry", "path", p, "error", err)
			continue
		}
		if !wrote {
			stats.Skipped++
			a.log().Debug("skipped existing file", "path", s.DestPath(p))
			continue
		}
		stats.Files++
		stats.Bytes += uint64(len(content))
		if cfg.progress != nil {
			cfg.progress(ProgressEvent{
				Stage:      StageExtracting,
				Path:       p,
				BytesDone:  stats.Bytes,
				FilesDone:  stats.Files,
				FilesTotal: len(paths),
			})
		}
	}
	return stats, errors.Join(errs...)
}

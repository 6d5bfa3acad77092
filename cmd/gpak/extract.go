package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/gpak"
)

func runExtract(opts options, stdout, stderr io.Writer, logger *slog.Logger) error {
	arc, err := gpak.Open(opts.target, gpak.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.target, err)
	}
	defer arc.Close()

	stats, err := arc.Extract(opts.output,
		gpak.ExtractWithOverwrite(!opts.noOverwrite),
		gpak.ExtractWithProgress(func(ev gpak.ProgressEvent) {
			fmt.Fprintf(stdout, "+ Writing %s\n", ev.Path)
		}))
	if err != nil {
		if stats.Failed == 0 {
			return err
		}
		for _, e := range unjoin(err) {
			fmt.Fprintf(stderr, "- %v\n", e)
		}
		return errReported
	}
	logger.Debug("extracted archive",
		"archive", opts.target,
		"dest", opts.output,
		"files", stats.Files,
		"skipped", stats.Skipped,
		"bytes", stats.Bytes)
	return nil
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

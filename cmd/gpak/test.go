package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/gpak"
)

func runTest(opts options, stdout, stderr io.Writer, logger *slog.Logger) error {
	arc, err := gpak.Open(opts.target, gpak.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.target, err)
	}
	defer arc.Close()

	report := arc.Verify()
	for _, r := range report.Results {
		switch {
		case r.OK():
			fmt.Fprintf(stdout, "+ File %s CRC(%d) is OK.\n", r.Entry.Path, r.Entry.Checksum)
		case errors.Is(r.Err, gpak.ErrChecksumMismatch):
			fmt.Fprintf(stderr, "- File %s CRC(%d) is WRONG. Expected: %d\n", r.Entry.Path, r.Entry.Checksum, r.Computed)
		default:
			fmt.Fprintf(stderr, "- File %s could not be read: %v\n", r.Entry.Path, r.Err)
		}
	}
	if !report.OK() {
		return errReported
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/gpak"
)

func runList(opts options, stdout io.Writer, logger *slog.Logger) error {
	arc, err := gpak.Open(opts.target, gpak.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.target, err)
	}
	defer arc.Close()

	for _, p := range arc.Paths() {
		fmt.Fprintln(stdout, p)
	}
	return nil
}

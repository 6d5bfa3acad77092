package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/meigma/gpak"
)

func runBuild(ctx context.Context, opts options, stdout, stderr io.Writer, logger *slog.Logger) error {
	buildOpts := []gpak.BuildOption{
		gpak.BuildWithLogger(logger),
		gpak.BuildWithWorkers(opts.jobs),
	}
	if opts.compress {
		c, err := gpak.ParseCompression(opts.codec)
		if err != nil {
			return err
		}
		buildOpts = append(buildOpts, gpak.BuildWithCompression(c))
	}
	if opts.zeroFill {
		buildOpts = append(buildOpts, gpak.BuildWithMissingSource(gpak.MissingSourceZeroFill))
	}
	if isTerminal(stderr) {
		p := &progressPrinter{w: stderr}
		defer p.done()
		buildOpts = append(buildOpts, gpak.BuildWithProgress(p.update))
	}

	res, err := gpak.BuildFile(ctx, opts.target, opts.output, buildOpts...)
	if err != nil {
		return fmt.Errorf("build %s: %w", opts.target, err)
	}

	for i := range res.Entries {
		fmt.Fprintln(stdout, formatEntryRow(&res.Entries[i]))
	}
	fmt.Fprintf(stdout, "\nWrote %s: %d entries, %s\n",
		opts.output, len(res.Entries), humanize.IBytes(res.BytesWritten))
	fmt.Fprintf(stdout, "Digest: %s\n", res.Digest)
	return nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/meigma/gpak"
)

const (
	pathColumn = 60
	sizeColumn = 10
)

// newLogger returns a text logger on terminals and a JSON logger otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatEntryRow renders one build report line: the path cut to the path
// column, the stored size, and the stored/original ratio.
func formatEntryRow(e *gpak.Entry) string {
	p := e.Path
	if len(p) > pathColumn {
		p = p[:pathColumn]
	}
	size := humanize.IBytes(uint64(e.StoredSize))
	return fmt.Sprintf("%-*s%-*s%6.2f%%", pathColumn, p, sizeColumn, size, e.Ratio())
}

// progressPrinter redraws a single status line on a terminal.
type progressPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *progressPrinter) update(ev gpak.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case ev.FilesTotal > 0:
		fmt.Fprintf(p.w, "\r\033[K%s %d/%d", ev.Stage, ev.FilesDone, ev.FilesTotal)
	case ev.FilesDone > 0:
		fmt.Fprintf(p.w, "\r\033[K%s %d", ev.Stage, ev.FilesDone)
	}
}

func (p *progressPrinter) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\r\033[K")
}

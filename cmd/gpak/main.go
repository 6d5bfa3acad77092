// gpak builds, verifies, lists, and extracts gpak archives.
//
// Usage:
//
//	gpak -i DIR [-o FILE] [-c] [--codec lz4hc|zstd] [-j N] [--zero-fill-missing]
//	gpak -t FILE
//	gpak -x FILE [-o DIR] [--no-overwrite]
//	gpak -l FILE
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/meigma/gpak"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type operation uint8

const (
	opNone operation = iota
	opBuild
	opTest
	opExtract
	opList
)

// options holds the parsed command line.
type options struct {
	op          operation
	target      string
	output      string
	compress    bool
	codec       string
	zeroFill    bool
	jobs        int
	noOverwrite bool
	verbose     bool
}

// usageError reports a bad command line.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flagSet := newFlagSet(stderr)
	if len(args) == 0 {
		printUsage(stdout, flagSet)
		return exitOK
	}

	opts, err := parseArgs(flagSet, args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout, flagSet)
			return exitOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprintf(stderr, "run '%s --help' for usage\n", programName)
		return exitUsage
	}
	if opts.op == opNone {
		printUsage(stdout, flagSet)
		return exitOK
	}

	logger := newLogger(stderr, opts.verbose)
	switch opts.op {
	case opBuild:
		err = runBuild(ctx, opts, stdout, stderr, logger)
	case opTest:
		err = runTest(opts, stdout, stderr, logger)
	case opExtract:
		err = runExtract(opts, stdout, stderr, logger)
	case opList:
		err = runList(opts, stdout, logger)
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return exitFailure
	}
	return exitOK
}

// errReported marks failures whose details were already printed.
var errReported = errors.New("failures reported")

const programName = "gpak"

func newFlagSet(output io.Writer) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.StringP("input-path", "i", "", "build an archive from `dir`")
	flagSet.StringP("test", "t", "", "check the checksums of every entry in `file`")
	flagSet.StringP("extract", "x", "", "extract every entry of `file`")
	flagSet.StringP("list", "l", "", "list the entries of `file`")
	flagSet.StringP("output", "o", "", "build: archive `path` (default a.out); extract: destination directory (default .)")
	flagSet.BoolP("compress", "c", false, "compress entries while building")
	flagSet.String("codec", "lz4hc", "compression codec, requires --compress: lz4hc or zstd")
	flagSet.Bool("zero-fill-missing", false, "write zero bytes for sources that disappear while building instead of failing")
	flagSet.IntP("jobs", "j", 1, "number of entries compressed concurrently (0 = all CPUs)")
	flagSet.Bool("no-overwrite", false, "keep existing files when extracting")
	flagSet.BoolP("verbose", "v", false, "enable debug logging")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.SortFlags = false
	flagSet.Usage = func() {}
	return flagSet
}

// parseArgs parses args and validates flag combinations.
func parseArgs(flagSet *pflag.FlagSet, args []string) (options, error) {
	var opts options
	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		return opts, pflag.ErrHelp
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, usagef("unexpected argument: %s", rest[0])
	}

	ops := []struct {
		flag string
		op   operation
	}{
		{"input-path", opBuild},
		{"test", opTest},
		{"extract", opExtract},
		{"list", opList},
	}
	for _, o := range ops {
		if !flagSet.Changed(o.flag) {
			continue
		}
		if opts.op != opNone {
			return opts, usagef("--%s: only one operation may be given", o.flag)
		}
		value, _ := flagSet.GetString(o.flag)
		if value == "" {
			return opts, usagef("--%s expects a non-empty value", o.flag)
		}
		opts.op = o.op
		opts.target = value
	}

	opts.output, _ = flagSet.GetString("output")
	opts.compress, _ = flagSet.GetBool("compress")
	opts.codec, _ = flagSet.GetString("codec")
	opts.zeroFill, _ = flagSet.GetBool("zero-fill-missing")
	opts.jobs, _ = flagSet.GetInt("jobs")
	opts.noOverwrite, _ = flagSet.GetBool("no-overwrite")
	opts.verbose, _ = flagSet.GetBool("verbose")

	buildOnly := []string{"compress", "codec", "zero-fill-missing", "jobs"}
	if opts.op != opBuild {
		for _, name := range buildOnly {
			if flagSet.Changed(name) {
				return opts, usagef("--%s is only valid with --input-path", name)
			}
		}
	}
	if flagSet.Changed("codec") {
		if !opts.compress {
			return opts, usagef("--codec requires --compress")
		}
		if _, err := gpak.ParseCompression(opts.codec); err != nil {
			return opts, usagef("--codec: %v", err)
		}
	}
	if opts.op != opExtract && flagSet.Changed("no-overwrite") {
		return opts, usagef("--no-overwrite is only valid with --extract")
	}
	if flagSet.Changed("output") && (opts.op == opTest || opts.op == opList) {
		return opts, usagef("--output is only valid with --input-path or --extract")
	}
	if flagSet.Changed("output") && opts.output == "" {
		return opts, usagef("--output expects a non-empty value")
	}
	if opts.jobs < 0 {
		return opts, usagef("--jobs must not be negative")
	}

	switch opts.op {
	case opBuild:
		if opts.output == "" {
			opts.output = "a.out"
		}
	case opExtract:
		if opts.output == "" {
			opts.output = "."
		}
	}
	return opts, nil
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Packs a directory into a single archive file. Relative paths are kept.
With --compress, each file is compressed individually and the compressed
form is kept only when it is smaller than 75%% of the original.

Usage:
  %[1]s -i DIR [-o FILE] [-c] [--codec lz4hc|zstd] [-j N]
  %[1]s -t FILE
  %[1]s -x FILE [-o DIR]
  %[1]s -l FILE

Flags:
`, programName)
	fmt.Fprint(w, flagSet.FlagUsages())
}

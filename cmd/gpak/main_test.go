package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/gpak"
	"github.com/meigma/gpak/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	code, stdout, _ := runCLI(t)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "--input-path")

	code, stdout, _ = runCLI(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Usage:")
}

func TestRunUsageErrors(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"unknown flag":        {"--bogus"},
		"two operations":      {"-i", "dir", "-t", "file"},
		"compress with list":  {"-l", "file", "-c"},
		"jobs with test":      {"-t", "file", "-j", "4"},
		"output with list":    {"-l", "file", "-o", "x"},
		"missing value":       {"-i"},
		"stray argument":      {"-l", "file", "extra"},
		"negative jobs":       {"-i", "dir", "-j", "-1"},
		"overwrite for build": {"-i", "dir", "--no-overwrite"},
		"codec without -c":    {"-i", "dir", "--codec", "zstd"},
		"unknown codec":       {"-i", "dir", "-c", "--codec", "brotli"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			code, _, stderr := runCLI(t, args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, "error:")
		})
	}
}

func TestParseArgsDefaults(t *testing.T) {
	t.Parallel()

	opts, err := parseArgs(newFlagSet(&bytes.Buffer{}), []string{"-i", "assets"})
	require.NoError(t, err)
	assert.Equal(t, opBuild, opts.op)
	assert.Equal(t, "assets", opts.target)
	assert.Equal(t, "a.out", opts.output)
	assert.False(t, opts.compress)
	assert.Equal(t, 1, opts.jobs)

	opts, err = parseArgs(newFlagSet(&bytes.Buffer{}), []string{"-i", "assets", "-c", "--codec", "zstd"})
	require.NoError(t, err)
	assert.True(t, opts.compress)
	assert.Equal(t, "zstd", opts.codec)

	opts, err = parseArgs(newFlagSet(&bytes.Buffer{}), []string{"--extract", "game.gpak"})
	require.NoError(t, err)
	assert.Equal(t, opExtract, opts.op)
	assert.Equal(t, ".", opts.output)
}

func TestRunBuildListTestExtract(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	files := map[string][]byte{
		"a.txt":          testutil.RandomBytes(10, 1),
		"b.txt":          bytes.Repeat([]byte{'b'}, 1000),
		"maps/one.level": bytes.Repeat([]byte("tile "), 400),
	}
	testutil.WriteFiles(t, src, files)

	work := t.TempDir()
	archive := filepath.Join(work, "game.gpak")

	code, stdout, stderr := runCLI(t, "-i", src, "-o", archive, "-c")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Digest: sha256:")
	lines := strings.Split(stdout, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "a.txt "))
	assert.Contains(t, lines[0], "100.00%")

	code, stdout, _ = runCLI(t, "-l", archive)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "a.txt\nb.txt\nmaps/one.level\n", stdout)

	code, stdout, stderr = runCLI(t, "-t", archive)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, 3, strings.Count(stdout, "is OK."))
	assert.Contains(t, stdout, "+ File b.txt CRC(")

	dest := filepath.Join(work, "out")
	code, stdout, stderr = runCLI(t, "-x", archive, "-o", dest)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "+ Writing maps/one.level")
	assert.Equal(t, files, testutil.ReadTree(t, dest))
}

func TestRunTestReportsCorruption(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteFiles(t, src, map[string][]byte{
		"good.txt": []byte("fine"),
		"bad.txt":  []byte("will be damaged"),
	})
	archive := filepath.Join(t.TempDir(), "c.gpak")
	code, _, stderr := runCLI(t, "-i", src, "-o", archive)
	require.Equal(t, exitOK, code, stderr)

	arc, err := gpak.Open(archive)
	require.NoError(t, err)
	e, ok := arc.Entry("bad.txt")
	require.True(t, ok)
	base := arc.BaseOffset()
	require.NoError(t, arc.Close())

	data, err := os.ReadFile(archive)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(archive, testutil.FlipByte(data, int(base)+int(e.Offset)), 0o644))

	code, stdout, stderr := runCLI(t, "-t", archive)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "+ File good.txt CRC(")
	assert.Contains(t, stderr, "- File bad.txt CRC(")
	assert.Contains(t, stderr, "is WRONG. Expected:")
}

func TestRunOpenFailure(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.gpak")
	for _, flag := range []string{"-t", "-l", "-x"} {
		code, _, stderr := runCLI(t, flag, missing)
		assert.Equal(t, exitFailure, code, flag)
		assert.Contains(t, stderr, "error: open")
	}

	notArchive := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(notArchive, []byte("just some text"), 0o644))
	code, _, stderr := runCLI(t, "-l", notArchive)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "not a gpak archive")
}

func TestFormatEntryRow(t *testing.T) {
	t.Parallel()

	row := formatEntryRow(&gpak.Entry{Path: "b.txt", StoredSize: 512, UncompressedSize: 1024})
	assert.Equal(t, "b.txt"+strings.Repeat(" ", 55)+"512 B     "+" 50.00%", row)

	long := strings.Repeat("p", 80)
	row = formatEntryRow(&gpak.Entry{Path: long, StoredSize: 2048, UncompressedSize: 2048})
	assert.True(t, strings.HasPrefix(row, strings.Repeat("p", 60)+"2.0 KiB"))
	assert.True(t, strings.HasSuffix(row, "100.00%"))
}

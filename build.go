package gpak

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/gpak/internal/crc16"
	"github.com/meigma/gpak/internal/file"
	"github.com/meigma/gpak/internal/format"
	"github.com/meigma/gpak/internal/sizing"
	"github.com/meigma/gpak/internal/write"
)

const copyBufferSize = 32 * 1024

// BuildResult describes a written archive.
type BuildResult struct {
	// Entries lists the archive entries in directory order.
	Entries []Entry

	// PayloadSize is the sum of all stored sizes.
	PayloadSize uint64

	// BytesWritten is the total archive size, header and directory included.
	BytesWritten uint64

	// Digest is the sha256 digest of every byte written.
	Digest digest.Digest

	// TruncatedPaths counts sources whose path was longer than MaxPathLength.
	TruncatedPaths int

	// ZeroFilled counts entries whose payload was replaced with zero bytes
	// under MissingSourceZeroFill.
	ZeroFilled int

	// Skipped counts sources left out because they could not be read
	// while planning under MissingSourceZeroFill.
	Skipped int
}

// Build writes an archive containing sources to w.
//
// Sources are stored in the order given. A source whose path exceeds
// MaxPathLength keeps only its trailing MaxPathLength bytes. When two
// sources share a path, the later source replaces the earlier one in the
// earlier position.
//
// Entries are compressed and checksummed first (optionally on several
// workers), then the header, directory, and payloads are written in a
// single pass. Compressed payloads are held in memory until written;
// uncompressed payloads are read from their source again.
//
// The context is checked between entries.
func Build(ctx context.Context, w io.Writer, sources []Source, opts ...BuildOption) (*BuildResult, error) {
	cfg := newBuildConfig(opts)
	b := &builder{cfg: cfg, logger: cfg.logger}
	return b.build(ctx, w, sources)
}

// builder holds state for one build.
type builder struct {
	cfg    buildConfig
	logger *slog.Logger
	result BuildResult
}

// plannedEntry is an entry whose stored form has been decided.
type plannedEntry struct {
	entry  Entry
	source Source

	// stored holds compressed payloads; nil for raw entries.
	stored []byte

	// skipped marks sources dropped under MissingSourceZeroFill.
	skipped bool
}

// log returns the logger, falling back to a discard logger if nil.
func (b *builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// reportProgress sends a progress event if a callback is configured.
func (b *builder) reportProgress(stage ProgressStage, path string, bytesDone, bytesTotal uint64, filesDone, filesTotal int) {
	if b.cfg.progress == nil {
		return
	}
	b.cfg.progress(ProgressEvent{
		Stage:      stage,
		Path:       path,
		BytesDone:  bytesDone,
		BytesTotal: bytesTotal,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

func (b *builder) build(ctx context.Context, w io.Writer, sources []Source) (*BuildResult, error) {
	b.log().Info("building archive",
		"sources", len(sources),
		"compression", b.cfg.compression.String(),
		"workers", b.cfg.workers)

	items := b.collect(sources)

	planned, err := b.plan(ctx, items)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(planned))
	kept := planned[:0]
	var offset uint32
	for i := range planned {
		p := &planned[i]
		if p.skipped {
			b.result.Skipped++
			continue
		}
		p.entry.Offset = offset
		next, ok := sizing.AddUint32(offset, p.entry.StoredSize)
		if !ok {
			return nil, fmt.Errorf("%s: payload exceeds 4GiB: %w", p.entry.Path, ErrSizeOverflow)
		}
		offset = next
		entries = append(entries, p.entry)
		kept = append(kept, *p)
	}

	if err := b.serialize(ctx, w, entries, kept); err != nil {
		return nil, err
	}

	b.result.Entries = entries
	b.result.PayloadSize = uint64(offset)
	b.log().Debug("archive written",
		"entries", len(entries),
		"payload_size", b.result.PayloadSize,
		"bytes_written", b.result.BytesWritten,
		"digest", b.result.Digest.String())
	return &b.result, nil
}

// collect applies path truncation and de-duplication.
func (b *builder) collect(sources []Source) []Source {
	items := make([]Source, 0, len(sources))
	index := make(map[string]int, len(sources))
	for _, src := range sources {
		orig := src.Path()
		p, truncated := format.TruncatePath(orig)
		if truncated {
			b.result.TruncatedPaths++
			b.log().Warn("path too long, truncating",
				"path", orig,
				"length", len(orig),
				"max", MaxPathLength,
				"stored_path", p)
			src = renamedSource{Source: src, path: p}
		}
		if i, ok := index[p]; ok {
			b.log().Warn("duplicate path, replacing earlier entry", "path", p)
			items[i] = src
			continue
		}
		index[p] = len(items)
		items = append(items, src)
	}
	return items
}

// plan reads, compresses, and checksums every source.
// Results are placed by index, so the output order never depends on
// scheduling.
func (b *builder) plan(ctx context.Context, items []Source) ([]plannedEntry, error) {
	planned := make([]plannedEntry, len(items))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for i, src := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := b.planEntry(gctx, src)
			if err != nil {
				return err
			}
			planned[i] = p
			n := done.Add(1)
			b.reportProgress(StageCompressing, src.Path(), 0, 0, int(n), len(items))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return planned, nil
}

func (b *builder) planEntry(ctx context.Context, src Source) (plannedEntry, error) {
	path := src.Path()
	raw, err := readSource(ctx, src, make([]byte, copyBufferSize))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return plannedEntry{}, err
		}
		if b.cfg.missingSource == MissingSourceZeroFill {
			b.log().Warn("unable to read source, skipping", "path", path, "error", err)
			return plannedEntry{source: src, skipped: true}, nil
		}
		return plannedEntry{}, fmt.Errorf("%s: %w: %w", path, ErrMissingSource, err)
	}

	size, err := sizing.ToUint32(len(raw), ErrSizeOverflow)
	if err != nil {
		return plannedEntry{}, fmt.Errorf("%s: %w", path, err)
	}

	requested := b.cfg.compression
	if requested != CompressionNone && write.ShouldSkip(path, int64(len(raw)), b.cfg.skipCompression) {
		b.log().Debug("skipping compression", "path", path)
		requested = CompressionNone
	}

	stored, tag, err := write.Apply(raw, requested)
	if err != nil {
		return plannedEntry{}, fmt.Errorf("%s: %w", path, err)
	}

	p := plannedEntry{
		entry: Entry{
			Path:             path,
			StoredSize:       uint32(len(stored)), //nolint:gosec // stored is never larger than raw
			UncompressedSize: size,
			Compression:      tag,
			Checksum:         crc16.Checksum(stored),
		},
		source: src,
	}
	if tag != CompressionNone {
		p.stored = stored
	}
	b.log().Debug("planned entry",
		"path", path,
		"size", size,
		"stored", p.entry.StoredSize,
		"compression", tag.String())
	return p, nil
}

// serialize writes header, directory, and payloads.
func (b *builder) serialize(ctx context.Context, w io.Writer, entries []Entry, planned []plannedEntry) error {
	dir, err := format.EncodeDirectory(entries)
	if err != nil {
		if errors.Is(err, ErrSizeOverflow) {
			return fmt.Errorf("too many entries: %w", err)
		}
		return err
	}

	hasher := sha256.New()
	cw := &file.CountingWriter{W: io.MultiWriter(w, hasher)}
	if _, err := cw.Write(dir); err != nil {
		return fmt.Errorf("write directory: %w", err)
	}

	var total uint64
	for i := range entries {
		total += uint64(entries[i].StoredSize)
	}

	buf := make([]byte, copyBufferSize)
	var done uint64
	for i := range planned {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := &planned[i]
		if p.stored != nil {
			if _, err := cw.Write(p.stored); err != nil {
				return fmt.Errorf("write %s: %w", p.entry.Path, err)
			}
			p.stored = nil
		} else if err := b.writeRaw(ctx, cw, p, buf); err != nil {
			return err
		}
		done += uint64(p.entry.StoredSize)
		b.reportProgress(StageWriting, p.entry.Path, done, total, i+1, len(planned))
	}

	b.result.BytesWritten = cw.N
	b.result.Digest = digest.NewDigestFromEncoded(digest.SHA256, hex.EncodeToString(hasher.Sum(nil)))
	return nil
}

// writeRaw copies exactly StoredSize bytes from the entry's source.
func (b *builder) writeRaw(ctx context.Context, w io.Writer, p *plannedEntry, buf []byte) error {
	want := uint64(p.entry.StoredSize)
	var written uint64

	rc, readErr := p.source.Open()
	if readErr == nil {
		src := &trackingReader{r: io.LimitReader(rc, int64(want))}
		var err error
		written, err = file.CopyWithContext(ctx, w, src, buf)
		rc.Close()
		switch {
		case err != nil && src.err == nil:
			// Cancellation or a failed write to the destination.
			return fmt.Errorf("write %s: %w", p.entry.Path, err)
		case err != nil:
			readErr = err
		case written < want:
			readErr = fmt.Errorf("short read: %d of %d bytes: %w", written, want, io.ErrUnexpectedEOF)
		default:
			return nil
		}
	}

	if b.cfg.missingSource != MissingSourceZeroFill {
		return fmt.Errorf("%s: %w: %w", p.entry.Path, ErrMissingSource, readErr)
	}
	b.result.ZeroFilled++
	b.log().Warn("unable to read source while writing, filling with zero bytes",
		"path", p.entry.Path,
		"size", want,
		"error", readErr)
	if _, err := io.CopyN(w, zeroReader{}, int64(want-written)); err != nil { //nolint:gosec // bounded by StoredSize
		return fmt.Errorf("write %s: %w", p.entry.Path, err)
	}
	return nil
}

// readSource reads the whole content of src.
func readSource(ctx context.Context, src Source, buf []byte) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out bytes.Buffer
	if _, err := file.CopyWithContext(ctx, &out, rc, buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// renamedSource overrides the archive path of a source.
type renamedSource struct {
	Source
	path string
}

func (s renamedSource) Path() string { return s.path }

// trackingReader records the first non-EOF read error.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

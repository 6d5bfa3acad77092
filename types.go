package gpak

import (
	"github.com/meigma/gpak/internal/format"
	"github.com/meigma/gpak/internal/packtype"
	"github.com/meigma/gpak/internal/write"
)

// Entry describes one file in the archive.
type Entry = packtype.Entry

// Compression identifies how an entry's payload is stored.
type Compression = packtype.Compression

// Compression tags.
const (
	CompressionNone  = packtype.CompressionNone
	CompressionLZ4HC = packtype.CompressionLZ4HC
	CompressionZstd  = packtype.CompressionZstd
)

// ParseCompression parses a compression name ("none", "lz4hc", "zstd").
var ParseCompression = packtype.ParseCompression

// Format constants.
const (
	// Magic is the four-byte archive signature.
	Magic = format.Magic

	// Version is the archive format version written and accepted.
	Version = format.Version

	// MaxPathLength is the longest stored path in bytes. Longer paths keep
	// their trailing MaxPathLength bytes.
	MaxPathLength = packtype.MaxPathLength
)

// ProgressEvent represents a progress update.
type ProgressEvent = packtype.ProgressEvent

// ProgressStage identifies the current phase of an operation.
type ProgressStage = packtype.ProgressStage

// ProgressFunc receives progress updates.
type ProgressFunc = packtype.ProgressFunc

// Progress stages.
const (
	StageEnumerating = packtype.StageEnumerating
	StageCompressing = packtype.StageCompressing
	StageWriting     = packtype.StageWriting
	StageVerifying   = packtype.StageVerifying
	StageExtracting  = packtype.StageExtracting
)

// SkipCompressionFunc returns true when an entry should be stored
// uncompressed without trying the codec.
type SkipCompressionFunc = write.SkipCompressionFunc

// DefaultSkipCompression returns a SkipCompressionFunc that skips small
// entries and known already-compressed extensions.
var DefaultSkipCompression = write.DefaultSkipCompression

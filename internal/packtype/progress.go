package packtype

// ProgressEvent represents a progress update during build, verify, or extraction.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the entry currently being processed, if applicable.
	Path string

	// BytesDone is the number of payload bytes completed.
	BytesDone uint64

	// BytesTotal is the total payload bytes for the operation.
	// Zero indicates the total is unknown.
	BytesTotal uint64

	// FilesDone is the number of entries completed.
	FilesDone int

	// FilesTotal is the total number of entries.
	// Zero indicates the total is unknown (e.g., during enumeration).
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages.
const (
	// StageEnumerating indicates the builder is walking the directory tree.
	StageEnumerating ProgressStage = iota

	// StageCompressing indicates entries are being compressed and checksummed.
	StageCompressing

	// StageWriting indicates the archive is being serialized.
	StageWriting

	// StageVerifying indicates stored checksums are being recomputed.
	StageVerifying

	// StageExtracting indicates entries are being written to disk.
	StageExtracting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StageCompressing:
		return "compressing"
	case StageWriting:
		return "writing"
	case StageVerifying:
		return "verifying"
	case StageExtracting:
		return "extracting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates.
// Build may call it from worker goroutines; implementations must be safe for
// concurrent calls.
type ProgressFunc func(ProgressEvent)

package write

import (
	"path"
	"strings"
)

// SkipCompressionFunc returns true when an entry should be stored raw
// without trying the codec. It is called once per entry and should be
// inexpensive.
type SkipCompressionFunc func(path string, size int64) bool

// DefaultSkipCompression returns a SkipCompressionFunc that skips entries
// smaller than minSize and known already-compressed extensions.
func DefaultSkipCompression(minSize int64) SkipCompressionFunc {
	return func(p string, size int64) bool {
		if minSize > 0 && size < minSize {
			return true
		}
		ext := strings.ToLower(path.Ext(p))
		_, ok := defaultSkipCompressionExts[ext]
		return ok
	}
}

// ShouldSkip checks if any predicate returns true for the given entry.
func ShouldSkip(p string, size int64, predicates []SkipCompressionFunc) bool {
	for _, fn := range predicates {
		if fn == nil {
			continue
		}
		if fn(p, size) {
			return true
		}
	}
	return false
}

var defaultSkipCompressionExts = map[string]struct{}{
	".7z":   {},
	".aac":  {},
	".avif": {},
	".br":   {},
	".bz2":  {},
	".flac": {},
	".gif":  {},
	".gz":   {},
	".jpeg": {},
	".jpg":  {},
	".ktx2": {},
	".lz4":  {},
	".mp3":  {},
	".mp4":  {},
	".ogg":  {},
	".opus": {},
	".png":  {},
	".rar":  {},
	".webm": {},
	".webp": {},
	".xz":   {},
	".zip":  {},
	".zst":  {},
}

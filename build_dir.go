package gpak

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// BuildDir writes an archive of every regular file below dir to w.
//
// The tree is walked in lexical order. Names starting with "." are skipped
// along with everything below them, as are symbolic links and other
// non-regular files. Archive paths are relative to dir and use forward
// slashes. Empty directories are not preserved.
func BuildDir(ctx context.Context, dir string, w io.Writer, opts ...BuildOption) (*BuildResult, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	cfg := newBuildConfig(opts)
	b := &builder{cfg: cfg, logger: cfg.logger}

	sources, err := b.enumerate(ctx, root)
	if err != nil {
		return nil, err
	}
	b.log().Debug("enumerated directory", "dir", dir, "files", len(sources))
	return b.build(ctx, w, sources)
}

// enumerate collects a FileSource for every regular file under root.
func (b *builder) enumerate(ctx context.Context, root *os.Root) ([]Source, error) {
	b.reportProgress(StageEnumerating, "", 0, 0, 0, 0)

	var sources []Source
	err := fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			b.log().Debug("skipped hidden entry", "path", path)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			b.log().Debug("skipped non-regular file", "path", path, "type", d.Type().String())
			return nil
		}
		sources = append(sources, FileSource(root, path))
		b.reportProgress(StageEnumerating, path, 0, 0, len(sources), 0)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return sources, nil
}

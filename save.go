package gpak

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// BuildFile builds an archive of dir and writes it to outPath.
//
// Uses atomic writes (temp file + rename) so a failed build never leaves a
// partial archive at outPath. Parent directories are created as needed.
func BuildFile(ctx context.Context, dir, outPath string, opts ...BuildOption) (*BuildResult, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var result *BuildResult
	err := writeFileAtomic(outPath, func(f *os.File) error {
		bw := bufio.NewWriterSize(f, 1<<20)
		res, err := BuildDir(ctx, dir, bw, opts...)
		if err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// writeFileAtomic fills a temp file beside target then renames it to
// target, ensuring atomic replacement of the target file.
func writeFileAtomic(target string, fill func(*os.File) error) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".gpak-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

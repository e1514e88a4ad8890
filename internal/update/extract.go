package update

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// errPathTraversal marks an entry whose path escapes the target directory.
var errPathTraversal = errors.New("entry path escapes target directory")

// ZipExtractor unpacks ZIP archives
type ZipExtractor struct{}

// NewZipExtractor creates a ZIP extractor
func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{}
}

// Extract unpacks job.ArchivePath into job.TargetDirectory.
//
// Entries are written in stored order, overwriting existing files and
// creating parent directories as needed. onProgress receives
// round(extracted*100/total) after every entry; an empty archive reports 100
// once. Failures are returned as *ArchiveError and leave already extracted
// files in place.
func (e *ZipExtractor) Extract(ctx context.Context, job *ExtractionJob, onProgress ExtractProgressFunc) error {
	r, err := zip.OpenReader(job.ArchivePath)
	if err != nil {
		return &ArchiveError{Path: job.ArchivePath, Err: err}
	}
	defer func() { _ = r.Close() }()

	total := len(r.File)
	job.EntryCount = total

	if total == 0 {
		report(onProgress, 100)
		return nil
	}

	target, err := filepath.Abs(job.TargetDirectory)
	if err != nil {
		return &ArchiveError{Path: job.ArchivePath, Err: fmt.Errorf("resolving target: %w", err)}
	}

	for i, f := range r.File {
		if err := ctx.Err(); err != nil {
			return &ArchiveError{Path: job.ArchivePath, Entry: f.Name, Err: err}
		}

		if err := extractEntry(f, target); err != nil {
			return &ArchiveError{Path: job.ArchivePath, Entry: f.Name, Err: err}
		}

		report(onProgress, percentOf(i+1, total))
	}

	return nil
}

// CountEntries returns the number of entries in the archive at path
func (e *ZipExtractor) CountEntries(path string) (int, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, &ArchiveError{Path: path, Err: err}
	}
	defer func() { _ = r.Close() }()
	return len(r.File), nil
}

// extractEntry writes a single entry below target
func extractEntry(f *zip.File, target string) error {
	dest, err := entryPath(target, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return os.MkdirAll(dest, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// entryPath joins name onto target and rejects results outside target
func entryPath(target, name string) (string, error) {
	dest := filepath.Join(target, filepath.FromSlash(name))
	if dest != target && !strings.HasPrefix(dest, target+string(os.PathSeparator)) {
		return "", errPathTraversal
	}
	return dest, nil
}

// percentOf returns round(done*100/total); total must be positive
func percentOf(done, total int) int {
	return int(math.Round(float64(done) * 100 / float64(total)))
}

func report(fn ExtractProgressFunc, percent int) {
	if fn != nil {
		fn(percent)
	}
}

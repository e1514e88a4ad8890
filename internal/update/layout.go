package update

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	runtimesDirName = "runtimes"
	browserDirName  = "browser"
	downloadDirName = "download"
	archiveExt      = ".zip"
)

// Layout is the on-disk arrangement below the application directory
type Layout struct {
	AppDir      string
	BrowserDir  string // <app>/runtimes/browser, recreated every run
	DownloadDir string // <app>/download, archives and extracted executables
	ExeExt      string // Extension of the extracted executable, e.g. ".exe"
}

// CachedVersion describes one version present in the download directory
type CachedVersion struct {
	Version     string    `json:"version" yaml:"version" toml:"version"`
	ArchivePath string    `json:"archive" yaml:"archive" toml:"archive"`
	ArchiveSize int64     `json:"archive_size" yaml:"archive_size" toml:"archive_size"`
	Executable  bool      `json:"executable" yaml:"executable" toml:"executable"`
	ModTime     time.Time `json:"modified" yaml:"modified" toml:"modified"`
}

// PruneResult contains information about what was pruned.
type PruneResult struct {
	Deleted []CachedVersion `json:"deleted" yaml:"deleted" toml:"deleted"`
	Kept    int             `json:"kept" yaml:"kept" toml:"kept"`
}

// NewLayout creates the layout rooted at appDir.
// An empty exeExt defaults to ".exe".
func NewLayout(appDir, exeExt string) *Layout {
	if exeExt == "" {
		exeExt = ".exe"
	}
	if !strings.HasPrefix(exeExt, ".") {
		exeExt = "." + exeExt
	}
	return &Layout{
		AppDir:      appDir,
		BrowserDir:  filepath.Join(appDir, runtimesDirName, browserDirName),
		DownloadDir: filepath.Join(appDir, downloadDirName),
		ExeExt:      exeExt,
	}
}

// Prepare wipes and recreates the browser directory and ensures the
// download directory exists.
func (l *Layout) Prepare() error {
	if err := os.RemoveAll(l.BrowserDir); err != nil {
		return fmt.Errorf("failed to clear browser directory: %w", err)
	}
	if err := os.MkdirAll(l.BrowserDir, 0o755); err != nil {
		return fmt.Errorf("failed to create browser directory: %w", err)
	}
	if err := os.MkdirAll(l.DownloadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	return nil
}

// ArchivePath returns <download>/<version>.zip
func (l *Layout) ArchivePath(version string) string {
	return filepath.Join(l.DownloadDir, version+archiveExt)
}

// ExecutablePath returns <download>/<version><ext>
func (l *Layout) ExecutablePath(version string) string {
	return filepath.Join(l.DownloadDir, version+l.ExeExt)
}

// FindArchive returns the path of the cached archive for version.
// The extension is compared case-insensitively, so "1.2.ZIP" counts.
func (l *Layout) FindArchive(version string) (string, bool) {
	entries, err := os.ReadDir(l.DownloadDir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if strings.EqualFold(ext, archiveExt) && strings.TrimSuffix(name, ext) == version {
			return filepath.Join(l.DownloadDir, name), true
		}
	}
	return "", false
}

// List returns the cached versions, newest first.
func (l *Layout) List() ([]CachedVersion, error) {
	entries, err := os.ReadDir(l.DownloadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []CachedVersion{}, nil
		}
		return nil, fmt.Errorf("failed to read download directory: %w", err)
	}

	byVersion := make(map[string]CachedVersion)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, archiveExt) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		version := strings.TrimSuffix(name, ext)
		_, exeErr := os.Stat(l.ExecutablePath(version))
		byVersion[version] = CachedVersion{
			Version:     version,
			ArchivePath: filepath.Join(l.DownloadDir, name),
			ArchiveSize: info.Size(),
			Executable:  exeErr == nil,
			ModTime:     info.ModTime(),
		}
	}

	labels := make([]string, 0, len(byVersion))
	for v := range byVersion {
		labels = append(labels, v)
	}
	SortLabelsDesc(labels)

	versions := make([]CachedVersion, 0, len(labels))
	for _, v := range labels {
		versions = append(versions, byVersion[v])
	}
	return versions, nil
}

// Remove deletes the archive and executable of a cached version.
func (l *Layout) Remove(v CachedVersion) error {
	if err := os.Remove(v.ArchivePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", v.ArchivePath, err)
	}
	exe := l.ExecutablePath(v.Version)
	if err := os.Remove(exe); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", exe, err)
	}
	return nil
}

// Prune removes old cached versions, keeping only the newest keep versions.
func (l *Layout) Prune(keep int) (*PruneResult, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep count must be non-negative")
	}

	versions, err := l.List()
	if err != nil {
		return nil, err
	}

	result := &PruneResult{}

	// List is already sorted newest first
	if len(versions) <= keep {
		result.Kept = len(versions)
		return result, nil
	}

	toDelete := versions[keep:]
	result.Kept = keep

	for _, v := range toDelete {
		if err := l.Remove(v); err != nil {
			return nil, fmt.Errorf("failed to prune version %s: %w", v.Version, err)
		}
		result.Deleted = append(result.Deleted, v)
	}

	return result, nil
}

// ExtractDir returns the directory archives are unpacked into
func (l *Layout) ExtractDir() string {
	return l.DownloadDir
}

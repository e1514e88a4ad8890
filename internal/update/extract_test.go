package update

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type zipEntry struct {
	name string
	body string
}

func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", e.name, err)
		}
		if e.body != "" {
			if _, err := w.Write([]byte(e.body)); err != nil {
				t.Fatalf("failed to write %s: %v", e.name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
}

func TestZipExtractorExtract(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "1.0.0.zip")
	target := filepath.Join(tmpDir, "out")

	writeZip(t, archive, []zipEntry{
		{name: "1.0.0.exe", body: "binary"},
		{name: "data/"},
		{name: "data/config.ini", body: "[main]"},
	})

	// Existing file is overwritten
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "1.0.0.exe"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	var percents []int
	job := &ExtractionJob{ArchivePath: archive, TargetDirectory: target}
	err := NewZipExtractor().Extract(context.Background(), job, func(p int) {
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if job.EntryCount != 3 {
		t.Errorf("EntryCount = %d, want 3", job.EntryCount)
	}

	want := []int{33, 67, 100}
	if len(percents) != len(want) {
		t.Fatalf("progress calls = %v, want %v", percents, want)
	}
	for i := range want {
		if percents[i] != want[i] {
			t.Errorf("percent[%d] = %d, want %d", i, percents[i], want[i])
		}
	}

	content, err := os.ReadFile(filepath.Join(target, "1.0.0.exe"))
	if err != nil {
		t.Fatalf("failed to read extracted file: %v", err)
	}
	if string(content) != "binary" {
		t.Errorf("content = %q, want binary", content)
	}
	if _, err := os.Stat(filepath.Join(target, "data", "config.ini")); err != nil {
		t.Errorf("nested file missing: %v", err)
	}
}

func TestZipExtractorExtract_ProgressMonotonic(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "many.zip")

	var entries []zipEntry
	for i := 0; i < 7; i++ {
		entries = append(entries, zipEntry{name: filepath.ToSlash(filepath.Join("dir", string(rune('a'+i))+".txt")), body: "x"})
	}
	writeZip(t, archive, entries)

	var percents []int
	err := NewZipExtractor().Extract(context.Background(), &ExtractionJob{ArchivePath: archive, TargetDirectory: tmpDir}, func(p int) {
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(percents) != 7 {
		t.Fatalf("progress calls = %d, want 7", len(percents))
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress decreased: %v", percents)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("last percent = %d, want 100", percents[len(percents)-1])
	}
}

func TestZipExtractorExtract_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "empty.zip")
	writeZip(t, archive, nil)

	var percents []int
	err := NewZipExtractor().Extract(context.Background(), &ExtractionJob{ArchivePath: archive, TargetDirectory: tmpDir}, func(p int) {
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(percents) != 1 || percents[0] != 100 {
		t.Errorf("progress = %v, want [100]", percents)
	}
}

func TestZipExtractorExtract_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	corrupt := filepath.Join(tmpDir, "corrupt.zip")
	if err := os.WriteFile(corrupt, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	traversal := filepath.Join(tmpDir, "traversal.zip")
	writeZip(t, traversal, []zipEntry{{name: "../escape.txt", body: "x"}})

	tests := []struct {
		name    string
		archive string
	}{
		{name: "missing archive", archive: filepath.Join(tmpDir, "nope.zip")},
		{name: "corrupt archive", archive: corrupt},
		{name: "path traversal", archive: traversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := filepath.Join(tmpDir, "out-"+filepath.Base(tt.archive))
			err := NewZipExtractor().Extract(context.Background(), &ExtractionJob{ArchivePath: tt.archive, TargetDirectory: target}, nil)

			var archiveErr *ArchiveError
			if !errors.As(err, &archiveErr) {
				t.Fatalf("Extract() error = %v, want *ArchiveError", err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry was written outside the target")
	}
}

func TestEntryPath(t *testing.T) {
	target := filepath.Join(string(os.PathSeparator), "app", "download")

	tests := []struct {
		name    string
		entry   string
		wantErr bool
	}{
		{"plain file", "a.exe", false},
		{"nested", "dir/a.txt", false},
		{"dot dir", "./a.txt", false},
		{"parent escape", "../a.txt", true},
		{"nested escape", "dir/../../a.txt", true},
		{"sibling prefix", "../download-other/a.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := entryPath(target, tt.entry)
			if (err != nil) != tt.wantErr {
				t.Errorf("entryPath(%q) error = %v, wantErr %v", tt.entry, err, tt.wantErr)
			}
		})
	}
}

func TestZipExtractorCountEntries(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "a.zip")
	writeZip(t, archive, []zipEntry{{name: "a"}, {name: "b"}})

	n, err := NewZipExtractor().CountEntries(archive)
	if err != nil {
		t.Fatalf("CountEntries() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountEntries() = %d, want 2", n)
	}
}

// Package update implements the stages of the update-acquisition pipeline:
// challenge wait, metadata scraping, link resolution, transfer, extraction
// and launch.
package update

import "context"

// UpdateDescriptor identifies the latest published version
type UpdateDescriptor struct {
	Version string // Version label, first token of the release title
	PageURL string // Indirect download page; empty when the page had no link
}

// TransferTask describes one download attempt
type TransferTask struct {
	SourceURL       string // Direct archive URL
	DestinationPath string // Local archive path
	ExpectedSize    int64  // Declared length, -1 when unknown
}

// ExtractionJob describes one archive unpack
type ExtractionJob struct {
	ArchivePath     string
	TargetDirectory string
	EntryCount      int // Filled in by the extractor once the archive is opened
}

// Page is a rendered document that can evaluate scripts.
// Eval returns the script result encoded as JSON.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Eval(ctx context.Context, script string) (string, error)
}

// TransferProgressFunc receives cumulative bytes and the declared total (-1 if unknown)
type TransferProgressFunc func(done, total int64)

// ExtractProgressFunc receives the extraction percentage (0-100)
type ExtractProgressFunc func(percent int)

package update

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrChallengeTimeout is returned when the bot challenge never cleared.
	ErrChallengeTimeout = errors.New("blocked by bot challenge")

	// ErrDownloadLinkMissing is returned when no download link could be found.
	ErrDownloadLinkMissing = errors.New("download URL not found")
)

type (
	// ScrapeError reports that the rendered page did not yield release metadata.
	ScrapeError struct {
		Reason string
		Err    error
	}

	// LinkNotFoundError reports that the indirect page lacks the download anchor.
	LinkNotFoundError struct {
		PageURL  string
		AnchorID string
	}

	// NetworkError wraps a transport, timeout or HTTP status failure.
	NetworkError struct {
		Op         string // "resolve", "download", "navigate"
		URL        string
		StatusCode int // 0 when no response was received
		Err        error
	}

	// ArchiveError wraps a failure to open or unpack an archive.
	ArchiveError struct {
		Path  string
		Entry string // Empty when the archive itself could not be opened
		Err   error
	}

	// BrowserError reports that the local browser could not be started or
	// attached to, before any page was requested.
	BrowserError struct {
		Op  string // "launch", "connect", "open page"
		Err error
	}

	// LaunchError wraps a failure to start the extracted executable.
	LaunchError struct {
		Path string
		Err  error
	}
)

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to read release information: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to read release information: %s", e.Reason)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

func (e *LinkNotFoundError) Error() string {
	return fmt.Sprintf("download link not found on %s (no element with id %q)", redactURL(e.PageURL), e.AnchorID)
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, redactURL(e.URL), e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, redactURL(e.URL), e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *ArchiveError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("failed to extract %s from %s: %v", e.Entry, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to open archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

func (e *BrowserError) Error() string {
	return fmt.Sprintf("browser %s failed: %v", e.Op, e.Err)
}

func (e *BrowserError) Unwrap() error { return e.Err }

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// redactURL strips query parameters and fragments so signed download links
// do not end up in logs or on screen.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

package update

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefaultTitleSelector matches the active release tab.
	DefaultTitleSelector = "button.nav-link.active"

	// DefaultHostMatch is the file-hosting domain the release link points to.
	DefaultHostMatch = "www.mediafire.com"
)

// MetadataScraper reads the version label and indirect download link from a rendered page
type MetadataScraper struct {
	page          Page
	titleSelector string
	hostMatch     string
}

// NewMetadataScraper creates a scraper for page.
// Empty selector or host arguments fall back to the defaults.
func NewMetadataScraper(page Page, titleSelector, hostMatch string) *MetadataScraper {
	if titleSelector == "" {
		titleSelector = DefaultTitleSelector
	}
	if hostMatch == "" {
		hostMatch = DefaultHostMatch
	}
	return &MetadataScraper{
		page:          page,
		titleSelector: titleSelector,
		hostMatch:     hostMatch,
	}
}

// scrapePayload is the schema the page query must return
type scrapePayload struct {
	Title *string `json:"title"`
	Link  *string `json:"link"`
}

// Scrape evaluates the metadata query and builds an UpdateDescriptor.
// A missing link is not an error here: PageURL is left empty for the caller to reject.
func (s *MetadataScraper) Scrape(ctx context.Context) (UpdateDescriptor, error) {
	raw, err := s.page.Eval(ctx, s.script())
	if err != nil {
		return UpdateDescriptor{}, &ScrapeError{Reason: "evaluating page query", Err: err}
	}

	payload, err := decodeScrapePayload(raw)
	if err != nil {
		return UpdateDescriptor{}, err
	}

	title := strings.TrimSpace(*payload.Title)
	if title == "" && strings.TrimSpace(*payload.Link) == "" {
		return UpdateDescriptor{}, &ScrapeError{Reason: "no release elements found on page"}
	}

	version, err := VersionFromTitle(title)
	if err != nil {
		return UpdateDescriptor{}, err
	}

	return UpdateDescriptor{
		Version: version,
		PageURL: strings.TrimSpace(*payload.Link),
	}, nil
}

// VersionFromTitle returns the first whitespace-delimited token of title,
// rejecting labels that cannot be used as a file name.
func VersionFromTitle(title string) (string, error) {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return "", &ScrapeError{Reason: "release title is empty"}
	}

	version := fields[0]
	if err := ValidateLabel(version); err != nil {
		return "", &ScrapeError{Reason: "release title has an unusable version label", Err: err}
	}
	return version, nil
}

// decodeScrapePayload parses raw into the payload schema.
// Some page bridges return the object pre-stringified, so one level of
// JSON string wrapping is unwrapped first.
func decodeScrapePayload(raw string) (*scrapePayload, error) {
	data := []byte(strings.TrimSpace(raw))

	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, &ScrapeError{Reason: "malformed page payload", Err: err}
		}
		data = []byte(inner)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var payload scrapePayload
	if err := dec.Decode(&payload); err != nil {
		return nil, &ScrapeError{Reason: "malformed page payload", Err: err}
	}
	if payload.Title == nil || payload.Link == nil {
		return nil, &ScrapeError{Reason: "page payload is missing title or link"}
	}

	return &payload, nil
}

// script builds the page query. The link is matched by host substring so
// mirrors that add query strings still qualify.
func (s *MetadataScraper) script() string {
	linkSelector := fmt.Sprintf(`a[href*="%s"]`, s.hostMatch)
	return fmt.Sprintf(`() => {
	const titleElement = document.querySelector(%q);
	const linkElement = document.querySelector(%q);
	return {
		title: titleElement ? titleElement.innerText.trim() : '',
		link: linkElement ? linkElement.href : ''
	};
}`, s.titleSelector, linkSelector)
}

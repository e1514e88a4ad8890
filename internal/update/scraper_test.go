package update

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestScrape(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantVersion string
		wantURL     string
		wantErr     bool
	}{
		{
			name:        "title and link",
			raw:         `{"title":"1.2.3 Release","link":"https://www.mediafire.com/file/abc"}`,
			wantVersion: "1.2.3",
			wantURL:     "https://www.mediafire.com/file/abc",
		},
		{
			name:        "stringified payload",
			raw:         `"{\"title\":\"2024.05.01 build\",\"link\":\"https://www.mediafire.com/x\"}"`,
			wantVersion: "2024.05.01",
			wantURL:     "https://www.mediafire.com/x",
		},
		{
			name:        "missing link leaves page url empty",
			raw:         `{"title":"1.0.0","link":""}`,
			wantVersion: "1.0.0",
			wantURL:     "",
		},
		{
			name:    "both empty",
			raw:     `{"title":"","link":""}`,
			wantErr: true,
		},
		{
			name:    "empty title with link",
			raw:     `{"title":"   ","link":"https://www.mediafire.com/x"}`,
			wantErr: true,
		},
		{
			name:    "unknown field",
			raw:     `{"title":"1.0.0","link":"","extra":1}`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			raw:     `{"title":123,"link":""}`,
			wantErr: true,
		},
		{
			name:    "missing key",
			raw:     `{"title":"1.0.0"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `undefined`,
			wantErr: true,
		},
		{
			name:    "unsafe version label",
			raw:     `{"title":"../evil now","link":"https://www.mediafire.com/x"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &fakePage{results: []evalResult{{value: tt.raw}}}
			s := NewMetadataScraper(page, "", "")

			got, err := s.Scrape(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scrape() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var scrapeErr *ScrapeError
				if !errors.As(err, &scrapeErr) {
					t.Errorf("Scrape() error = %T, want *ScrapeError", err)
				}
				return
			}
			if got.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", got.Version, tt.wantVersion)
			}
			if got.PageURL != tt.wantURL {
				t.Errorf("PageURL = %q, want %q", got.PageURL, tt.wantURL)
			}
		})
	}
}

func TestScrape_EvalError(t *testing.T) {
	page := &fakePage{results: []evalResult{{err: errors.New("target closed")}}}
	s := NewMetadataScraper(page, "", "")

	_, err := s.Scrape(context.Background())
	var scrapeErr *ScrapeError
	if !errors.As(err, &scrapeErr) {
		t.Fatalf("Scrape() error = %v, want *ScrapeError", err)
	}
}

func TestScrape_ScriptSelectors(t *testing.T) {
	page := &fakePage{results: []evalResult{{value: `{"title":"1.0.0","link":""}`}}}
	s := NewMetadataScraper(page, "h1.release", "files.example.com")

	if _, err := s.Scrape(context.Background()); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	script := page.scripts[0]
	for _, want := range []string{`"h1.release"`, `files.example.com`} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %s:\n%s", want, script)
		}
	}
}

func TestVersionFromTitle(t *testing.T) {
	tests := []struct {
		title   string
		want    string
		wantErr bool
	}{
		{"1.2.3 Release", "1.2.3", false},
		{"  v2.0.0\tstable", "v2.0.0", false},
		{"2024-01-15", "2024-01-15", false},
		{"", "", true},
		{"a/b release", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, err := VersionFromTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VersionFromTitle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VersionFromTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

package console

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/adamancini/fetchy/internal/pipeline"
	"github.com/adamancini/fetchy/internal/types"
)

func TestSinkNonInteractiveLogsAtSteps(t *testing.T) {
	var out, logs bytes.Buffer
	logger := log.New(&logs)
	s := New(&out, logger, WithInteractive(false))

	s.Status(types.StateDownloading, "Downloading update...")
	for done := int64(0); done <= 1000; done += 25 {
		s.Progress(pipeline.Progress{State: types.StateDownloading, Done: done, Total: 1000})
	}

	got := logs.String()
	if !strings.Contains(got, "Downloading update...") {
		t.Errorf("status not logged:\n%s", got)
	}
	for pct := 0; pct <= 100; pct += 10 {
		line := "Downloading (" + strconv.Itoa(pct) + "%)"
		if n := strings.Count(got, line); n != 1 {
			t.Errorf("%q logged %d times, want 1", line, n)
		}
	}
	if out.Len() != 0 {
		t.Errorf("non-interactive sink wrote to out: %q", out.String())
	}
}

func TestSinkNonInteractiveUnknownTotal(t *testing.T) {
	var logs bytes.Buffer
	s := New(&bytes.Buffer{}, log.New(&logs), WithInteractive(false))

	s.Progress(pipeline.Progress{State: types.StateDownloading, Done: 4096, Total: -1})

	if strings.Contains(logs.String(), "%") {
		t.Errorf("unknown total should not log a percentage:\n%s", logs.String())
	}
}

func TestSinkNonInteractiveResetsBetweenStages(t *testing.T) {
	var logs bytes.Buffer
	s := New(&bytes.Buffer{}, log.New(&logs), WithInteractive(false))

	s.Status(types.StateDownloading, "Downloading update...")
	s.Progress(pipeline.Progress{State: types.StateDownloading, Done: 100, Total: 100})
	s.Status(types.StateExtracting, "Extracting update...")
	s.Progress(pipeline.Progress{State: types.StateExtracting, Done: 100, Total: 100})

	if !strings.Contains(logs.String(), "Extracting (100%)") {
		t.Errorf("extraction progress missing:\n%s", logs.String())
	}
}

func TestSinkFailNonInteractive(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, nil, WithInteractive(false))

	s.Fail(errors.New("blocked by bot challenge"))

	if got := out.String(); got != "Error: blocked by bot challenge\n" {
		t.Errorf("Fail() wrote %q", got)
	}
}

func TestSinkInteractive(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, nil, WithInteractive(true))

	s.Status(types.StateDownloading, "Downloading update...")
	s.Progress(pipeline.Progress{State: types.StateDownloading, Done: 512, Total: 1024})
	s.Progress(pipeline.Progress{State: types.StateDownloading, Done: 1024, Total: 1024})
	s.Status(types.StateExtracting, "Extracting update...")
	s.Progress(pipeline.Progress{State: types.StateExtracting, Done: 40, Total: 100})
	s.Fail(errors.New("archive is corrupt"))

	got := out.String()
	for _, want := range []string{"Downloading update...", "Extracting update...", "Update failed", "archive is corrupt"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if s.bar != nil {
		t.Error("bar should be released after Fail")
	}
}

func TestSinkQuiet(t *testing.T) {
	var out, logs bytes.Buffer
	s := New(&out, log.New(&logs), WithInteractive(false), WithQuiet(true))

	s.Status(types.StateDownloading, "Downloading update...")
	s.Progress(pipeline.Progress{State: types.StateDownloading, Done: 50, Total: 100})
	if logs.Len() != 0 || out.Len() != 0 {
		t.Errorf("quiet sink produced output: %q %q", out.String(), logs.String())
	}

	s.Fail(errors.New("boom"))
	if !strings.Contains(out.String(), "boom") {
		t.Error("quiet sink must still report failures")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("IsTerminal(buffer) = true")
	}
}

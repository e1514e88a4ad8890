package pipeline

import (
	"github.com/adamancini/fetchy/internal/types"
)

// Sink receives user-facing pipeline events.
// The orchestrator is its only caller, always from the goroutine running Run.
type Sink interface {
	// Status reports a state change with a short human message.
	Status(state types.PipelineState, message string)

	// Progress reports a progress sample for the current stage.
	Progress(p Progress)

	// Fail reports the error that ended the run.
	Fail(err error)
}

// Progress is a single progress sample.
//
// Downloads report bytes with Total set to the declared length (-1 when
// unknown); extraction reports Done as a percentage of Total = 100.
type Progress struct {
	State types.PipelineState
	Done  int64
	Total int64
}

// Percent returns Done as a percentage of Total, clamped to 100, or -1 when
// the total is unknown.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return -1
	}
	pct := int(p.Done * 100 / p.Total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Known reports whether the sample carries a usable total
func (p Progress) Known() bool {
	return p.Total > 0
}

// Discard is a Sink that drops every event
type Discard struct{}

func (Discard) Status(types.PipelineState, string) {}
func (Discard) Progress(Progress)                  {}
func (Discard) Fail(error)                         {}

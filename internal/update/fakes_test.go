package update

import (
	"context"
	"errors"
	"sync"
)

// fakePage serves canned script results in order.
type fakePage struct {
	mu          sync.Mutex
	navigated   []string
	navigateErr error
	results     []evalResult
	scripts     []string
}

type evalResult struct {
	value string
	err   error
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return p.navigateErr
}

// Eval returns the next queued result; once the queue is drained the last
// result repeats.
func (p *fakePage) Eval(ctx context.Context, script string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts = append(p.scripts, script)
	if len(p.results) == 0 {
		return "", errors.New("no result queued")
	}
	r := p.results[0]
	if len(p.results) > 1 {
		p.results = p.results[1:]
	}
	return r.value, r.err
}

func (p *fakePage) evalCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.scripts)
}

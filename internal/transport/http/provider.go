package http

import (
	"context"
	"sync"

	"github.com/Francelinojr/teste-gener/internal/pipeline"
	"github.com/Francelinojr/teste-gener/internal/store"
)

// ResultProvider yields the run the API serves. Result returns nil while
// no run has finished.
type ResultProvider interface {
	Result() *pipeline.Result
}

// RunLister lists stored runs
type RunLister interface {
	Runs(ctx context.Context) ([]store.RunInfo, error)
}

// ResultHolder is a ResultProvider that can be swapped once a new run
// finishes
type ResultHolder struct {
	mu  sync.RWMutex
	res *pipeline.Result
}

// NewResultHolder creates a holder, optionally with an initial run
func NewResultHolder(res *pipeline.Result) *ResultHolder {
	return &ResultHolder{res: res}
}

// Result returns the current run
func (h *ResultHolder) Result() *pipeline.Result {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.res
}

// Set replaces the current run
func (h *ResultHolder) Set(res *pipeline.Result) {
	h.mu.Lock()
	h.res = res
	h.mu.Unlock()
}

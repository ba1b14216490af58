package wrappers

import (
	"context"
	"sync"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []Command
	fn    func(c Command) (Output, error)
}

func (f *fakeRunner) Run(ctx context.Context, c Command) (Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	return f.fn(c)
}

package run

import (
	"context"

	"github.com/rpggio/meetflow/internal/domain/project"
)

// Handle tracks one scheduled run completion.
type Handle struct {
	// Run is the processing snapshot persisted by Start.
	Run project.Run

	done  chan struct{}
	final project.Run
	err   error
}

func newHandle(r project.Run) *Handle {
	return &Handle{Run: r, done: make(chan struct{})}
}

// Done is closed once the run is resolved.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait returns the terminal run, or an error if the completion was dropped.
func (h *Handle) Wait(ctx context.Context) (project.Run, error) {
	select {
	case <-h.done:
		return h.final, h.err
	case <-ctx.Done():
		return project.Run{}, ctx.Err()
	}
}

func (h *Handle) resolve(r project.Run, err error) {
	h.final = r
	h.err = err
	close(h.done)
}

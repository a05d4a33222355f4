package sample

import (
	"context"
	"time"

	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/domain/run"
)

// DefaultDelay is how long the simulated processing takes.
const DefaultDelay = 3 * time.Second

const sampleSummary = "Meeting focused on Q4 planning, budget discussions, and team restructuring. " +
	"Key decisions made regarding new product launches."

var sampleActionItems = []project.ActionItem{
	{Item: "Finalize Q4 budget proposal", Owner: "Sarah Johnson"},
	{Item: "Schedule team restructuring meeting", Owner: "Mike Chen"},
	{Item: "Review new product roadmap", Owner: "Alex Williams"},
}

// Summarizer waits Delay and returns the same summary for every meeting.
type Summarizer struct {
	Delay time.Duration
}

// Summarize ignores the transcript and prompt.
func (s Summarizer) Summarize(ctx context.Context, _ run.Transcript, _ string) (run.Result, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return run.Result{}, ctx.Err()
		}
	}
	items := make([]project.ActionItem, len(sampleActionItems))
	copy(items, sampleActionItems)
	return run.Result{Summary: sampleSummary, ActionItems: items}, nil
}

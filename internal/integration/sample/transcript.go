package sample

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/rpggio/meetflow/internal/domain/run"
)

// TranscriptSource derives a transcript reference from the meeting URL.
type TranscriptSource struct{}

// Fetch rejects URLs that are not absolute and otherwise returns a reference
// built from the URL's host and path.
func (TranscriptSource) Fetch(ctx context.Context, meetingURL string) (run.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return run.Transcript{}, err
	}
	u, err := url.Parse(meetingURL)
	if err != nil {
		return run.Transcript{}, fmt.Errorf("parse meeting url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return run.Transcript{}, fmt.Errorf("meeting url %q is not absolute", meetingURL)
	}
	return run.Transcript{
		MeetingURL: meetingURL,
		Reference:  path.Join(u.Host, u.Path),
	}, nil
}

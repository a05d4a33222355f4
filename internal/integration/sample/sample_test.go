package sample

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/meetflow/internal/domain/run"
	"github.com/stretchr/testify/require"
)

func TestTranscriptSource_Fetch(t *testing.T) {
	tr, err := TranscriptSource{}.Fetch(context.Background(), "https://teams.example.com/l/meetup/abc")
	require.NoError(t, err)
	require.Equal(t, "teams.example.com/l/meetup/abc", tr.Reference)

	_, err = TranscriptSource{}.Fetch(context.Background(), "meetup/abc")
	require.ErrorContains(t, err, "not absolute")
}

func TestSummarizer_ReturnsFixedResult(t *testing.T) {
	res, err := Summarizer{}.Summarize(context.Background(), run.Transcript{}, "anything")
	require.NoError(t, err)
	require.NotEmpty(t, res.Summary)
	require.Len(t, res.ActionItems, 3)
	require.Equal(t, "Sarah Johnson", res.ActionItems[0].Owner)

	res.ActionItems[0].Owner = "changed"
	again, err := Summarizer{}.Summarize(context.Background(), run.Transcript{}, "anything")
	require.NoError(t, err)
	require.Equal(t, "Sarah Johnson", again.ActionItems[0].Owner)
}

func TestSummarizer_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Summarizer{Delay: time.Minute}.Summarize(ctx, run.Transcript{}, "")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRenderSlackMessage(t *testing.T) {
	msg := run.SlackMessage{
		Template: "[{{date}}] {{project}}: {{summary}}",
		Project:  "Weekly Sync",
		Date:     time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
		Summary:  "all good",
	}
	require.Equal(t, "[2025-03-04] Weekly Sync: all good", RenderSlackMessage(msg))

	msg.Template = "  "
	require.Equal(t, "all good", RenderSlackMessage(msg))
}

func TestDelivery_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, WikiPublisher{}.Publish(ctx, run.WikiEntry{}), context.Canceled)
	require.ErrorIs(t, SlackNotifier{}.Notify(ctx, run.SlackMessage{}), context.Canceled)
}

package sample

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/meetflow/internal/domain/run"
)

// WikiPublisher logs the row it would append.
type WikiPublisher struct {
	Logger *slog.Logger
}

func (w WikiPublisher) Publish(ctx context.Context, entry run.WikiEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger(w.Logger).Info("wiki publish (simulated)",
		"wiki_url", entry.WikiURL,
		"table", entry.TableTitle,
		"project", entry.ProjectName,
		"action_items", len(entry.ActionItems),
	)
	return nil
}

// SlackNotifier logs the message it would send.
type SlackNotifier struct {
	Logger *slog.Logger
}

func (s SlackNotifier) Notify(ctx context.Context, msg run.SlackMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger(s.Logger).Info("slack notify (simulated)",
		"channel", msg.Channel,
		"text", RenderSlackMessage(msg),
	)
	return nil
}

// RenderSlackMessage fills the {{summary}}, {{project}} and {{date}}
// placeholders. An empty template yields the summary alone.
func RenderSlackMessage(msg run.SlackMessage) string {
	if strings.TrimSpace(msg.Template) == "" {
		return msg.Summary
	}
	r := strings.NewReplacer(
		"{{summary}}", msg.Summary,
		"{{project}}", msg.Project,
		"{{date}}", msg.Date.Format(time.DateOnly),
	)
	return r.Replace(msg.Template)
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}

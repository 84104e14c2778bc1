package publisher

import (
	"context"
	"log/slog"

	"github.com/ryosukesatoh/morning-summary/internal/report"
)

// LogPublisher writes the full summary to the process log. It is the
// fallback channel when email delivery fails, so it logs at WARN, or at
// ERROR when the handler filters WARN out.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, r *report.SummaryReport) error {
	level := slog.LevelWarn
	if !p.logger.Enabled(ctx, level) {
		level = slog.LevelError
	}
	p.logger.Log(ctx, level, "summary not emailed, writing report to log",
		"subject", r.Subject,
		"report", r.Text,
	)
	return nil
}

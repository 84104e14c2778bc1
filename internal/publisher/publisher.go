package publisher

import (
	"context"

	"github.com/ryosukesatoh/morning-summary/internal/report"
)

// Publisher delivers a composed summary to some output destination.
type Publisher interface {
	Publish(ctx context.Context, r *report.SummaryReport) error
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ryosukesatoh/morning-summary/internal/advisory"
	"github.com/ryosukesatoh/morning-summary/internal/config"
	"github.com/ryosukesatoh/morning-summary/internal/news"
	"github.com/ryosukesatoh/morning-summary/internal/observability"
	"github.com/ryosukesatoh/morning-summary/internal/provider"
	"github.com/ryosukesatoh/morning-summary/internal/publisher"
	"github.com/ryosukesatoh/morning-summary/internal/report"
	"github.com/ryosukesatoh/morning-summary/internal/weather"
)

// State is a step of a single run. Runs move forward only.
type State int

const (
	Init State = iota
	WeatherFetched
	AdvisoryDerived
	NewsFetched
	NewsSkipped
	Composed
	Delivered
	LoggedFallback
	Aborted
)

var stateNames = [...]string{
	Init:            "init",
	WeatherFetched:  "weather_fetched",
	AdvisoryDerived: "advisory_derived",
	NewsFetched:     "news_fetched",
	NewsSkipped:     "news_skipped",
	Composed:        "composed",
	Delivered:       "delivered",
	LoggedFallback:  "logged_fallback",
	Aborted:         "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Delivered || s == LoggedFallback || s == Aborted
}

// Outcome describes how a run ended.
type Outcome struct {
	RunID       string
	State       State
	Report      *report.SummaryReport
	NewsErr     error
	DeliveryErr error
}

// StageError is returned when a run aborts. Stage names the step that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("runner: %s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Job produces and delivers one morning summary per Run call.
type Job struct {
	location string
	category string
	weather  weather.Provider
	news     news.Provider
	mailer   publisher.Publisher
	fallback publisher.Publisher
	mirrors  []publisher.Publisher
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

type Option func(*Job)

// WithClock overrides the clock used for the report date.
func WithClock(c clockwork.Clock) Option {
	return func(j *Job) { j.clock = c }
}

// WithMirrors adds publishers that receive every composed report in
// addition to email. Their failures never change the outcome.
func WithMirrors(pubs ...publisher.Publisher) Option {
	return func(j *Job) { j.mirrors = append(j.mirrors, pubs...) }
}

func New(cfg *config.Config, w weather.Provider, n news.Provider, mailer, fallback publisher.Publisher, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Job {
	j := &Job{
		location: cfg.Location,
		category: cfg.News.Category,
		weather:  w,
		news:     n,
		mailer:   mailer,
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run executes the job once. It returns an error only when the run aborts;
// a news failure or a delivery failure still completes the run.
func (j *Job) Run(ctx context.Context) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString(), State: Init}
	logger := j.logger.With("run_id", out.RunID)
	start := j.clock.Now()

	j.metrics.RunInProgress.Set(1)
	defer j.metrics.RunInProgress.Set(0)

	logger.Info("starting morning summary", "location", j.location)

	// Step 1: weather. Nothing else is attempted without it.
	logger.Debug("fetching weather")
	stageStart := j.clock.Now()
	wr, err := j.weather.Fetch(ctx, j.location)
	j.observeStage("weather", stageStart)
	if err != nil {
		j.metrics.ProviderErrors.WithLabelValues(provider.Weather).Inc()
		return j.abort(logger, out, "weather", err)
	}
	out.State = WeatherFetched
	logger.Info("weather fetched", "location", wr.Location, "condition", wr.Condition, "temperature", wr.Temperature)

	// Step 2: road advisory
	adv := advisory.Derive(wr)
	out.State = AdvisoryDerived
	logger.Info("advisory derived", "severity", adv.Severity)

	// Step 3: news, recovered on failure
	logger.Debug("fetching headlines", "category", j.category)
	stageStart = j.clock.Now()
	digest, err := j.news.TopHeadlines(ctx, j.category, news.MaxHeadlines)
	j.observeStage("news", stageStart)
	if err != nil {
		j.metrics.ProviderErrors.WithLabelValues(provider.News).Inc()
		logger.Warn("news unavailable, continuing without headlines", "error", err)
		out.NewsErr = err
		out.State = NewsSkipped
		digest = nil
	} else {
		if digest == nil {
			digest = &news.Digest{}
		}
		if len(digest.Headlines) > news.MaxHeadlines {
			digest.Headlines = digest.Headlines[:news.MaxHeadlines]
		}
		out.State = NewsFetched
		logger.Info("headlines fetched", "count", len(digest.Headlines))
	}

	// Step 4: compose
	rep := report.Compose(report.Input{
		Weather:  wr,
		Advisory: adv,
		Digest:   digest,
		Now:      j.clock.Now(),
	})
	out.Report = rep
	out.State = Composed
	logger.Info("report composed", "subject", rep.Subject)

	j.mirror(ctx, logger, rep)

	// Step 5: deliver, falling back to the log
	stageStart = j.clock.Now()
	err = j.mailer.Publish(ctx, rep)
	j.observeStage("deliver", stageStart)
	if err != nil {
		out.DeliveryErr = err
		var de *publisher.DeliveryError
		if !errors.As(err, &de) {
			out.DeliveryErr = &publisher.DeliveryError{Err: err}
		}
		logger.Warn("email delivery failed, falling back to log", "error", err)
		if ferr := j.fallback.Publish(ctx, rep); ferr != nil {
			logger.Error("fallback publish failed", "error", ferr)
		}
		out.State = LoggedFallback
	} else {
		out.State = Delivered
	}
	// both terminal states count as a completed run
	j.metrics.LastSuccess.Set(float64(j.clock.Now().Unix()))

	j.metrics.Runs.WithLabelValues(out.State.String()).Inc()
	logger.Info("morning summary finished", "state", out.State, "duration", j.clock.Since(start))
	return out, nil
}

func (j *Job) abort(logger *slog.Logger, out Outcome, stage string, err error) (Outcome, error) {
	out.State = Aborted
	j.metrics.Runs.WithLabelValues(Aborted.String()).Inc()
	logger.Error("morning summary aborted", "stage", stage, "error", err)
	return out, &StageError{Stage: stage, Err: err}
}

func (j *Job) mirror(ctx context.Context, logger *slog.Logger, rep *report.SummaryReport) {
	for _, m := range j.mirrors {
		if err := m.Publish(ctx, rep); err != nil {
			logger.Warn("mirror publish failed", "publisher", fmt.Sprintf("%T", m), "error", err)
		}
	}
}

func (j *Job) observeStage(stage string, start time.Time) {
	j.metrics.StageDuration.WithLabelValues(stage).Observe(j.clock.Since(start).Seconds())
}

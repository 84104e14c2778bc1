package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ryosukesatoh/morning-summary/internal/config"
	"github.com/ryosukesatoh/morning-summary/internal/news"
	"github.com/ryosukesatoh/morning-summary/internal/observability"
	"github.com/ryosukesatoh/morning-summary/internal/publisher"
	"github.com/ryosukesatoh/morning-summary/internal/runner"
	"github.com/ryosukesatoh/morning-summary/internal/weather"
)

var Version = "dev"

var configPath string

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute runs the CLI and returns the process exit code. Fatal errors are
// logged with the stage that failed.
func execute(args []string, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		slog.New(slog.NewTextHandler(stderr, nil)).Error("morning-summary failed", "stage", stageOf(err), "error", err)
		return 1
	}
	return 0
}

func stageOf(err error) string {
	var se *runner.StageError
	var ce *config.ConfigurationError
	switch {
	case errors.As(err, &se):
		return se.Stage
	case errors.As(err, &ce):
		return "config"
	default:
		return "startup"
	}
}

func newRootCmd() *cobra.Command {
	run := runCmd()

	root := &cobra.Command{
		Use:           "morning-summary",
		Short:         "Daily weather, road advisory and political headlines by email",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run.RunE,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file (environment variables override it)")

	root.AddCommand(run)
	root.AddCommand(scheduleCmd())
	return root
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build and send today's summary once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), cfg, logger, observability.NewMetrics())
		},
	}
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the summary on a cron schedule until interrupted",
		Long: `Run the summary on the SCHEDULE cron expression (default "0 7 * * *").

When HTTP_ADDR is set, the latest summary, /healthz and /metrics are
served on that address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return schedule(cmd.Context(), cfg, logger)
		},
	}
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, observability.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format), nil
}

// newJob wires the providers and publishers described by cfg.
func newJob(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, opts ...runner.Option) *runner.Job {
	w := weather.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.Weather.BaseURL, cfg.Units, cfg.HTTPTimeout)
	n := news.NewNewsAPIClient(cfg.NewsAPIKey, cfg.News.BaseURL, cfg.News.Country, cfg.HTTPTimeout)
	mailer := publisher.NewEmailPublisher(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.EmailSender,
		cfg.EmailPassword,
		cfg.EmailSender,
		cfg.EmailRecipient,
		cfg.HTTPTimeout,
	)
	return runner.New(cfg, w, n, mailer, publisher.NewLogPublisher(logger), logger, metrics, opts...)
}

func runOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	out, err := newJob(cfg, logger, metrics).Run(ctx)
	if err != nil {
		return err
	}
	if out.State == runner.LoggedFallback {
		logger.Warn("summary was written to the log instead of emailed", "run_id", out.RunID)
	}
	return nil
}

func schedule(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var job *runner.Job
	runJob := func() {
		if _, err := job.Run(ctx); err != nil {
			logger.Error("scheduled run failed", "error", err)
		}
	}

	// Parse the schedule before anything starts listening.
	c, err := newScheduler(cfg.Schedule, logger, runJob)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()

	var opts []runner.Option
	var webPub *publisher.WebPublisher
	if cfg.HTTPAddr != "" {
		webPub = publisher.NewWebPublisher(cfg.HTTPAddr, promhttp.Handler(), logger)
		if err := webPub.Start(); err != nil {
			return err
		}
		opts = append(opts, runner.WithMirrors(webPub))
	}

	job = newJob(cfg, logger, metrics, opts...)

	if cfg.RunOnStart {
		logger.Info("running initial summary")
		runJob()
	}

	c.Start()
	logger.Info("scheduled morning summary", "schedule", cfg.Schedule)

	<-ctx.Done()
	logger.Info("shutting down")

	<-c.Stop().Done()

	if webPub != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := webPub.Shutdown(shutdownCtx); err != nil {
			logger.Error("web server shutdown error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// newScheduler registers fn on the cron expression expr. Overlapping
// triggers are skipped while a run is still in progress.
func newScheduler(expr string, logger *slog.Logger, fn func()) (*cron.Cron, error) {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(expr, fn); err != nil {
		return nil, fmt.Errorf("schedule: invalid cron expression %q: %w", expr, err)
	}
	return c, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ryosukesatoh/morning-summary/internal/report"
)

// WebPublisher serves the latest summary over HTTP while the scheduler runs.
// It also exposes /healthz and, when given one, a /metrics handler.
type WebPublisher struct {
	addr   string
	server *http.Server
	logger *slog.Logger
	mu     sync.RWMutex
	latest *report.SummaryReport
}

func NewWebPublisher(addr string, metrics http.Handler, logger *slog.Logger) *WebPublisher {
	wp := &WebPublisher{addr: addr, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", wp.handleIndex)
	r.Get("/report.txt", wp.handleText)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	wp.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return wp
}

// Handler returns the router, mainly for tests.
func (wp *WebPublisher) Handler() http.Handler {
	return wp.server.Handler
}

// Start begins serving HTTP in the background. Call Shutdown to stop.
func (wp *WebPublisher) Start() error {
	ln, err := net.Listen("tcp", wp.addr)
	if err != nil {
		return fmt.Errorf("web: failed to listen on %s: %w", wp.addr, err)
	}
	go func() {
		wp.logger.Info("web publisher listening", "addr", ln.Addr().String())
		if err := wp.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wp.logger.Error("web publisher error", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (wp *WebPublisher) Shutdown(ctx context.Context) error {
	return wp.server.Shutdown(ctx)
}

func (wp *WebPublisher) Publish(_ context.Context, r *report.SummaryReport) error {
	wp.mu.Lock()
	wp.latest = r
	wp.mu.Unlock()
	wp.logger.Debug("web publisher updated", "subject", r.Subject)
	return nil
}

func (wp *WebPublisher) current() *report.SummaryReport {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.latest
}

func (wp *WebPublisher) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	r := wp.current()
	if r == nil {
		fmt.Fprint(w, `<!DOCTYPE html><html><body><h1>Daily Morning Summary</h1><p>No summary available yet. Check back later.</p></body></html>`)
		return
	}
	fmt.Fprint(w, r.HTML)
}

func (wp *WebPublisher) handleText(w http.ResponseWriter, _ *http.Request) {
	r := wp.current()
	if r == nil {
		http.Error(w, "no summary available yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, r.Text)
}

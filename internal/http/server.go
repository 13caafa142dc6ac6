// Package http exposes reports over a JSON API with CSV and XLSX downloads.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fincircle/internal/amqp"
	"fincircle/internal/log"
	"fincircle/internal/middleware/ratelimit"
	"fincircle/internal/middleware/security"
	"fincircle/internal/report"
	"fincircle/internal/services"
)

// ReportAPI is the part of services.ReportService the handlers use.
type ReportAPI interface {
	Summary(ctx context.Context, ownerID string, w report.Window) (report.Report, error)
	ExportCSV(ctx context.Context, ownerID string, w report.Window, mode report.CSVMode) (services.ExportFile, error)
	ExportXLSX(ctx context.Context, ownerID string, w report.Window) (services.ExportFile, error)
	AvailableYears(ctx context.Context, ownerID string) ([]int, error)
}

// ExportPublisher enqueues asynchronous export jobs.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

type Options struct {
	Addr    string
	Reports ReportAPI
	// Publisher may be nil; POST /exports then answers 503.
	Publisher ExportPublisher
	// Ready may be nil; /readyz then always succeeds.
	Ready func(ctx context.Context) error
	// Invalidate may be nil when no record cache is configured.
	Invalidate         func(ownerID string)
	RateLimitPerMinute int
	Logger             *log.Logger
	// Now defaults to time.Now and picks the default report year.
	Now func() time.Time
}

type Server struct {
	http.Server
	limiter *ratelimit.Limiter
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
	h := &handlers{
		reports:    opts.Reports,
		publisher:  opts.Publisher,
		ready:      opts.Ready,
		invalidate: opts.Invalidate,
		now:        opts.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/api/owners/{owner}", func(r chi.Router) {
		r.Get("/reports", h.summary)
		r.Get("/reports/export.csv", h.exportCSV)
		r.Get("/reports/export.xlsx", h.exportXLSX)
		r.Get("/years", h.years)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware(ratelimit.ClientIP, func(w http.ResponseWriter, r *http.Request) {
				writeErrorMessage(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			}))
			r.Post("/exports", h.enqueueExport)
			r.Post("/refresh", h.refresh)
		})
	})

	return &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		limiter: limiter,
	}
}

// Shutdown stops the limiter's cleanup goroutine and drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

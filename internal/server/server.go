package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	RouteSummarize = "/summarize"
	RouteTag       = "/tag"

	readHeaderTimeout = 10 * time.Second
	serviceName       = "clubsafe"
)

// RequestObserver records finished requests.
type RequestObserver interface {
	ObserveRequest(route string, status int, elapsed time.Duration)
}

type Server struct {
	server   *http.Server
	observer RequestObserver
	log      *slog.Logger
}

// New builds the API server. observer may be nil; a nil tp uses the global
// tracer provider.
func New(
	addr string,
	h *Handler,
	observer RequestObserver,
	tp trace.TracerProvider,
	log *slog.Logger,
) *Server {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	s := &Server{
		observer: observer,
		log:      log,
	}

	mux := http.NewServeMux()
	mux.Handle("POST "+RouteSummarize, s.instrument(RouteSummarize, http.HandlerFunc(h.Summarize)))
	mux.Handle("POST "+RouteTag, s.instrument(RouteTag, http.HandlerFunc(h.Tag)))

	traced := otelhttp.NewHandler(mux, serviceName,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(otel.GetTextMapPropagator()),
	)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           traced,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		if s.observer != nil {
			s.observer.ObserveRequest(route, rec.status, elapsed)
		}

		s.log.DebugContext(r.Context(), "Request is handled",
			"route", route,
			"status", rec.status,
			"durationMs", elapsed.Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

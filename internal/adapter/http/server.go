// Package http exposes the geohash service over HTTP: plain-text CSV
// coordinates, Atom feeds, raw DJIA opening values, and the usual health,
// readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oliver/ghfeed/internal/domain"
	"github.com/oliver/ghfeed/internal/feed"
	"github.com/oliver/ghfeed/internal/observability"
)

const instructions = `Simple RESTful Geohashing interface

CSV:
/LAT,LON
/LAT,LON/YYYY-MM-DD

Atom:
/atom/LAT,LON
/atom/LAT,LON/YYYY-MM-DD

where LAT and LON are latitude and longitude expressed in decimal format
(only integer portions are needed).

Additionally:

/dji
/dji/YYYY-MM-DD
`

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server wires the geohash handlers into an http.Server.
type Server struct {
	httpServer *http.Server
	builder    *feed.Builder
	search     *domain.NearestSearch
	openings   domain.OpeningSource
	siteURL    string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(
	addr string,
	builder *feed.Builder,
	search *domain.NearestSearch,
	openings domain.OpeningSource,
	ready ReadinessChecker,
	siteURL string,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		builder:  builder,
		search:   search,
		openings: openings,
		siteURL:  siteURL,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleInstructions)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /dji", s.instrument("dji", s.handleDJI))
	mux.HandleFunc("GET /dji/{date}", s.instrument("dji", s.handleDJI))
	mux.HandleFunc("GET /atom/{coords}", s.instrument("atom", s.handleAtom))
	mux.HandleFunc("GET /atom/{coords}/{date}", s.instrument("atom", s.handleAtom))
	mux.HandleFunc("GET /{coords}", s.instrument("csv", s.handleCSV))
	mux.HandleFunc("GET /{coords}/{date}", s.instrument("csv", s.handleCSV))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// instrument records the handling duration of a route.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// --- handlers ---

func (s *Server) handleInstructions(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, instructions)
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	target, date, ok := s.parseRequest(w, r)
	if !ok {
		return
	}

	point, _, err := s.search.Nearest(r.Context(), target, date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	fmt.Fprintf(w, "%v,%v", point.Lat, point.Lon)
}

func (s *Server) handleAtom(w http.ResponseWriter, r *http.Request) {
	target, _, ok := s.parseRequest(w, r)
	if !ok {
		return
	}

	var date *time.Time
	if d := r.PathValue("date"); d != "" {
		parsed, err := parseDate(d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		date = &parsed
	}

	entries, latest, err := s.builder.Build(r.Context(), target, date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.FeedEntries.Observe(float64(len(entries)))

	doc, err := feed.RenderAtom(target, entries, latest, s.siteURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml")
	fmt.Fprint(w, doc)
}

func (s *Server) handleDJI(w http.ResponseWriter, r *http.Request) {
	date := midnight(s.clock.Now().UTC())
	if d := r.PathValue("date"); d != "" {
		parsed, err := parseDate(d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		date = parsed
	}

	opening, err := s.openings.Opening(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	fmt.Fprint(w, opening.Raw)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// --- request parsing and error mapping ---

// parseRequest extracts the coordinate and optional date path values. On
// failure it writes the error response and returns ok=false. When no date is
// present the server's current UTC date is used.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (domain.Coordinate, time.Time, bool) {
	target, err := parseCoords(r.PathValue("coords"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return domain.Coordinate{}, time.Time{}, false
	}

	date := midnight(s.clock.Now().UTC())
	if d := r.PathValue("date"); d != "" {
		date, err = parseDate(d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return domain.Coordinate{}, time.Time{}, false
		}
	}
	return target, date, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrDataUnavailable):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseCoords(s string) (domain.Coordinate, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("%w: want LAT,LON, got %q", domain.ErrInvalidCoordinate, s)
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: bad latitude %q", domain.ErrInvalidCoordinate, latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: bad longitude %q", domain.ErrInvalidCoordinate, lonStr)
	}

	c := domain.Coordinate{Lat: lat, Lon: lon}
	return c, c.Validate()
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/metar"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportDecoder decodes a single report on demand.
type ReportDecoder interface {
	Decode(ctx context.Context, report domain.RawReport) (*metar.Observation, error)
}

// Server exposes health, readiness, metrics, and on-demand decode endpoints.
type Server struct {
	httpServer *http.Server
	decoder    ReportDecoder
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /decode routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, decoder ReportDecoder, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		decoder: decoder,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /decode", s.handleDecode)

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

type decodeResponse struct {
	Summary string               `json:"summary"`
	Report  domain.WeatherReport `json:"report"`
}

type errorResponse struct {
	Error string `json:"error"`
	Group string `json:"group,omitempty"`
}

// handleDecode decodes the report in the "code" query parameter. The
// optional "month" and "year" parameters pin the observation date.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report := domain.RawReport{Code: q.Get("code"), ReceivedAt: time.Now()}
	if report.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing code parameter"})
		return
	}

	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "month must be 1-12"})
			return
		}
		report.Month = time.Month(m)
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid year"})
			return
		}
		report.Year = y
	}

	obs, err := s.decoder.Decode(r.Context(), report)
	if err != nil {
		resp := errorResponse{Error: err.Error()}
		var perr *metar.ParserError
		if errors.As(err, &perr) {
			resp.Group = perr.Group
		}
		s.logger.Debug("decode request rejected", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	writeJSON(w, http.StatusOK, decodeResponse{
		Summary: obs.String(),
		Report:  domain.BuildWeatherReport(obs),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

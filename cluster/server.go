package cluster

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sugawarayuuta/sonnet"

	"github.com/pinkhop/matrixprofile-go"
)

// maxRequestBytes bounds the size of a join request body.
const maxRequestBytes = 256 << 20

// Server is an HTTP join worker. It computes exact joins with
// matrixprofile.LocalJoin.
type Server struct {
	engine matrixprofile.JoinEngine
	logger *slog.Logger
	router *mux.Router
}

// NewServer returns a join worker that logs to logger. If logger is nil,
// logging is disabled.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		engine: matrixprofile.LocalJoin,
		logger: logger,
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/api/v1/join", s.handleJoin).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router = router

	return s
}

// Handler returns the worker's HTTP routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("read request: %w", err))
		return
	}

	var req JoinRequest
	if err := sonnet.Unmarshal(body, &req); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	seriesA := decodeValues(req.SeriesA, math.NaN())
	seriesB := decodeValues(req.SeriesB, math.NaN())

	began := time.Now()
	profile, err := s.engine.Join(r.Context(), seriesA, req.M, seriesB, req.IgnoreTrivial)
	elapsed := time.Since(began)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, matrixprofile.ErrInvalidWindowSize) || errors.Is(err, matrixprofile.ErrInvalidShape) {
			status = http.StatusBadRequest
		}
		s.fail(w, status, err)
		return
	}
	joinDuration.Observe(elapsed.Seconds())
	joinSubsequences.Add(float64(profile.Len()))

	out, err := sonnet.Marshal(newJoinResponse(profile))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, fmt.Errorf("encode response: %w", err))
		return
	}

	joinRequests.WithLabelValues(outcomeOK).Inc()
	s.logger.Debug("join complete",
		"m", req.M,
		"len_a", len(seriesA),
		"len_b", len(seriesB),
		"ignore_trivial", req.IgnoreTrivial,
		"elapsed", elapsed,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	outcome := outcomeError
	if status < http.StatusInternalServerError {
		outcome = outcomeBadRequest
	}
	joinRequests.WithLabelValues(outcome).Inc()
	s.logger.Warn("join failed", "status", status, "error", err)
	http.Error(w, err.Error(), status)
}

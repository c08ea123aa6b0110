package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"swarm_robustness/pkg/graph"
	"swarm_robustness/pkg/robustness"
)

var validate = validator.New()

// MetricsSource returns the robustness metrics of one snapshot.
// Metrics must return once ctx is done. *temporal.Engine satisfies it.
type MetricsSource interface {
	Metrics(ctx context.Context, ts uint32) (robustness.Metrics, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	source MetricsSource
	stats  StatsResponse
	logger *zap.Logger
}

// NewHandlers creates handlers over the given metrics source. logger may be nil.
func NewHandlers(source MetricsSource, stats StatsResponse, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		source: source,
		stats:  stats,
		logger: logger,
	}
}

// StatsFromTopology summarises a topology for GET /api/v1/stats.
func StatsFromTopology(topo *graph.Topology) StatsResponse {
	s := StatsResponse{
		NumNodes:          topo.NumNodes,
		NumSnapshots:      len(topo.Snapshots),
		ConnectionRangeKm: topo.ConnectionRange,
	}
	if n := len(topo.Snapshots); n > 0 {
		s.FirstTimestamp = topo.Snapshots[0].Timestamp
		s.LastTimestamp = topo.Snapshots[n-1].Timestamp
	}
	for _, snap := range topo.Snapshots {
		c := len(graph.ComponentSizes(snap.Graph))
		if c == 1 {
			s.ConnectedSnapshots++
		}
		s.MaxComponents = max(s.MaxComponents, c)
	}
	return s
}

// HandleSnapshotMetrics handles GET /api/v1/snapshots/{t}/metrics.
func (h *Handlers) HandleSnapshotMetrics(w http.ResponseWriter, r *http.Request) {
	ts, err := strconv.ParseUint(r.PathValue("t"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_timestamp", "t")
		return
	}

	m, err := h.source.Metrics(r.Context(), uint32(ts))
	if err != nil {
		h.writeMetricsError(w, err, uint32(ts))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// HandleBatch handles POST /api/v1/metrics/batch.
func (h *Handlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8192)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "timestamps")
		return
	}

	resp := BatchResponse{Metrics: make([]robustness.Metrics, 0, len(req.Timestamps))}
	for _, ts := range req.Timestamps {
		m, err := h.source.Metrics(r.Context(), ts)
		if err != nil {
			h.writeMetricsError(w, err, ts)
			return
		}
		resp.Metrics = append(resp.Metrics, m)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func (h *Handlers) writeMetricsError(w http.ResponseWriter, err error, ts uint32) {
	switch {
	case errors.Is(err, graph.ErrSnapshotNotFound):
		writeErrorAt(w, http.StatusNotFound, "snapshot_not_found", ts)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeErrorAt(w, http.StatusServiceUnavailable, "request_timeout", ts)
	default:
		h.logger.Error("metrics evaluation failed", zap.Uint32("timestamp", ts), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}

func writeErrorAt(w http.ResponseWriter, status int, code string, ts uint32) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Timestamp: &ts})
}

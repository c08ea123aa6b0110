package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swarm_robustness/pkg/graph"
	"swarm_robustness/pkg/robustness"
)

// mockSource implements MetricsSource for testing.
type mockSource struct {
	metrics map[uint32]robustness.Metrics
	err     error
	block   chan struct{} // if non-nil, Metrics waits for it to close or ctx to end
}

func (m *mockSource) Metrics(ctx context.Context, ts uint32) (robustness.Metrics, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return robustness.Metrics{}, ctx.Err()
		}
	}
	if m.err != nil {
		return robustness.Metrics{}, m.err
	}
	r, ok := m.metrics[ts]
	if !ok {
		return robustness.Metrics{}, fmt.Errorf("timestamp %d: %w", ts, graph.ErrSnapshotNotFound)
	}
	return r, nil
}

func newMockSource() *mockSource {
	return &mockSource{metrics: map[uint32]robustness.Metrics{
		0: {
			Timestamp:      0,
			FlowRobustness: 1,
			RedundancyAvg:  1,
			DisparityAvg:   0,
			Modularity:     0,
			RoutingCost:    20,
			Criticality:    2,
			Efficiency:     0.72,
		},
		12: {
			Timestamp:      12,
			FlowRobustness: 0,
			RedundancyAvg:  math.NaN(),
			DisparityAvg:   math.NaN(),
			Modularity:     math.NaN(),
		},
	}}
}

func TestHandleSnapshotMetrics_Success(t *testing.T) {
	h := NewHandlers(newMockSource(), StatsResponse{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/snapshots/0/metrics", nil)
	req.SetPathValue("t", "0")
	w := httptest.NewRecorder()

	h.HandleSnapshotMetrics(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	var resp robustness.Metrics
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RoutingCost != 20 {
		t.Errorf("RoutingCost = %d, want 20", resp.RoutingCost)
	}
	if resp.Criticality != 2 {
		t.Errorf("Criticality = %d, want 2", resp.Criticality)
	}
}

func TestHandleSnapshotMetrics_NaNAsNull(t *testing.T) {
	h := NewHandlers(newMockSource(), StatsResponse{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/snapshots/12/metrics", nil)
	req.SetPathValue("t", "12")
	w := httptest.NewRecorder()

	h.HandleSnapshotMetrics(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"modularity":null`) {
		t.Errorf("body %s: want modularity null", w.Body.String())
	}
}

func TestHandleSnapshotMetrics_InvalidTimestamp(t *testing.T) {
	h := NewHandlers(newMockSource(), StatsResponse{}, nil)

	for _, raw := range []string{"abc", "-1", "4294967296"} {
		req := httptest.NewRequest("GET", "/api/v1/snapshots/x/metrics", nil)
		req.SetPathValue("t", raw)
		w := httptest.NewRecorder()

		h.HandleSnapshotMetrics(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("t=%q: status = %d, want 400", raw, w.Code)
		}
	}
}

func TestHandleSnapshotMetrics_NotFound(t *testing.T) {
	h := NewHandlers(newMockSource(), StatsResponse{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/snapshots/5/metrics", nil)
	req.SetPathValue("t", "5")
	w := httptest.NewRecorder()

	h.HandleSnapshotMetrics(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "snapshot_not_found" || resp.Timestamp == nil || *resp.Timestamp != 5 {
		t.Errorf("error response = %+v", resp)
	}
}

func TestHandleSnapshotMetrics_Timeout(t *testing.T) {
	src := newMockSource()
	src.block = make(chan struct{})
	defer close(src.block)
	h := NewHandlers(src, StatsResponse{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest("GET", "/api/v1/snapshots/0/metrics", nil).WithContext(ctx)
	req.SetPathValue("t", "0")
	w := httptest.NewRecorder()

	h.HandleSnapshotMetrics(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHandleSnapshotMetrics_InternalError(t *testing.T) {
	src := newMockSource()
	src.err = errors.New("boom")
	h := NewHandlers(src, StatsResponse{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/snapshots/0/metrics", nil)
	req.SetPathValue("t", "0")
	w := httptest.NewRecorder()

	h.HandleSnapshotMetrics(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestHandleBatch(t *testing.T) {
	h := NewHandlers(newMockSource(), StatsResponse{}, nil)

	req := httptest.NewRequest("POST", "/api/v1/metrics/batch", strings.NewReader(`{"timestamps":[12,0]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleBatch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}
	var resp BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Metrics) != 2 || resp.Metrics[0].Timestamp != 12 || resp.Metrics[1].Timestamp != 0 {
		t.Errorf("batch = %+v, want timestamps [12 0]", resp.Metrics)
	}
}

func TestHandleBatch_BadRequests(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        int
	}{
		{"missing content type", `{"timestamps":[0]}`, "", http.StatusBadRequest},
		{"invalid json", "not json", "application/json", http.StatusBadRequest},
		{"empty list", `{"timestamps":[]}`, "application/json", http.StatusBadRequest},
		{"missing list", `{}`, "application/json", http.StatusBadRequest},
		{"unknown timestamp", `{"timestamps":[0,5]}`, "application/json", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(newMockSource(), StatsResponse{}, nil)
			req := httptest.NewRequest("POST", "/api/v1/metrics/batch", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			h.HandleBatch(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHandlers(newMockSource(), StatsResponse{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want 'ok'", resp.Status)
	}
}

func TestHandleStats(t *testing.T) {
	topo := &graph.Topology{NumNodes: 49, ConnectionRange: 30}
	topo.Add(0, graph.FromEdges(49, nil))
	chain := make([]graph.Edge, 0, 48)
	for i := uint32(0); i < 48; i++ {
		chain = append(chain, graph.Edge{U: i, V: i + 1})
	}
	topo.Add(12, graph.FromEdges(49, chain))
	h := NewHandlers(newMockSource(), StatsFromTopology(topo), nil)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()

	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp StatsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NumNodes != 49 {
		t.Errorf("NumNodes = %d, want 49", resp.NumNodes)
	}
	if resp.NumSnapshots != 2 || resp.LastTimestamp != 12 {
		t.Errorf("stats = %+v, want 2 snapshots ending at 12", resp)
	}
	if resp.ConnectionRangeKm != 30 {
		t.Errorf("ConnectionRangeKm = %f, want 30", resp.ConnectionRangeKm)
	}
	if resp.ConnectedSnapshots != 1 {
		t.Errorf("ConnectedSnapshots = %d, want 1", resp.ConnectedSnapshots)
	}
	if resp.MaxComponents != 49 {
		t.Errorf("MaxComponents = %d, want 49", resp.MaxComponents)
	}
}

package api

import "swarm_robustness/pkg/robustness"

// BatchRequest is the JSON body for POST /api/v1/metrics/batch.
type BatchRequest struct {
	Timestamps []uint32 `json:"timestamps" validate:"required,min=1,max=256"`
}

// BatchResponse is the JSON response for a batch metrics query, in request
// order.
type BatchResponse struct {
	Metrics []robustness.Metrics `json:"metrics"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error     string  `json:"error"`
	Field     string  `json:"field,omitempty"`
	Timestamp *uint32 `json:"timestamp,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes           uint32  `json:"num_nodes"`
	NumSnapshots       int     `json:"num_snapshots"`
	FirstTimestamp     uint32  `json:"first_timestamp"`
	LastTimestamp      uint32  `json:"last_timestamp"`
	ConnectionRangeKm  float64 `json:"connection_range_km"`
	ConnectedSnapshots int     `json:"connected_snapshots"` // snapshots with a single component
	MaxComponents      int     `json:"max_components"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

package api

import (
	"github.com/p-blackswan/mission-control/internal/activity"
	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/health"
	"github.com/p-blackswan/mission-control/internal/memories"
	"github.com/p-blackswan/mission-control/internal/models"
)

// BoardResponse is the derived view of one board.
type BoardResponse[T any, S ~string] struct {
	Kind      string         `json:"kind"`
	Filtering bool           `json:"filtering"`
	Criteria  board.Criteria `json:"criteria"`
	board.View[T, S]
}

// RecordResponse answers create, edit and toggle requests. Applied is
// false when the id was unknown; nothing changed in that case.
type RecordResponse[T any] struct {
	Applied bool   `json:"applied"`
	Record  T      `json:"record,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// MutationResponse answers delete and drop requests.
type MutationResponse struct {
	Applied bool   `json:"applied"`
	Warning string `json:"warning,omitempty"`
}

// BulkRequest applies one action to many records.
type BulkRequest struct {
	Action   string   `json:"action"` // status, priority or delete
	IDs      []string `json:"ids"`
	Status   string   `json:"status,omitempty"`
	Priority string   `json:"priority,omitempty"`
}

// BulkResponse reports how many records a bulk action touched.
type BulkResponse struct {
	Action   string `json:"action"`
	Affected int    `json:"affected"`
	Warning  string `json:"warning,omitempty"`
}

// MemoryListResponse is the memory view.
type MemoryListResponse struct {
	Memories  []*models.MemoryEntry `json:"memories"`
	Stats     memories.Stats        `json:"stats"`
	Filtering bool                  `json:"filtering"`
}

// ActivityListResponse is the activity view.
type ActivityListResponse struct {
	Activity []*models.Activity `json:"activity"`
	Summary  activity.Summary   `json:"summary"`
}

// ClearResponse answers a confirmed activity clear.
type ClearResponse struct {
	Removed int    `json:"removed"`
	Warning string `json:"warning,omitempty"`
}

// HealthDetailResponse is returned by GET /api/v1/health.
type HealthDetailResponse struct {
	health.Report
	Uptime  string         `json:"uptime"`
	Version string         `json:"version"`
	Records map[string]int `json:"records"`
}

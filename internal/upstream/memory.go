package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/p-blackswan/mission-control/internal/models"
)

type memoryList struct {
	Memories []*models.MemoryEntry `json:"memories"`
}

// CreateMemoryRequest is the body of POST /api/memory.
type CreateMemoryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type createMemoryResponse struct {
	File string `json:"file"`
}

// ListMemories fetches every memory entry. Entries without an id take
// their file path as id; entries with neither are dropped.
func (c *Client) ListMemories(ctx context.Context) ([]*models.MemoryEntry, error) {
	var out memoryList
	if err := c.get(ctx, "/api/memory", &out); err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	entries := make([]*models.MemoryEntry, 0, len(out.Memories))
	for _, m := range out.Memories {
		if m == nil {
			continue
		}
		if m.ID == "" {
			m.ID = m.File
		}
		if m.ID == "" {
			continue
		}
		if m.WordCount == 0 {
			m.WordCount = models.WordCount(m.Content)
		}
		if m.Category == "" {
			m.Category = models.DefaultMemoryCategory
		}
		if m.Importance == "" {
			m.Importance = models.PriorityMedium
		}
		if m.UpdatedAt < m.CreatedAt {
			m.UpdatedAt = m.CreatedAt
		}
		entries = append(entries, m)
	}
	return entries, nil
}

// CreateMemory stores a new memory upstream and returns the file it was
// written to. It is not retried.
func (c *Client) CreateMemory(ctx context.Context, req CreateMemoryRequest) (string, error) {
	var out createMemoryResponse
	if err := c.call(ctx, http.MethodPost, "/api/memory", req, &out); err != nil {
		return "", fmt.Errorf("create memory: %w", err)
	}
	return out.File, nil
}

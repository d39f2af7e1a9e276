package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/p-blackswan/mission-control/internal/board"
	perrors "github.com/p-blackswan/mission-control/internal/errors"
)

// ExportKinds lists the collections Export accepts.
var ExportKinds = []string{"activity", "tasks", "content", "calendar", "memories"}

type collectionDocument[T any] struct {
	Kind       string `json:"kind"`
	ExportedAt int64  `json:"exportedAt"`
	Count      int    `json:"count"`
	Records    []T    `json:"records"`
}

// Export returns a dated file name and an indented JSON dump of the
// collection named kind.
func (a *App) Export(kind string, now time.Time) (string, []byte, error) {
	switch kind {
	case "activity":
		return a.Activity.Export(board.Criteria{}, now)
	case "tasks":
		return exportStore(a.Tasks.Store(), now)
	case "content":
		return exportStore(a.Content.Store(), now)
	case "calendar":
		return exportStore(a.Calendar.Store(), now)
	case "memories":
		return exportStore(a.Memories.Store(), now)
	}
	return "", nil, fmt.Errorf("export %q: %w", kind, perrors.ErrInvalidInput)
}

func exportStore[T board.Entity[T]](s *board.Store[T], now time.Time) (string, []byte, error) {
	items := s.Snapshot()
	doc := collectionDocument[T]{Kind: s.Kind(), ExportedAt: now.UnixMilli(), Count: len(items), Records: items}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode %s export: %w", s.Kind(), err)
	}
	return fmt.Sprintf("mission-control-%s-%s.json", s.Kind(), now.Format("2006-01-02")), raw, nil
}

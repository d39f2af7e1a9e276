// Package activity keeps the bounded, newest-first log of board changes and
// exports it as a dated JSON document.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/mission-control/internal/board"
	perrors "github.com/p-blackswan/mission-control/internal/errors"
	"github.com/p-blackswan/mission-control/internal/models"
)

// DefaultRetention is how many entries are kept when none is configured.
const DefaultRetention = 500

// Log records activity entries into a capped store.
type Log struct {
	store  *board.Store[*models.Activity]
	ids    board.IDSource
	logger zerolog.Logger
}

// NewStore builds the backing store for a log keeping at most retention
// entries, newest first.
func NewStore(retention int, logger zerolog.Logger, opts ...board.StoreOption[*models.Activity]) *board.Store[*models.Activity] {
	if retention <= 0 {
		retention = DefaultRetention
	}
	opts = append([]board.StoreOption[*models.Activity]{
		board.WithPrepend[*models.Activity](),
		board.WithCapacity[*models.Activity](retention),
	}, opts...)
	return board.NewStore[*models.Activity]("activity", logger, opts...)
}

// New wraps store.
func New(store *board.Store[*models.Activity], logger zerolog.Logger) *Log {
	return &Log{
		store:  store,
		ids:    board.NewULIDSource(),
		logger: logger.With().Str("component", "activity").Logger(),
	}
}

// Store returns the backing store.
func (l *Log) Store() *board.Store[*models.Activity] { return l.store }

// Load restores persisted entries.
func (l *Log) Load(ctx context.Context) error { return l.store.Load(ctx) }

// Record appends a. Failures are logged and never reach the caller, so a
// broken log cannot block the change it describes.
func (l *Log) Record(ctx context.Context, a *models.Activity) {
	now := time.UnixMilli(l.store.Now())
	entry := a.Clone()
	entry.ID = l.ids(now)
	entry.CreatedAt = now.UnixMilli()
	entry.UpdatedAt = entry.CreatedAt
	if err := l.store.Insert(ctx, entry); err != nil {
		l.logger.Warn().Err(err).Str("action", string(a.Action)).Str("kind", a.Kind).Msg("activity not recorded")
	}
}

// List returns the entries matching c, newest first.
func (l *Log) List(c board.Criteria, now time.Time) []*models.Activity {
	return board.Filter(l.store.Snapshot(), c, now)
}

// Summary counts entries.
type Summary struct {
	Total    int            `json:"total"`
	ByAction map[string]int `json:"byAction"`
	ByKind   map[string]int `json:"byKind"`
	ByActor  map[string]int `json:"byActor"`
}

// Summarize counts items by action, kind and actor.
func Summarize(items []*models.Activity) Summary {
	return Summary{
		Total:    len(items),
		ByAction: board.CountBy(items, func(f models.Facets) string { return f.Action }),
		ByKind:   board.CountBy(items, func(f models.Facets) string { return f.Category }),
		ByActor:  board.CountBy(items, func(f models.Facets) string { return f.Assignee }),
	}
}

// Clear removes every entry. It refuses unless confirmed is true.
func (l *Log) Clear(ctx context.Context, confirmed bool) (int, error) {
	if !confirmed {
		return 0, fmt.Errorf("clear activity: %w", perrors.ErrConfirmationRequired)
	}
	n := l.store.Len()
	if err := l.store.Reset(ctx, nil); err != nil {
		return n, err
	}
	l.logger.Info().Int("removed", n).Msg("activity cleared")
	return n, nil
}

// Document is the exported form of the log.
type Document struct {
	ExportedAt int64              `json:"exportedAt"`
	Count      int                `json:"count"`
	Activity   []*models.Activity `json:"activity"`
}

// Filename is the export file name for the day of now.
func Filename(now time.Time) string {
	return fmt.Sprintf("mission-control-activity-%s.json", now.Format("2006-01-02"))
}

// Export returns the dated file name and the indented JSON document for
// the entries matching c.
func (l *Log) Export(c board.Criteria, now time.Time) (string, []byte, error) {
	items := l.List(c, now)
	doc := Document{ExportedAt: now.UnixMilli(), Count: len(items), Activity: items}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode export: %w", err)
	}
	return Filename(now), raw, nil
}

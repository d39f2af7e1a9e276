// Package memories serves the memory view: a list of notes loaded from the
// upstream memory service, mirrored locally, sorted pinned-first.
package memories

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/models"
	"github.com/p-blackswan/mission-control/internal/notify"
	"github.com/p-blackswan/mission-control/internal/upstream"
)

// Creator stores new memories upstream.
type Creator interface {
	Enabled() bool
	CreateMemory(ctx context.Context, req upstream.CreateMemoryRequest) (string, error)
}

// Service handles memory intents.
type Service struct {
	*board.Editor[*models.MemoryEntry]
	upstream Creator
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewService wraps store. upstream may be nil.
func NewService(store *board.Store[*models.MemoryEntry], upstream Creator, notifier notify.Notifier, logger zerolog.Logger, opts ...board.EditorOption) *Service {
	return &Service{
		Editor:   board.NewEditor(store, logger, opts...),
		upstream: upstream,
		notifier: notifier,
		logger:   logger.With().Str("component", "memories").Logger(),
	}
}

// Load loads the store.
func (s *Service) Load(ctx context.Context) error { return s.Store().Load(ctx) }

// List returns the entries matching c, pinned first then most recent.
func (s *Service) List(c board.Criteria, now time.Time) []*models.MemoryEntry {
	return board.SortRecent(board.Filter(s.Store().Snapshot(), c, now))
}

// Create inserts the memory locally and then writes it upstream. An
// upstream failure leaves the entry local-only and raises a notification;
// it is not returned as an error.
func (s *Service) Create(ctx context.Context, d models.MemoryDraft) (*models.MemoryEntry, error) {
	entry, err := s.HandleCreate(ctx, d)
	if entry == nil {
		return nil, err
	}
	if s.upstream == nil || !s.upstream.Enabled() {
		return entry, err
	}

	file, upErr := s.upstream.CreateMemory(ctx, upstream.CreateMemoryRequest{
		Title:   entry.Title,
		Content: entry.Content,
		Type:    entry.Category,
	})
	if upErr != nil {
		s.logger.Warn().Err(upErr).Str("id", entry.ID).Msg("memory kept local only")
		s.notify(ctx, notify.Warn("memories", "Saved locally only, memory service did not accept it", upErr))
		return entry, err
	}

	updated, ok, setErr := s.HandleAnnotate(ctx, entry.ID, func(m *models.MemoryEntry) { m.File = file })
	if !ok {
		return entry, errors.Join(err, setErr)
	}
	return updated, errors.Join(err, setErr)
}

// Edit replaces the editable fields of the entry with id.
func (s *Service) Edit(ctx context.Context, id string, d models.MemoryDraft) (*models.MemoryEntry, bool, error) {
	return s.HandleEdit(ctx, id, d)
}

// Delete removes the entry with id.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.HandleDelete(ctx, id)
}

// TogglePin flips the pinned flag of the entry with id.
func (s *Service) TogglePin(ctx context.Context, id string) (*models.MemoryEntry, bool, error) {
	return s.HandleToggle(ctx, id, models.ActionPin, func(m *models.MemoryEntry) { m.Pinned = !m.Pinned })
}

func (s *Service) notify(ctx context.Context, n notify.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}

// Stats summarizes a memory list.
type Stats struct {
	Total      int            `json:"total"`
	Pinned     int            `json:"pinned"`
	ByCategory map[string]int `json:"byCategory"`
	TotalWords int            `json:"totalWords"`
}

// Summarize computes Stats for entries.
func Summarize(entries []*models.MemoryEntry) Stats {
	st := Stats{
		Total:      len(entries),
		ByCategory: board.CountBy(entries, func(f models.Facets) string { return f.Category }),
	}
	for _, m := range entries {
		if m.Pinned {
			st.Pinned++
		}
		st.TotalWords += m.WordCount
	}
	return st
}

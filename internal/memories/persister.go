package memories

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/models"
	"github.com/p-blackswan/mission-control/internal/notify"
)

// Lister fetches memory entries from the upstream service.
type Lister interface {
	Enabled() bool
	ListMemories(ctx context.Context) ([]*models.MemoryEntry, error)
}

// Persister loads memories from upstream and mirrors them locally. When
// upstream is unreachable it serves the local mirror and notifies instead
// of failing.
type Persister struct {
	upstream Lister
	mirror   board.Persister[*models.MemoryEntry]
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewPersister combines an upstream lister with a local mirror.
func NewPersister(upstream Lister, mirror board.Persister[*models.MemoryEntry], notifier notify.Notifier, logger zerolog.Logger) *Persister {
	return &Persister{
		upstream: upstream,
		mirror:   mirror,
		notifier: notifier,
		logger:   logger.With().Str("component", "memories").Logger(),
	}
}

func (p *Persister) Load(ctx context.Context) ([]*models.MemoryEntry, error) {
	if p.upstream == nil || !p.upstream.Enabled() {
		return p.mirror.Load(ctx)
	}

	entries, err := p.upstream.ListMemories(ctx)
	if err == nil {
		local, mirrorErr := p.mirror.Load(ctx)
		if mirrorErr != nil {
			p.logger.Warn().Err(mirrorErr).Msg("could not read local mirror")
		}
		entries = merge(entries, local)
		if saveErr := p.mirror.Save(ctx, entries); saveErr != nil {
			p.logger.Warn().Err(saveErr).Msg("could not refresh local mirror")
		}
		return entries, nil
	}

	p.logger.Warn().Err(err).Msg("upstream unavailable, using local mirror")
	if p.notifier != nil {
		p.notifier.Notify(ctx, notify.Warn("memories", "Memory service unavailable, showing local copy", err))
	}
	return p.mirror.Load(ctx)
}

// Save writes the local mirror only. Upstream has no bulk write.
func (p *Persister) Save(ctx context.Context, items []*models.MemoryEntry) error {
	return p.mirror.Save(ctx, items)
}

// merge combines the upstream list with the local mirror. A mirrored entry
// matching an upstream one by id or file keeps its id and pin, and its
// fields win when it was changed more recently. Entries that never reached
// upstream are kept after the upstream ones. Mirrored entries with a file
// upstream no longer lists are dropped.
func merge(remote, local []*models.MemoryEntry) []*models.MemoryEntry {
	byID := make(map[string]*models.MemoryEntry, len(local))
	byFile := make(map[string]*models.MemoryEntry, len(local))
	for _, m := range local {
		if m == nil {
			continue
		}
		byID[m.ID] = m
		if m.File != "" {
			byFile[m.File] = m
		}
	}

	used := make(map[string]bool, len(local))
	out := make([]*models.MemoryEntry, 0, len(remote)+len(local))
	for _, r := range remote {
		m, ok := byID[r.ID]
		if !ok && r.File != "" {
			m, ok = byFile[r.File]
		}
		if !ok || used[m.ID] {
			out = append(out, r)
			continue
		}
		used[m.ID] = true
		if m.UpdatedAt >= r.UpdatedAt {
			out = append(out, m)
			continue
		}
		r.ID = m.ID
		r.Pinned = m.Pinned
		out = append(out, r)
	}
	for _, m := range local {
		if m != nil && m.File == "" && !used[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

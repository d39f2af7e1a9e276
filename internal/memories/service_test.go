package memories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/mission-control/internal/board"
	perrors "github.com/p-blackswan/mission-control/internal/errors"
	"github.com/p-blackswan/mission-control/internal/models"
	"github.com/p-blackswan/mission-control/internal/notify"
	"github.com/p-blackswan/mission-control/internal/persist"
	"github.com/p-blackswan/mission-control/internal/upstream"
	"github.com/p-blackswan/mission-control/pkg/kvstore"
)

var now = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

type fakeUpstream struct {
	enabled   bool
	memories  []*models.MemoryEntry
	listErr   error
	createErr error
	created   []upstream.CreateMemoryRequest
}

func (f *fakeUpstream) Enabled() bool { return f.enabled }

func (f *fakeUpstream) ListMemories(context.Context) ([]*models.MemoryEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.memories, nil
}

func (f *fakeUpstream) CreateMemory(_ context.Context, req upstream.CreateMemoryRequest) (string, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	return "memory/" + req.Title + ".md", nil
}

type fixture struct {
	svc  *Service
	up   *fakeUpstream
	feed *notify.Feed
	kv   *kvstore.MemoryStore
}

func newFixture(t *testing.T, up *fakeUpstream, seedMirror []*models.MemoryEntry) *fixture {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	mirror := persist.NewJSON[*models.MemoryEntry](kv, "memories")
	if seedMirror != nil {
		require.NoError(t, mirror.Save(context.Background(), seedMirror))
	}
	feed := notify.NewFeed(10)
	store := board.NewStore[*models.MemoryEntry]("memories", zerolog.Nop(),
		board.WithPersister[*models.MemoryEntry](NewPersister(up, mirror, feed, zerolog.Nop())),
		board.WithClock[*models.MemoryEntry](func() time.Time { return now }),
	)
	svc := NewService(store, up, feed, zerolog.Nop())
	require.NoError(t, svc.Load(context.Background()))
	return &fixture{svc: svc, up: up, feed: feed, kv: kv}
}

func entry(id, title string, updated int64) *models.MemoryEntry {
	return &models.MemoryEntry{
		Record:     models.Record{ID: id, CreatedAt: updated, UpdatedAt: updated},
		Title:      title,
		Category:   "note",
		Importance: models.PriorityMedium,
	}
}

func TestLoad_FromUpstreamRefreshesMirror(t *testing.T) {
	stale := entry("old", "stale", 1)
	stale.File = "memory/stale.md"
	up := &fakeUpstream{enabled: true, memories: []*models.MemoryEntry{entry("m1", "Launch", 5)}}
	f := newFixture(t, up, []*models.MemoryEntry{stale})

	got := f.svc.List(board.Criteria{}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)

	mirrored, err := persist.NewJSON[*models.MemoryEntry](f.kv, "memories").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m1", mirrored[0].ID)
	assert.Zero(t, f.feed.Len())
}

func TestLoad_MergesLocalChangesIntoUpstreamList(t *testing.T) {
	edited := entry("m1", "Edited locally", 9)
	edited.Pinned = true
	pinnedOld := entry("ulid-2", "Pinned long ago", 2)
	pinnedOld.File = "memory/two.md"
	pinnedOld.Pinned = true
	offline := entry("ulid-3", "Never uploaded", 3)

	remoteTwo := entry("memory/two.md", "Rewritten upstream", 7)
	remoteTwo.File = "memory/two.md"
	up := &fakeUpstream{enabled: true, memories: []*models.MemoryEntry{entry("m1", "Original", 5), remoteTwo}}
	f := newFixture(t, up, []*models.MemoryEntry{edited, pinnedOld, offline})

	got := f.svc.Store().Snapshot()
	require.Len(t, got, 3)

	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "Edited locally", got[0].Title, "newer local edit wins")
	assert.True(t, got[0].Pinned)

	assert.Equal(t, "ulid-2", got[1].ID, "matched by file, keeps the local id")
	assert.Equal(t, "Rewritten upstream", got[1].Title, "newer upstream change wins")
	assert.True(t, got[1].Pinned, "pins are local")

	assert.Equal(t, "ulid-3", got[2].ID, "local-only entries survive a reload")

	mirrored, err := persist.NewJSON[*models.MemoryEntry](f.kv, "memories").Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, mirrored, 3)
}

func TestLoad_FallsBackToMirror(t *testing.T) {
	up := &fakeUpstream{enabled: true, listErr: perrors.NewAPIError("upstream", 502, "bad gateway")}
	f := newFixture(t, up, []*models.MemoryEntry{entry("cached", "From mirror", 1)})

	got := f.svc.List(board.Criteria{}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "cached", got[0].ID)

	notices := f.feed.Recent(0, 0)
	require.Len(t, notices, 1)
	assert.Equal(t, notify.LevelWarning, notices[0].Level)
}

func TestLoad_DisabledUpstreamUsesMirror(t *testing.T) {
	f := newFixture(t, &fakeUpstream{}, []*models.MemoryEntry{entry("local", "Local", 1)})
	assert.Len(t, f.svc.List(board.Criteria{}, now), 1)
}

func TestCreate_WritesUpstreamAndRecordsFile(t *testing.T) {
	f := newFixture(t, &fakeUpstream{enabled: true}, nil)

	m, err := f.svc.Create(context.Background(), models.MemoryDraft{Title: "Idea", Content: "one two three"})
	require.NoError(t, err)

	assert.Equal(t, "memory/Idea.md", m.File)
	assert.Equal(t, m.CreatedAt, m.UpdatedAt, "recording the file is not an edit")
	stored, _ := f.svc.Store().Get(m.ID)
	assert.Equal(t, "memory/Idea.md", stored.File)
	assert.Equal(t, m.CreatedAt, stored.UpdatedAt)
	assert.Equal(t, 3, m.WordCount)
	assert.Equal(t, "note", m.Category)
	require.Len(t, f.up.created, 1)
	assert.Equal(t, upstream.CreateMemoryRequest{Title: "Idea", Content: "one two three", Type: "note"}, f.up.created[0])
}

func TestCreate_UpstreamFailureKeepsLocal(t *testing.T) {
	f := newFixture(t, &fakeUpstream{enabled: true, createErr: errors.New("500")}, nil)

	m, err := f.svc.Create(context.Background(), models.MemoryDraft{Title: "Offline idea", Content: "x"})
	require.NoError(t, err)
	assert.Empty(t, m.File)
	assert.Equal(t, 1, f.svc.Store().Len())
	assert.Equal(t, 1, f.feed.Len())
}

func TestCreate_EmptyTitleRejected(t *testing.T) {
	f := newFixture(t, &fakeUpstream{enabled: true}, nil)

	_, err := f.svc.Create(context.Background(), models.MemoryDraft{Title: "  ", Content: "body"})
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)
	assert.Zero(t, f.svc.Store().Len())
	assert.Empty(t, f.up.created)
}

func TestTogglePinSortsFirst(t *testing.T) {
	up := &fakeUpstream{enabled: true, memories: []*models.MemoryEntry{entry("a", "older", 1), entry("b", "newer", 2)}}
	f := newFixture(t, up, nil)
	assert.Equal(t, "b", f.svc.List(board.Criteria{}, now)[0].ID)

	m, ok, err := f.svc.TogglePin(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, m.Pinned)
	assert.Equal(t, "a", f.svc.List(board.Criteria{}, now)[0].ID)

	_, ok, err = f.svc.TogglePin(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEditAndDeleteStayLocal(t *testing.T) {
	up := &fakeUpstream{enabled: true, memories: []*models.MemoryEntry{entry("a", "Draft", 1)}}
	f := newFixture(t, up, nil)

	m, ok, err := f.svc.Edit(context.Background(), "a", models.MemoryDraft{Title: "Final", Content: "four words right here", Category: "project"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, m.WordCount)
	assert.Equal(t, "project", m.Category)

	deleted, err := f.svc.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, f.up.created)

	mirrored, err := persist.NewJSON[*models.MemoryEntry](f.kv, "memories").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mirrored)
}

func TestSummarize(t *testing.T) {
	a := entry("a", "A", 1)
	a.Pinned = true
	a.WordCount = 10
	b := entry("b", "B", 2)
	b.Category = "project"
	b.WordCount = 5

	st := Summarize([]*models.MemoryEntry{a, b})
	assert.Equal(t, Stats{Total: 2, Pinned: 1, ByCategory: map[string]int{"note": 1, "project": 1}, TotalWords: 15}, st)
}

package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/mission-control/internal/errors"
	"github.com/p-blackswan/mission-control/internal/models"
)

// ActivityRecorder receives one entry per user-visible change.
type ActivityRecorder interface {
	Record(ctx context.Context, a *models.Activity)
}

// EditorOption configures an Editor or Controller.
type EditorOption func(*editorConfig)

type editorConfig struct {
	ids      IDSource
	activity ActivityRecorder
	memoSize int
}

// WithIDSource overrides the ULID id source.
func WithIDSource(ids IDSource) EditorOption {
	return func(c *editorConfig) { c.ids = ids }
}

// WithActivity records every change to a.
func WithActivity(a ActivityRecorder) EditorOption {
	return func(c *editorConfig) { c.activity = a }
}

// WithMemoSize sets how many derived views a Controller caches.
func WithMemoSize(n int) EditorOption {
	return func(c *editorConfig) { c.memoSize = n }
}

// Editor handles create, edit, delete and toggle intents for one kind.
// Intents are serialized so each one sees the result of the previous.
type Editor[T Entity[T]] struct {
	store     *Store[T]
	ids       IDSource
	activity  ActivityRecorder
	logger    zerolog.Logger
	normalize func(T)

	mu sync.Mutex
}

// NewEditor wraps store.
func NewEditor[T Entity[T]](store *Store[T], logger zerolog.Logger, opts ...EditorOption) *Editor[T] {
	cfg := buildConfig(opts)
	return &Editor[T]{
		store:    store,
		ids:      cfg.ids,
		activity: cfg.activity,
		logger:   logger.With().Str("component", "editor").Str("kind", store.Kind()).Logger(),
	}
}

func buildConfig(opts []EditorOption) editorConfig {
	cfg := editorConfig{memoSize: 64}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.ids == nil {
		cfg.ids = NewULIDSource()
	}
	return cfg
}

// Store returns the underlying store.
func (e *Editor[T]) Store() *Store[T] { return e.store }

// HandleCreate validates d and inserts a new record with a fresh id and
// createdAt == updatedAt == now. A persistence failure still returns the
// created record alongside an ErrPersist error.
func (e *Editor[T]) HandleCreate(ctx context.Context, d Draft[T]) (T, error) {
	var zero T
	if err := d.Validate(); err != nil {
		return zero, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.store.now()
	rec := d.New(e.ids(now))
	if e.normalize != nil {
		e.normalize(rec)
	}
	m := rec.Meta()
	m.CreatedAt = now.UnixMilli()
	m.UpdatedAt = m.CreatedAt

	err := e.store.Insert(ctx, rec)
	if err != nil && !errors.Is(err, ErrPersist) {
		return zero, err
	}
	e.record(ctx, models.ActionCreate, rec, "")
	out, _ := e.store.Get(m.ID)
	return out, err
}

// HandleEdit validates d and applies it to the record with id. An unknown
// id is not an error: it returns applied == false.
func (e *Editor[T]) HandleEdit(ctx context.Context, id string, d Draft[T]) (T, bool, error) {
	var zero T
	if err := d.Validate(); err != nil {
		return zero, false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.store.Update(ctx, id, func(t T) {
		d.Apply(t)
		if e.normalize != nil {
			e.normalize(t)
		}
	})
	if errors.Is(err, perrors.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil && !errors.Is(err, ErrPersist) {
		return zero, false, err
	}
	e.record(ctx, models.ActionUpdate, rec, "")
	return rec, true, err
}

// HandleToggle applies a single-field mutation such as pinning and records
// it under action.
func (e *Editor[T]) HandleToggle(ctx context.Context, id string, action models.Action, mutate func(T)) (T, bool, error) {
	var zero T
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.store.Update(ctx, id, mutate)
	if errors.Is(err, perrors.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil && !errors.Is(err, ErrPersist) {
		return zero, false, err
	}
	e.record(ctx, action, rec, "")
	return rec, true, err
}

// HandleAnnotate sets bookkeeping fields on the record with id without
// advancing updatedAt or logging activity.
func (e *Editor[T]) HandleAnnotate(ctx context.Context, id string, mutate func(T)) (T, bool, error) {
	var zero T
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.store.Annotate(ctx, id, mutate)
	if errors.Is(err, perrors.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil && !errors.Is(err, ErrPersist) {
		return zero, false, err
	}
	return rec, true, err
}

// HandleDelete permanently removes the record with id.
func (e *Editor[T]) HandleDelete(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.store.Get(id)
	if !ok {
		return false, nil
	}
	err := e.store.Remove(ctx, id)
	if errors.Is(err, perrors.ErrNotFound) {
		return false, nil
	}
	if err != nil && !errors.Is(err, ErrPersist) {
		return false, err
	}
	e.record(ctx, models.ActionDelete, rec, "")
	return true, err
}

func (e *Editor[T]) record(ctx context.Context, action models.Action, rec T, details string) {
	if e.activity == nil || isNil(rec) {
		return
	}
	a := &models.Activity{
		Action:   action,
		Kind:     e.store.Kind(),
		EntityID: rec.Meta().ID,
		Actor:    rec.Facets().Assignee,
		Details:  details,
	}
	if l, ok := any(rec).(labeled); ok {
		a.Title = l.Label()
	}
	e.activity.Record(ctx, a)
}

func (e *Editor[T]) recordBulk(ctx context.Context, n int, details string) {
	if e.activity == nil || n == 0 {
		return
	}
	e.activity.Record(ctx, &models.Activity{
		Action:  models.ActionBulk,
		Kind:    e.store.Kind(),
		Title:   fmt.Sprintf("%d %s", n, e.store.Kind()),
		Details: details,
	})
}

// Location is a position in a droppable column.
type Location struct {
	DroppableID string `json:"droppableId"`
	Index       int    `json:"index"`
}

// DropEvent is the outcome of a drag gesture. Destination is nil when the
// card was dropped outside any column. Indexes are positions in the column
// as rendered under Criteria.
type DropEvent struct {
	DraggableID string    `json:"draggableId"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination"`
	Criteria    Criteria  `json:"criteria"`
}

// Controller adds status moves and bulk operations to an Editor for a
// bucketed kind, and serves memoized derived views.
type Controller[T Bucketed[T, S], S ~string] struct {
	*Editor[T]
	kind Kind[S]
	memo *Memo[View[T, S]]
}

// NewController wraps store for kind. Created and edited records with no
// status get kind.Initial.
func NewController[T Bucketed[T, S], S ~string](kind Kind[S], store *Store[T], logger zerolog.Logger, opts ...EditorOption) *Controller[T, S] {
	cfg := buildConfig(opts)
	ed := &Editor[T]{
		store:    store,
		ids:      cfg.ids,
		activity: cfg.activity,
		logger:   logger.With().Str("component", "controller").Str("kind", kind.Name).Logger(),
	}
	ed.normalize = func(t T) {
		if !kind.Has(t.Bucket()) {
			t.SetBucket(kind.Initial)
		}
	}
	return &Controller[T, S]{
		Editor: ed,
		kind:   kind,
		memo:   NewMemo[View[T, S]](cfg.memoSize),
	}
}

// Kind returns the status descriptor.
func (c *Controller[T, S]) Kind() Kind[S] { return c.kind }

// Load loads the store and moves records with an unknown status into the
// initial column.
func (c *Controller[T, S]) Load(ctx context.Context) error {
	loadErr := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.store.Snapshot()
	fixed := 0
	for _, rec := range items {
		if !c.kind.Has(rec.Bucket()) {
			rec.SetBucket(c.kind.Initial)
			fixed++
		}
	}
	if fixed > 0 {
		c.logger.Warn().Int("count", fixed).Str("status", string(c.kind.Initial)).Msg("reset unknown statuses")
		if err := c.store.Reset(ctx, items); err != nil && loadErr == nil {
			return err
		}
	}
	return loadErr
}

// View derives the board for criteria at now. Results are shared between
// callers and must not be modified.
func (c *Controller[T, S]) View(criteria Criteria, now time.Time) View[T, S] {
	items, version := c.store.SnapshotVersion()
	return c.memo.Get(version, criteria, now, func() View[T, S] {
		v := Derive(items, c.kind, criteria, now)
		v.Version = version
		return v
	})
}

// HandleDragComplete applies a drop. Dropping outside a column, onto an
// unknown column or back onto the card's own slot does nothing. Otherwise
// the card takes the destination status, its updatedAt is bumped and it is
// placed at the destination index of that column. The index counts the
// column's visible cards under ev.Criteria with the moved card excluded,
// and is clamped to the column.
func (c *Controller[T, S]) HandleDragComplete(ctx context.Context, ev DropEvent) (bool, error) {
	if ev.Destination == nil || ev.DraggableID == "" {
		return false, nil
	}
	dest := S(ev.Destination.DroppableID)
	if !c.kind.Has(dest) {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.store.Snapshot()
	var (
		cur   T
		found bool
	)
	for _, rec := range items {
		if rec.Meta().ID == ev.DraggableID {
			cur, found = rec, true
			break
		}
	}
	if !found {
		return false, nil
	}
	from := cur.Bucket()

	var column []T
	curIdx := -1
	for _, rec := range Filter(items, ev.Criteria, c.store.now()) {
		if rec.Bucket() != dest {
			continue
		}
		if rec.Meta().ID == ev.DraggableID {
			curIdx = len(column)
			continue
		}
		column = append(column, rec)
	}

	idx := min(max(ev.Destination.Index, 0), len(column))
	if from == dest && idx == curIdx {
		return false, nil
	}

	rec, err := c.store.Move(ctx, ev.DraggableID, beforeID(items, column, idx, ev.DraggableID), func(t T) { t.SetBucket(dest) })
	if err != nil && !errors.Is(err, ErrPersist) {
		if errors.Is(err, perrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	c.record(ctx, models.ActionMove, rec, fmt.Sprintf("%s → %s", from, dest))
	return true, err
}

// beforeID picks the record the moved card is inserted in front of so it
// lands at position idx of the visible column. Past the last visible card
// it goes directly after that card, ahead of any hidden ones that follow.
func beforeID[T Entity[T]](items, column []T, idx int, moving string) string {
	if idx < len(column) {
		return column[idx].Meta().ID
	}
	if len(column) == 0 {
		return ""
	}
	last := column[len(column)-1].Meta().ID
	for i, rec := range items {
		if rec.Meta().ID != last {
			continue
		}
		for _, next := range items[i+1:] {
			if next.Meta().ID != moving {
				return next.Meta().ID
			}
		}
		break
	}
	return ""
}

// HandleBulkStatusChange moves every listed record to status and returns
// how many were changed. Unknown ids are skipped.
func (c *Controller[T, S]) HandleBulkStatusChange(ctx context.Context, ids []string, status S) (int, error) {
	if !c.kind.Has(status) {
		return 0, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	applied, err := c.store.UpdateMany(ctx, ids, func(t T) { t.SetBucket(status) })
	c.recordBulk(ctx, len(applied), "status → "+string(status))
	return len(applied), err
}

// HandleBulkPriorityChange sets the priority of every listed record. Kinds
// without a priority return ErrUnsupported.
func (c *Controller[T, S]) HandleBulkPriorityChange(ctx context.Context, ids []string, p models.Priority) (int, error) {
	var probe T
	if _, ok := any(probe).(prioritized); !ok {
		return 0, fmt.Errorf("bulk priority on %s: %w", c.kind.Name, ErrUnsupported)
	}
	if !p.Valid() {
		return 0, &models.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown value %q", p)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	applied, err := c.store.UpdateMany(ctx, ids, func(t T) {
		any(t).(prioritized).SetPriority(p)
	})
	c.recordBulk(ctx, len(applied), "priority → "+string(p))
	return len(applied), err
}

// HandleBulkDelete removes every listed record and returns how many were
// removed.
func (c *Controller[T, S]) HandleBulkDelete(ctx context.Context, ids []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.store.RemoveMany(ctx, ids)
	c.recordBulk(ctx, len(removed), "deleted")
	return len(removed), err
}

package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/mission-control/internal/errors"
	"github.com/p-blackswan/mission-control/internal/models"
)

// Observer receives store activity, typically for metrics.
type Observer interface {
	ObserveMutation(kind string, op string, n int)
	ObservePersistError(kind string)
	ObserveSize(kind string, n int)
}

// StoreOption configures a Store.
type StoreOption[T Entity[T]] func(*Store[T])

// WithPersister sets where the list is loaded from and saved to.
func WithPersister[T Entity[T]](p Persister[T]) StoreOption[T] {
	return func(s *Store[T]) { s.persister = p }
}

// WithClock overrides time.Now.
func WithClock[T Entity[T]](c Clock) StoreOption[T] {
	return func(s *Store[T]) { s.now = c }
}

// WithPrepend makes Insert place new records first instead of last.
func WithPrepend[T Entity[T]]() StoreOption[T] {
	return func(s *Store[T]) { s.prepend = true }
}

// WithCapacity bounds the list; the oldest inserted records are dropped.
func WithCapacity[T Entity[T]](n int) StoreOption[T] {
	return func(s *Store[T]) { s.capacity = n }
}

// WithObserver attaches an Observer.
func WithObserver[T Entity[T]](o Observer) StoreOption[T] {
	return func(s *Store[T]) { s.observer = o }
}

// Store is the ordered, in-memory collection for one entity kind. All
// mutations are serialized, persisted as a full list and then published
// on the store's Bus. Readers always get clones.
type Store[T Entity[T]] struct {
	kind      string
	persister Persister[T]
	now       Clock
	prepend   bool
	capacity  int
	observer  Observer
	logger    zerolog.Logger
	bus       Bus

	mu      sync.RWMutex
	items   []T
	version uint64

	ready     chan struct{}
	readyOnce sync.Once
}

// NewStore creates an empty, not yet loaded store.
func NewStore[T Entity[T]](kind string, logger zerolog.Logger, opts ...StoreOption[T]) *Store[T] {
	s := &Store[T]{
		kind:   kind,
		now:    time.Now,
		logger: logger.With().Str("component", "store").Str("kind", kind).Logger(),
		ready:  make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Kind returns the entity kind name.
func (s *Store[T]) Kind() string { return s.kind }

// Load replaces the contents with what the persister returns, dropping
// records without an id and duplicate ids (first wins). A failed load
// leaves the store empty but still marks it loaded.
func (s *Store[T]) Load(ctx context.Context) error {
	var (
		loaded []T
		err    error
	)
	if s.persister != nil {
		loaded, err = s.persister.Load(ctx)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("load failed, starting empty")
		loaded = nil
	}

	items := dedupe(loaded)
	s.mu.Lock()
	s.items = items
	s.version++
	change := Change{Kind: s.kind, Op: OpLoad, Version: s.version}
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	if s.observer != nil {
		s.observer.ObserveSize(s.kind, len(items))
	}
	s.logger.Debug().Int("count", len(items)).Msg("loaded")
	s.bus.Publish(change)

	if err != nil {
		return fmt.Errorf("load %s: %w", s.kind, err)
	}
	return nil
}

// Loaded reports whether Load has completed at least once.
func (s *Store[T]) Loaded() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Ready is closed once the first Load completes.
func (s *Store[T]) Ready() <-chan struct{} { return s.ready }

// Subscribe registers fn for every future change.
func (s *Store[T]) Subscribe(fn Listener) func() { return s.bus.Subscribe(fn) }

// Insert adds rec. Missing timestamps are filled from the clock.
func (s *Store[T]) Insert(ctx context.Context, rec T) error {
	if isNil(rec) || rec.Meta().ID == "" {
		return fmt.Errorf("insert %s: %w: missing id", s.kind, perrors.ErrInvalidInput)
	}
	rec = rec.Clone()
	m := rec.Meta()

	s.mu.Lock()
	if s.indexOf(m.ID) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("insert %s %q: %w", s.kind, m.ID, ErrDuplicateID)
	}
	now := s.nowMillis()
	if m.CreatedAt == 0 {
		m.CreatedAt = now
	}
	if m.UpdatedAt < m.CreatedAt {
		m.UpdatedAt = m.CreatedAt
	}
	if s.prepend {
		s.items = append([]T{rec}, s.items...)
	} else {
		s.items = append(s.items, rec)
	}
	s.trim()
	change := s.commit(ctx, OpCreate, m.ID)
	s.mu.Unlock()

	s.bus.Publish(change)
	return change.SaveErr
}

// Update applies mutate to a copy of the record and stores the result. The
// id and createdAt cannot be changed; updatedAt strictly increases.
func (s *Store[T]) Update(ctx context.Context, id string, mutate func(T)) (T, error) {
	var zero T
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return zero, fmt.Errorf("update %s %q: %w", s.kind, id, perrors.ErrNotFound)
	}
	next := s.touch(s.items[idx], mutate)
	s.items[idx] = next
	change := s.commit(ctx, OpUpdate, id)
	out := next.Clone()
	s.mu.Unlock()

	s.bus.Publish(change)
	return out, change.SaveErr
}

// Annotate applies mutate like Update but keeps both timestamps. It is for
// bookkeeping fields the user did not edit.
func (s *Store[T]) Annotate(ctx context.Context, id string, mutate func(T)) (T, error) {
	var zero T
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return zero, fmt.Errorf("annotate %s %q: %w", s.kind, id, perrors.ErrNotFound)
	}
	cur := s.items[idx]
	prev := *cur.Meta()
	next := cur.Clone()
	mutate(next)
	*next.Meta() = prev
	s.items[idx] = next
	change := s.commit(ctx, OpUpdate, id)
	out := next.Clone()
	s.mu.Unlock()

	s.bus.Publish(change)
	return out, change.SaveErr
}

// UpdateMany applies mutate to every listed record that exists and saves
// once. It returns the ids that were updated, in list order.
func (s *Store[T]) UpdateMany(ctx context.Context, ids []string, mutate func(T)) ([]string, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	var applied []string
	for i, rec := range s.items {
		id := rec.Meta().ID
		if _, ok := want[id]; !ok {
			continue
		}
		s.items[i] = s.touch(rec, mutate)
		applied = append(applied, id)
	}
	if len(applied) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	change := s.commit(ctx, OpUpdate, applied...)
	s.mu.Unlock()

	s.bus.Publish(change)
	return applied, change.SaveErr
}

// Move updates the record like Update and re-inserts it directly before
// beforeID. An empty or unknown beforeID moves it to the end.
func (s *Store[T]) Move(ctx context.Context, id, beforeID string, mutate func(T)) (T, error) {
	var zero T
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return zero, fmt.Errorf("move %s %q: %w", s.kind, id, perrors.ErrNotFound)
	}
	next := s.touch(s.items[idx], mutate)
	rest := append(s.items[:idx:idx], s.items[idx+1:]...)

	at := len(rest)
	if beforeID != "" && beforeID != id {
		for i, rec := range rest {
			if rec.Meta().ID == beforeID {
				at = i
				break
			}
		}
	}
	items := make([]T, 0, len(rest)+1)
	items = append(items, rest[:at]...)
	items = append(items, next)
	items = append(items, rest[at:]...)
	s.items = items

	change := s.commit(ctx, OpMove, id)
	out := next.Clone()
	s.mu.Unlock()

	s.bus.Publish(change)
	return out, change.SaveErr
}

// Remove deletes the record with id.
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	removed, err := s.RemoveMany(ctx, []string{id})
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return fmt.Errorf("remove %s %q: %w", s.kind, id, perrors.ErrNotFound)
	}
	return nil
}

// RemoveMany deletes every listed record that exists and saves once.
func (s *Store[T]) RemoveMany(ctx context.Context, ids []string) ([]string, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	kept := make([]T, 0, len(s.items))
	var removed []string
	for _, rec := range s.items {
		id := rec.Meta().ID
		if _, ok := drop[id]; ok {
			removed = append(removed, id)
			continue
		}
		kept = append(kept, rec)
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	s.items = kept
	change := s.commit(ctx, OpDelete, removed...)
	s.mu.Unlock()

	s.bus.Publish(change)
	return removed, change.SaveErr
}

// Reset replaces the whole list and saves it.
func (s *Store[T]) Reset(ctx context.Context, items []T) error {
	cloned := make([]T, 0, len(items))
	for _, rec := range items {
		if !isNil(rec) {
			cloned = append(cloned, rec.Clone())
		}
	}
	s.mu.Lock()
	s.items = dedupe(cloned)
	change := s.commit(ctx, OpReset)
	s.mu.Unlock()

	s.bus.Publish(change)
	return change.SaveErr
}

// Snapshot returns clones of all records in order.
func (s *Store[T]) Snapshot() []T {
	items, _ := s.SnapshotVersion()
	return items
}

// SnapshotVersion returns a snapshot together with the version it reflects.
func (s *Store[T]) SnapshotVersion() ([]T, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	for i, rec := range s.items {
		out[i] = rec.Clone()
	}
	return out, s.version
}

// Get returns a clone of the record with id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.items[idx].Clone(), true
	}
	var zero T
	return zero, false
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increases on every load and mutation.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Now returns the store clock in epoch milliseconds.
func (s *Store[T]) Now() int64 { return s.nowMillis() }

func (s *Store[T]) nowMillis() int64 { return s.now().UnixMilli() }

// touch returns a mutated clone of cur with identity preserved and
// updatedAt advanced past its previous value.
func (s *Store[T]) touch(cur T, mutate func(T)) T {
	prev := cur.Meta()
	next := cur.Clone()
	if mutate != nil {
		mutate(next)
	}
	m := next.Meta()
	m.ID = prev.ID
	m.CreatedAt = prev.CreatedAt
	m.UpdatedAt = max(s.nowMillis(), prev.UpdatedAt+1)
	return next
}

func (s *Store[T]) trim() {
	if s.capacity <= 0 || len(s.items) <= s.capacity {
		return
	}
	if s.prepend {
		s.items = s.items[:s.capacity]
		return
	}
	s.items = append([]T(nil), s.items[len(s.items)-s.capacity:]...)
}

// commit must be called with mu held.
func (s *Store[T]) commit(ctx context.Context, op Op, ids ...string) Change {
	s.version++
	c := Change{Kind: s.kind, Op: op, IDs: ids, Version: s.version}

	if s.persister != nil {
		snapshot := make([]T, len(s.items))
		for i, rec := range s.items {
			snapshot[i] = rec.Clone()
		}
		if err := s.persister.Save(ctx, snapshot); err != nil {
			c.SaveErr = fmt.Errorf("%w: %s: %w", ErrPersist, s.kind, err)
			s.logger.Error().Err(err).Str("op", string(op)).Msg("save failed, change kept in memory")
			if s.observer != nil {
				s.observer.ObservePersistError(s.kind)
			}
		}
	}
	if s.observer != nil {
		s.observer.ObserveMutation(s.kind, string(op), max(1, len(ids)))
		s.observer.ObserveSize(s.kind, len(s.items))
	}
	return c
}

func (s *Store[T]) indexOf(id string) int {
	for i, rec := range s.items {
		if rec.Meta().ID == id {
			return i
		}
	}
	return -1
}

func dedupe[T Entity[T]](items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, rec := range items {
		if isNil(rec) {
			continue
		}
		id := rec.Meta().ID
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, rec)
	}
	return out
}

var _ Entity[*models.Task] = (*models.Task)(nil)

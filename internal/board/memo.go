package board

import (
	"fmt"
	"time"

	"github.com/p-blackswan/mission-control/lru"
)

// Memo caches derived values per store version and criteria. Entries for a
// superseded version are never hit again and age out of the LRU.
type Memo[V any] struct {
	cache *lru.Cache[string, V]
}

// NewMemo returns a memo holding up to size results. A size below one
// disables caching.
func NewMemo[V any](size int) *Memo[V] {
	if size < 1 {
		return &Memo[V]{}
	}
	return &Memo[V]{cache: lru.New[string, V](size)}
}

// Get returns the cached value for (version, c, now) or computes it.
func (m *Memo[V]) Get(version uint64, c Criteria, now time.Time, compute func() V) V {
	if m == nil || m.cache == nil {
		return compute()
	}
	key := memoKey(version, c, now)
	if v, ok := m.cache.Get(key); ok {
		return v
	}
	v := compute()
	m.cache.Put(key, v)
	return v
}

// Stats exposes the underlying cache counters.
func (m *Memo[V]) Stats() lru.Stats {
	if m == nil || m.cache == nil {
		return lru.Stats{}
	}
	return m.cache.Stats()
}

// memoKey includes the part of now a range filter depends on: the calendar
// day for today, the exact millisecond for rolling windows.
func memoKey(version uint64, c Criteria, now time.Time) string {
	var window string
	switch c.Range {
	case RangeToday:
		window = now.Format("2006-01-02 MST")
	case RangeWeek, RangeMonth:
		window = fmt.Sprint(now.UnixMilli())
	}
	return fmt.Sprintf("%d|%s|%s", version, c.Key(), window)
}

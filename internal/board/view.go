package board

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	perrors "github.com/p-blackswan/mission-control/internal/errors"
	"github.com/p-blackswan/mission-control/internal/models"
)

// Range restricts records by their facet time.
type Range string

const (
	RangeAll   Range = "all"
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

// ParseRange accepts "", all, today, week and month.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "", RangeAll:
		return RangeAll, nil
	case RangeToday, RangeWeek, RangeMonth:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown range %q", perrors.ErrInvalidInput, s)
}

// Criteria is the filter state of a view. Empty fields match everything.
type Criteria struct {
	Search     string   `json:"search,omitempty"`
	Assignee   string   `json:"assignee,omitempty"`
	Category   string   `json:"category,omitempty"`
	Importance string   `json:"importance,omitempty"`
	Actions    []string `json:"actions,omitempty"`
	Range      Range    `json:"range,omitempty"`
}

// Active reports whether any filter is set.
func (c Criteria) Active() bool {
	return strings.TrimSpace(c.Search) != "" || c.Assignee != "" || c.Category != "" ||
		c.Importance != "" || len(c.Actions) > 0 || (c.Range != "" && c.Range != RangeAll)
}

// Key is a canonical string for c, used for memoization.
func (c Criteria) Key() string {
	actions := slices.Clone(c.Actions)
	slices.Sort(actions)
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(c.Search)),
		c.Assignee, c.Category, c.Importance,
		strings.Join(actions, ","),
		string(c.Range),
	}, "\x1f")
}

// Match reports whether f satisfies every criterion. Today means the same
// calendar day as now in now's location; week and month are rolling 7 and
// 30 day windows ending at now.
func (c Criteria) Match(f models.Facets, now time.Time) bool {
	if c.Assignee != "" && f.Assignee != c.Assignee {
		return false
	}
	if c.Category != "" && f.Category != c.Category {
		return false
	}
	if c.Importance != "" && f.Importance != c.Importance {
		return false
	}
	if len(c.Actions) > 0 && !slices.Contains(c.Actions, f.Action) {
		return false
	}
	if !c.inRange(f.Time, now) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(c.Search))
	if q == "" {
		return true
	}
	for _, text := range f.Text {
		if strings.Contains(strings.ToLower(text), q) {
			return true
		}
	}
	return false
}

func (c Criteria) inRange(ms int64, now time.Time) bool {
	switch c.Range {
	case RangeToday:
		t := time.UnixMilli(ms).In(now.Location())
		y1, m1, d1 := t.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case RangeWeek:
		return ms >= now.Add(-7*24*time.Hour).UnixMilli()
	case RangeMonth:
		return ms >= now.Add(-30*24*time.Hour).UnixMilli()
	}
	return true
}

// Filter returns the records matching c, in their original order.
func Filter[T Entity[T]](items []T, c Criteria, now time.Time) []T {
	out := make([]T, 0, len(items))
	for _, rec := range items {
		if c.Match(rec.Facets(), now) {
			out = append(out, rec)
		}
	}
	return out
}

// Partition groups items by status. Every status gets an entry, possibly
// empty, and relative order is preserved within each bucket.
func Partition[T Bucketed[T, S], S ~string](items []T, statuses []S) map[S][]T {
	out := make(map[S][]T, len(statuses))
	for _, s := range statuses {
		out[s] = []T{}
	}
	for _, rec := range items {
		s := rec.Bucket()
		if _, ok := out[s]; ok {
			out[s] = append(out[s], rec)
		}
	}
	return out
}

// Column is one bucket of a board in display order.
type Column[T any, S ~string] struct {
	Status S      `json:"status"`
	Label  string `json:"label"`
	Items  []T    `json:"items"`
}

// Stats are the headline counts of a view.
type Stats struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"byStatus"`
	CompletionRate int            `json:"completionRate"`
	ByAssignee     map[string]int `json:"byAssignee"`
	TopAssignee    string         `json:"topAssignee,omitempty"`
}

// Summarize computes Stats for items using the kind's done status.
func Summarize[T Bucketed[T, S], S ~string](items []T, kind Kind[S]) Stats {
	st := Stats{
		Total:      len(items),
		ByStatus:   make(map[string]int, len(kind.Statuses)),
		ByAssignee: CountBy(items, func(f models.Facets) string { return f.Assignee }),
	}
	for _, s := range kind.Statuses {
		st.ByStatus[string(s)] = 0
	}
	for _, rec := range items {
		st.ByStatus[string(rec.Bucket())]++
	}
	st.CompletionRate = CompletionRate(st.ByStatus[string(kind.Done)], st.Total)
	st.TopAssignee = TopKey(st.ByAssignee)
	return st
}

// CompletionRate is round(100*done/total), 0 for an empty set.
func CompletionRate(done, total int) int {
	if total <= 0 {
		return 0
	}
	r := int(math.Round(100 * float64(done) / float64(total)))
	return min(max(r, 0), 100)
}

// CountBy counts items per non-empty facet value.
func CountBy[T Entity[T]](items []T, key func(models.Facets) string) map[string]int {
	out := make(map[string]int)
	for _, rec := range items {
		if k := key(rec.Facets()); k != "" {
			out[k]++
		}
	}
	return out
}

// TopKey returns the key with the highest count. Ties go to the
// lexicographically smallest key.
func TopKey(counts map[string]int) string {
	var (
		best  string
		bestN int
	)
	for k, n := range counts {
		if n > bestN || (n == bestN && n > 0 && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

// SortRecent orders pinned records first, then by updatedAt descending.
// The input is not modified.
func SortRecent[T Entity[T]](items []T) []T {
	out := slices.Clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := out[i].Facets(), out[j].Facets()
		if fi.Pinned != fj.Pinned {
			return fi.Pinned
		}
		return out[i].Meta().UpdatedAt > out[j].Meta().UpdatedAt
	})
	return out
}

// View is the derived state of one board.
type View[T any, S ~string] struct {
	Filtered []T            `json:"-"`
	Columns  []Column[T, S] `json:"columns"`
	Stats    Stats          `json:"stats"`
	Version  uint64         `json:"version"`
}

// ByStatus returns the items of one column.
func (v View[T, S]) ByStatus(s S) []T {
	for _, col := range v.Columns {
		if col.Status == s {
			return col.Items
		}
	}
	return nil
}

// Derive filters items, partitions them into the kind's columns and
// summarizes the filtered set.
func Derive[T Bucketed[T, S], S ~string](items []T, kind Kind[S], c Criteria, now time.Time) View[T, S] {
	filtered := Filter(items, c, now)
	parts := Partition(filtered, kind.Statuses)
	cols := make([]Column[T, S], 0, len(kind.Statuses))
	for _, s := range kind.Statuses {
		cols = append(cols, Column[T, S]{Status: s, Label: badgeLabel(s), Items: parts[s]})
	}
	return View[T, S]{
		Filtered: filtered,
		Columns:  cols,
		Stats:    Summarize(filtered, kind),
	}
}

func badgeLabel[S ~string](s S) string {
	if b, ok := any(s).(interface{ Badge() models.Badge }); ok {
		if label := b.Badge().Label; label != "" {
			return label
		}
	}
	return string(s)
}

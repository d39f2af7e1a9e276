package board

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDSource mints record ids.
type IDSource func(now time.Time) string

// NewULIDSource returns an IDSource producing monotonic ULIDs, so ids
// minted in the same millisecond still sort by creation order.
func NewULIDSource() IDSource {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return func(now time.Time) string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(now), entropy).String()
	}
}

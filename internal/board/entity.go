// Package board implements the status-bucketed entity board shared by the
// tasks, content and calendar views: an in-memory Collection Store per
// entity kind, pure derived views over it, and the controller that turns
// user intents into store mutations.
package board

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"time"

	"github.com/p-blackswan/mission-control/internal/models"
)

var (
	// ErrDuplicateID is returned by Insert when the id is already taken.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrPersist wraps a failed save. The in-memory change was kept.
	ErrPersist = errors.New("persist failed")
	// ErrUnsupported is returned for operations a kind does not offer.
	ErrUnsupported = errors.New("operation not supported for this kind")
)

// Entity is any record a Store can hold. T is the concrete pointer type.
type Entity[T any] interface {
	Meta() *models.Record
	Clone() T
	Facets() models.Facets
}

// Bucketed is an entity grouped into columns by a closed status enum.
type Bucketed[T any, S ~string] interface {
	Entity[T]
	Bucket() S
	SetBucket(S)
}

// Draft is a validated create/edit payload for T.
type Draft[T any] interface {
	Validate() error
	New(id string) T
	Apply(T)
}

// Persister loads and saves the full list for one kind. Missing data is an
// empty list, not an error.
type Persister[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
}

// Clock returns the current time.
type Clock func() time.Time

// Kind describes the status enum of a bucketed entity kind.
type Kind[S ~string] struct {
	Name     string
	Statuses []S
	Initial  S
	Done     S
}

// Has reports whether s is one of the kind's statuses.
func (k Kind[S]) Has(s S) bool { return slices.Contains(k.Statuses, s) }

type prioritized interface {
	SetPriority(models.Priority)
}

type labeled interface {
	Label() string
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

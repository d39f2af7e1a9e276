package board

import (
	"slices"
	"sync"
)

// Op names the kind of mutation a Change describes.
type Op string

const (
	OpLoad   Op = "load"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpMove   Op = "move"
	OpDelete Op = "delete"
	OpReset  Op = "reset"
)

// Change is published after every store mutation.
type Change struct {
	Kind    string
	Op      Op
	IDs     []string
	Version uint64
	SaveErr error
}

// Listener receives changes. It runs on the mutating goroutine after the
// store lock has been released.
type Listener func(Change)

// Bus is a typed publish/subscribe hub. The zero value is ready to use.
type Bus struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]Listener
}

// Subscribe registers fn and returns a func that removes it.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[int]Listener)
	}
	id := b.next
	b.next++
	b.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers c to every listener in subscription order.
func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	fns := make(map[int]Listener, len(ids))
	for _, id := range ids {
		fns[id] = b.listeners[id]
	}
	b.mu.RUnlock()

	slices.Sort(ids)
	for _, id := range ids {
		fns[id](c)
	}
}

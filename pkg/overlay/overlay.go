// Package overlay turns "interaction outside an open overlay" into a scoped
// capability. An overlay (form modal, row menu) acquires a Detector when it
// opens and releases it on every exit path; hosts feed pointer events into the
// Bus, which notifies each live detector whose boundary does not contain the
// event target.
package overlay

import (
	"sort"
	"strings"
	"sync"
)

// Event is a pointer interaction reported by a host. Target is the identifier
// of the innermost element that received it; "" means the document itself.
type Event struct {
	Target string
}

// Boundary decides whether a target lies inside an overlay.
type Boundary interface {
	Contains(target string) bool
}

// BoundaryFunc adapts a function into a Boundary.
type BoundaryFunc func(target string) bool

// Contains calls the underlying function.
func (fn BoundaryFunc) Contains(target string) bool {
	return fn(target)
}

// Within returns a boundary over element identifiers. An identifier contains
// itself and every descendant written as "<id>/<child>".
func Within(ids ...string) Boundary {
	roots := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			roots = append(roots, id)
		}
	}
	return BoundaryFunc(func(target string) bool {
		for _, root := range roots {
			if target == root || strings.HasPrefix(target, root+"/") {
				return true
			}
		}
		return false
	})
}

type subscription struct {
	boundary  Boundary
	onOutside func(Event)
}

// Bus fans pointer events out to live detectors.
type Bus struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]subscription
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]subscription)}
}

// Acquire registers a detector. onOutside runs for every dispatched event
// whose target lies outside boundary, until the detector is released.
func (b *Bus) Acquire(boundary Boundary, onOutside func(Event)) *Detector {
	if boundary == nil {
		boundary = Within()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.subs[id] = subscription{boundary: boundary, onOutside: onOutside}
	return &Detector{bus: b, id: id}
}

// Dispatch delivers an event and returns how many detectors treated it as an
// outside interaction. Callbacks run without the bus lock held, so they may
// release detectors or acquire new ones.
func (b *Bus) Dispatch(ev Event) int {
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	pending := make([]subscription, 0, len(ids))
	for _, id := range ids {
		sub := b.subs[id]
		if !sub.boundary.Contains(ev.Target) {
			pending = append(pending, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range pending {
		if sub.onOutside != nil {
			sub.onOutside(ev)
		}
	}
	return len(pending)
}

// Active reports the number of live detectors.
func (b *Bus) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) release(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Detector is a live subscription on a Bus.
type Detector struct {
	bus  *Bus
	id   uint64
	once sync.Once
}

// Release unsubscribes the detector. It is safe to call more than once and on
// a nil detector.
func (d *Detector) Release() {
	if d == nil || d.bus == nil {
		return
	}
	d.once.Do(func() {
		d.bus.release(d.id)
	})
}

package callback

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler inspects a message and reports whether it claimed it.
type Handler[T any] func(msg T) bool

// Handle identifies a registered handler for later removal.
type Handle struct {
	id  uint64
	ref string
}

// Ref returns the reference string given at registration.
func (h Handle) Ref() string {
	return h.ref
}

// IsZero reports whether h was never returned by Add.
func (h Handle) IsZero() bool {
	return h.id == 0
}

type entry[T any] struct {
	id       uint64
	priority int
	ref      string
	handler  Handler[T]
}

// Registry is a priority-ordered handler chain. The zero value is not usable;
// create registries with New.
type Registry[T any] struct {
	name    string
	mu      sync.RWMutex
	entries []entry[T] // sorted by priority then id; replaced, never mutated
	nextID  uint64
}

// New creates an empty registry. The name only appears in log output.
func New[T any](name string) *Registry[T] {
	return &Registry[T]{name: name}
}

// Add registers handler at the given priority and returns a handle for
// Remove. Lower priorities run first.
func (r *Registry[T]) Add(priority int, ref string, handler Handler[T]) Handle {
	if handler == nil {
		panic("callback: nil handler")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	e := entry[T]{id: r.nextID, priority: priority, ref: ref, handler: handler}

	// First index whose priority is strictly greater keeps equal priorities in
	// insertion order.
	idx := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].priority > priority
	})

	next := make([]entry[T], 0, len(r.entries)+1)
	next = append(next, r.entries[:idx]...)
	next = append(next, e)
	next = append(next, r.entries[idx:]...)
	r.entries = next

	logrus.WithFields(logrus.Fields{
		"function": "Registry.Add",
		"registry": r.name,
		"priority": priority,
		"ref":      ref,
		"count":    len(next),
	}).Debug("Callback registered")

	return Handle{id: e.id, ref: ref}
}

// Remove unregisters the handler identified by h. It reports whether the
// handler was still registered.
func (r *Registry[T]) Remove(h Handle) bool {
	if h.IsZero() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id != h.id {
			continue
		}
		next := make([]entry[T], 0, len(r.entries)-1)
		next = append(next, r.entries[:i]...)
		next = append(next, r.entries[i+1:]...)
		r.entries = next

		logrus.WithFields(logrus.Fields{
			"function": "Registry.Remove",
			"registry": r.name,
			"ref":      h.ref,
			"count":    len(next),
		}).Debug("Callback removed")
		return true
	}
	return false
}

// Dispatch offers msg to each handler in order and returns true as soon as
// one claims it. It returns false when no handler claims the message.
func (r *Registry[T]) Dispatch(msg T) bool {
	r.mu.RLock()
	snapshot := r.entries
	r.mu.RUnlock()

	for _, e := range snapshot {
		if r.invoke(e, msg) {
			return true
		}
	}
	return false
}

// Len returns the number of registered handlers.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// invoke runs one handler, converting a panic into "not claimed".
func (r *Registry[T]) invoke(e entry[T], msg T) (claimed bool) {
	defer func() {
		if p := recover(); p != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Registry.Dispatch",
				"registry": r.name,
				"priority": e.priority,
				"ref":      e.ref,
				"panic":    fmt.Sprint(p),
			}).Error("Callback panicked, continuing with next handler")
			claimed = false
		}
	}()
	return e.handler(msg)
}

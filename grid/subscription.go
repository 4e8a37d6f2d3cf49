package grid

import (
	"sync"
	"sync/atomic"
)

// Subscription is returned by every listener registration. Remove can be
// called any number of times.
type Subscription struct {
	once   sync.Once
	remove func()
}

func newSubscription(remove func()) *Subscription {
	return &Subscription{remove: remove}
}

func (s *Subscription) Remove() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.remove != nil {
			s.remove()
		}
	})
}

type listenerEntry[E any] struct {
	f       func(E)
	removed atomic.Bool
}

// listeners keeps callbacks of a single event type in registration order.
type listeners[E any] struct {
	mutex   sync.Mutex
	entries []*listenerEntry[E]
}

func (l *listeners[E]) add(f func(E)) *Subscription {
	entry := &listenerEntry[E]{f: f}
	l.mutex.Lock()
	l.entries = append(l.entries, entry)
	l.mutex.Unlock()

	return newSubscription(func() {
		entry.removed.Store(true)
		l.mutex.Lock()
		defer l.mutex.Unlock()
		for i, e := range l.entries {
			if e == entry {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	})
}

// emit must be called without holding any grid lock.
func (l *listeners[E]) emit(e E) {
	l.mutex.Lock()
	snapshot := make([]*listenerEntry[E], len(l.entries))
	copy(snapshot, l.entries)
	l.mutex.Unlock()

	for _, entry := range snapshot {
		if entry.removed.Load() {
			continue
		}
		entry.f(e)
	}
}

func (l *listeners[E]) len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.entries)
}

func (l *listeners[E]) clear() {
	l.mutex.Lock()
	for _, entry := range l.entries {
		entry.removed.Store(true)
	}
	l.entries = nil
	l.mutex.Unlock()
}

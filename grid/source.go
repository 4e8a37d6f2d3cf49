package grid

import "sync"

// Source is the data bound to a grid: either a materialized list or a pair of
// fetch/count callbacks. Replacing the data with the other kind is allowed on
// the Source itself, but every strategy built on it will refuse to work from
// then on.
type Source[T, F any] struct {
	mutex   sync.RWMutex
	kind    Kind
	version uint64

	// InMemory
	items []T

	// Paged
	fetch FetchFunc[T, F]
	count CountFunc[F]
}

func NewListSource[T, F any](items []T) *Source[T, F] {
	s := &Source[T, F]{}
	s.SetItems(items)
	return s
}

func NewCallbackSource[T, F any](fetch FetchFunc[T, F], count CountFunc[F]) (*Source[T, F], error) {
	if fetch == nil {
		return nil, argumentRequired("fetch callback")
	}
	if count == nil {
		return nil, argumentRequired("count callback")
	}
	s := &Source[T, F]{}
	s.SetCallbacks(fetch, count)
	return s, nil
}

func (s *Source[T, F]) Kind() Kind {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.kind
}

// SetItems binds a copy of items. The source becomes InMemory.
func (s *Source[T, F]) SetItems(items []T) {
	copied := make([]T, len(items))
	copy(copied, items)

	s.mutex.Lock()
	s.kind = InMemory
	s.version++
	s.items = copied
	s.fetch = nil
	s.count = nil
	s.mutex.Unlock()
}

// SetCallbacks binds fetch and count callbacks. The source becomes Paged.
func (s *Source[T, F]) SetCallbacks(fetch FetchFunc[T, F], count CountFunc[F]) {
	s.mutex.Lock()
	s.kind = Paged
	s.version++
	s.items = nil
	s.fetch = fetch
	s.count = count
	s.mutex.Unlock()
}

func (s *Source[T, F]) list(expected Kind) ([]T, uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.kind != expected {
		return nil, 0, incompatible(expected, s.kind)
	}
	return s.items, s.version, nil
}

func (s *Source[T, F]) callbacks(expected Kind) (FetchFunc[T, F], CountFunc[F], error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.kind != expected {
		return nil, nil, incompatible(expected, s.kind)
	}
	return s.fetch, s.count, nil
}

package grid

import (
	"slices"
	"sync"
)

// InMemoryStrategy filters a fully materialized list by evaluating a
// predicate for every item.
type InMemoryStrategy[T, F any] struct {
	source    *Source[T, F]
	predicate Predicate[T, F]

	mutex   sync.Mutex
	active  func(T) bool // nil matches everything
	compare func(a, b T) int
	version uint64 // source version the visible slice was computed from
	visible []T
	count   int

	countListeners listeners[ItemCountEvent]
}

func NewInMemoryStrategy[T, F any](source *Source[T, F], predicate Predicate[T, F]) (*InMemoryStrategy[T, F], error) {
	if source == nil {
		return nil, argumentRequired("source")
	}
	if predicate == nil {
		return nil, argumentRequired("predicate")
	}

	items, version, err := source.list(InMemory)
	if err != nil {
		return nil, err
	}

	s := &InMemoryStrategy[T, F]{
		source:    source,
		predicate: predicate,
	}
	s.recompute(items, version)

	return s, nil
}

func (s *InMemoryStrategy[T, F]) Kind() Kind {
	return InMemory
}

// SetFilter replaces the active predicate closure and re-evaluates every item.
func (s *InMemoryStrategy[T, F]) SetFilter(filter F) error {
	items, version, err := s.source.list(InMemory)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.active = func(item T) bool {
		return s.predicate(item, filter)
	}
	event, changed := s.recompute(items, version)
	s.mutex.Unlock()

	if changed {
		s.countListeners.emit(event)
	}
	return nil
}

// SetItems replaces the whole collection, keeping the active filter.
func (s *InMemoryStrategy[T, F]) SetItems(items []T) error {
	if _, _, err := s.source.list(InMemory); err != nil {
		return err
	}
	s.source.SetItems(items)
	return s.sync()
}

// SetComparator orders the visible items. A nil comparator keeps source order.
func (s *InMemoryStrategy[T, F]) SetComparator(compare func(a, b T) int) error {
	items, version, err := s.source.list(InMemory)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.compare = compare
	s.recompute(items, version)
	s.mutex.Unlock()

	return nil
}

func (s *InMemoryStrategy[T, F]) OnItemCountChanged(listener func(ItemCountEvent)) (*Subscription, error) {
	if listener == nil {
		return nil, argumentRequired("listener")
	}
	if _, _, err := s.source.list(InMemory); err != nil {
		return nil, err
	}
	return s.countListeners.add(listener), nil
}

func (s *InMemoryStrategy[T, F]) ItemCount() (ItemCount, error) {
	if err := s.sync(); err != nil {
		return ItemCount{}, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return ItemCount{Count: s.count}, nil
}

// Items returns the visible subset, in display order.
func (s *InMemoryStrategy[T, F]) Items() ([]T, error) {
	return s.Fetch(0, 0)
}

// Fetch returns a window of the visible items. A non positive limit means
// everything from offset.
func (s *InMemoryStrategy[T, F]) Fetch(offset, limit int) ([]T, error) {
	if err := s.sync(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	offset = max(offset, 0)
	if offset >= len(s.visible) {
		return []T{}, nil
	}
	end := len(s.visible)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return slices.Clone(s.visible[offset:end]), nil
}

// sync picks up items replaced directly on the source.
func (s *InMemoryStrategy[T, F]) sync() error {
	items, version, err := s.source.list(InMemory)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	if s.version == version {
		s.mutex.Unlock()
		return nil
	}
	event, changed := s.recompute(items, version)
	s.mutex.Unlock()

	if changed {
		s.countListeners.emit(event)
	}
	return nil
}

// recompute must be called with s.mutex held.
func (s *InMemoryStrategy[T, F]) recompute(items []T, version uint64) (ItemCountEvent, bool) {
	visible := make([]T, 0, len(items))
	for _, item := range items {
		if s.active == nil || s.active(item) {
			visible = append(visible, item)
		}
	}
	if s.compare != nil {
		slices.SortStableFunc(visible, s.compare)
	}

	previous := s.count
	s.visible = visible
	s.version = version
	s.count = len(visible)

	return ItemCountEvent{
		ItemCount: ItemCount{Count: s.count},
		Previous:  previous,
	}, previous != s.count
}

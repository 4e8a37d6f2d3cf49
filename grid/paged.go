package grid

import (
	"fmt"
	"slices"
	"sync"
)

const (
	DefaultPageSize = 150
	MinPageSize     = 100
	MaxPageSize     = 350
)

// PagedStrategy forwards filters to fetch/count callbacks so big collections
// never need to be materialized.
type PagedStrategy[T, F any] struct {
	source *Source[T, F]

	mutex    sync.Mutex
	filter   F
	sort     []SortOrder
	pageSize int
	count    int
	counted  bool

	countListeners listeners[ItemCountEvent]
}

// NewPagedStrategy binds to source using initial as the filter until the
// first SetFilter. The count callback is not invoked until needed.
func NewPagedStrategy[T, F any](source *Source[T, F], initial F) (*PagedStrategy[T, F], error) {
	if source == nil {
		return nil, argumentRequired("source")
	}
	if _, _, err := source.callbacks(Paged); err != nil {
		return nil, err
	}

	return &PagedStrategy[T, F]{
		source:   source,
		filter:   initial,
		pageSize: DefaultPageSize,
	}, nil
}

func (s *PagedStrategy[T, F]) Kind() Kind {
	return Paged
}

// SetFilter stores the filter for subsequent fetches and recounts.
func (s *PagedStrategy[T, F]) SetFilter(filter F) error {
	if _, _, err := s.source.callbacks(Paged); err != nil {
		return err
	}

	s.mutex.Lock()
	s.filter = filter
	s.mutex.Unlock()

	return s.recount()
}

// Refresh recounts after the upstream data changed.
func (s *PagedStrategy[T, F]) Refresh() error {
	return s.recount()
}

func (s *PagedStrategy[T, F]) SetSort(orders []SortOrder) error {
	if _, _, err := s.source.callbacks(Paged); err != nil {
		return err
	}

	s.mutex.Lock()
	s.sort = slices.Clone(orders)
	s.mutex.Unlock()

	return nil
}

// SetPageSize clamps size to [MinPageSize, MaxPageSize] and returns the value
// actually used.
func (s *PagedStrategy[T, F]) SetPageSize(size int) (int, error) {
	if _, _, err := s.source.callbacks(Paged); err != nil {
		return 0, err
	}

	size = min(max(size, MinPageSize), MaxPageSize)

	s.mutex.Lock()
	s.pageSize = size
	s.mutex.Unlock()

	return size, nil
}

func (s *PagedStrategy[T, F]) PageSize() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.pageSize
}

func (s *PagedStrategy[T, F]) OnItemCountChanged(listener func(ItemCountEvent)) (*Subscription, error) {
	if listener == nil {
		return nil, argumentRequired("listener")
	}
	if _, _, err := s.source.callbacks(Paged); err != nil {
		return nil, err
	}
	return s.countListeners.add(listener), nil
}

func (s *PagedStrategy[T, F]) ItemCount() (ItemCount, error) {
	if _, _, err := s.source.callbacks(Paged); err != nil {
		return ItemCount{}, err
	}

	s.mutex.Lock()
	counted := s.counted
	s.mutex.Unlock()

	if !counted {
		if err := s.recount(); err != nil {
			return ItemCount{Estimated: true}, err
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return ItemCount{Count: s.count, Estimated: !s.counted}, nil
}

// Fetch asks the fetch callback for one window. A non positive limit means
// one page. A short page moves the known count to where the data ended.
func (s *PagedStrategy[T, F]) Fetch(offset, limit int) ([]T, error) {
	fetch, _, err := s.source.callbacks(Paged)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	if limit <= 0 {
		limit = s.pageSize
	}
	query := Query[F]{
		Offset: max(offset, 0),
		Limit:  limit,
		Filter: s.filter,
		Sort:   slices.Clone(s.sort),
	}
	s.mutex.Unlock()

	page, err := fetch(query)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(page) > query.Limit {
		page = page[:query.Limit]
	}

	if len(page) < query.Limit && (len(page) > 0 || query.Offset == 0) {
		s.update(query.Offset + len(page))
	}

	return page, nil
}

func (s *PagedStrategy[T, F]) recount() error {
	_, count, err := s.source.callbacks(Paged)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	query := Query[F]{
		Filter: s.filter,
		Sort:   slices.Clone(s.sort),
	}
	s.mutex.Unlock()

	n, err := count(query)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	s.update(n)
	return nil
}

func (s *PagedStrategy[T, F]) update(n int) {
	s.mutex.Lock()
	previous := s.count
	first := !s.counted
	s.count = n
	s.counted = true
	s.mutex.Unlock()

	if first || previous != n {
		s.countListeners.emit(ItemCountEvent{
			ItemCount: ItemCount{Count: n},
			Previous:  previous,
		})
	}
}

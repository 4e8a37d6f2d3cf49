package grid

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultDebounce    = 250 * time.Millisecond
	DefaultPlaceholder = "Search items"
	DefaultItemLabel   = "item"
)

// Config holds what both grid variants need.
type Config[T, F any] struct {
	// Key returns the identity of an item. Selection is keyed by it.
	Key func(item T) string

	// Filter creates the default filter the grid starts with.
	Filter func() F

	// Combine merges the search text into a filter. It must not mutate filter.
	Combine func(text string, filter F) F

	Columns []Column[T]

	// Debounce is the quiet period of Type. Zero means DefaultDebounce, a
	// negative value disables debouncing.
	Debounce time.Duration

	// PageSize is only used by paged grids; it is clamped to
	// [MinPageSize, MaxPageSize].
	PageSize int
}

// Grid is a filterable, multi-selectable grid. Its data is either in memory or
// paged, decided once by the constructor.
type Grid[T, F any] struct {
	id   string
	kind Kind

	// exactly one of these is set, matching kind
	inMemory *InMemoryStrategy[T, F]
	paged    *PagedStrategy[T, F]

	key     func(T) string
	combine func(string, F) F

	searchMutex sync.Mutex // serializes filter applications
	mutex       sync.Mutex
	filter      F
	hasFilter   bool
	searchText  string
	pending     string
	placeholder string
	itemLabel   string
	columns     []*columnState[T]
	sort        []SortOrder
	selected    map[string]T
	actions     []Action[T]
	disposed    bool

	debounced      func()
	cancelDebounce func()

	filterListeners    listeners[FilterUpdateEvent[F]]
	selectionListeners listeners[SelectionEvent[T]]
}

// NewInMemory creates a grid over a materialized list filtered by predicate.
func NewInMemory[T, F any](config Config[T, F], items []T, predicate Predicate[T, F]) (*Grid[T, F], error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if predicate == nil {
		return nil, argumentRequired("predicate")
	}

	strategy, err := NewInMemoryStrategy(NewListSource[T, F](items), predicate)
	if err != nil {
		return nil, err
	}
	filter := config.Filter()
	if err := strategy.SetFilter(filter); err != nil {
		return nil, err
	}

	g := newGrid(config, InMemory, filter)
	g.inMemory = strategy
	return g, nil
}

// NewPaged creates a grid whose items are fetched on demand.
func NewPaged[T, F any](config Config[T, F], fetch FetchFunc[T, F], count CountFunc[F]) (*Grid[T, F], error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	source, err := NewCallbackSource(fetch, count)
	if err != nil {
		return nil, err
	}
	filter := config.Filter()
	strategy, err := NewPagedStrategy(source, filter)
	if err != nil {
		return nil, err
	}
	if config.PageSize != 0 {
		if _, err := strategy.SetPageSize(config.PageSize); err != nil {
			return nil, err
		}
	}

	g := newGrid(config, Paged, filter)
	g.paged = strategy
	return g, nil
}

func (c Config[T, F]) validate() error {
	if c.Key == nil {
		return argumentRequired("item key")
	}
	if c.Filter == nil {
		return argumentRequired("filter factory")
	}
	if c.Combine == nil {
		return argumentRequired("search combinator")
	}
	seen := map[string]bool{}
	for _, column := range c.Columns {
		if column.ID == "" {
			return argumentRequired("column id")
		}
		if seen[column.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, column.ID)
		}
		seen[column.ID] = true
	}
	return nil
}

func newGrid[T, F any](config Config[T, F], kind Kind, filter F) *Grid[T, F] {
	g := &Grid[T, F]{
		id:          uuid.NewString(),
		kind:        kind,
		key:         config.Key,
		combine:     config.Combine,
		filter:      filter,
		placeholder: DefaultPlaceholder,
		itemLabel:   DefaultItemLabel,
		selected:    map[string]T{},
	}

	for _, column := range config.Columns {
		g.columns = append(g.columns, &columnState[T]{
			Column:  column,
			visible: true,
		})
	}

	g.setupDebounce(config.Debounce)

	return g
}

func (g *Grid[T, F]) ID() string {
	return g.id
}

func (g *Grid[T, F]) Kind() Kind {
	return g.kind
}

// Strategy returns the active filter strategy.
func (g *Grid[T, F]) Strategy() FilterStrategy[T, F] {
	switch g.kind {
	case InMemory:
		return g.inMemory
	default:
		return g.paged
	}
}

func (g *Grid[T, F]) ItemCount() (ItemCount, error) {
	return g.Strategy().ItemCount()
}

func (g *Grid[T, F]) OnItemCountChanged(listener func(ItemCountEvent)) (*Subscription, error) {
	return g.Strategy().OnItemCountChanged(listener)
}

func (g *Grid[T, F]) OnFilterUpdate(listener func(FilterUpdateEvent[F])) *Subscription {
	return g.filterListeners.add(listener)
}

func (g *Grid[T, F]) OnSelectionChanged(listener func(SelectionEvent[T])) *Subscription {
	return g.selectionListeners.add(listener)
}

// Page returns a window of the items matching the active filter.
func (g *Grid[T, F]) Page(offset, limit int) ([]T, error) {
	return g.Strategy().Fetch(offset, limit)
}

// Rows is Page for callers that do not know T.
func (g *Grid[T, F]) Rows(offset, limit int) ([]any, error) {
	page, err := g.Page(offset, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]any, len(page))
	for i, item := range page {
		rows[i] = item
	}
	return rows, nil
}

// SetItems replaces the items of an in-memory grid.
func (g *Grid[T, F]) SetItems(items []T) error {
	if g.kind != InMemory {
		return incompatible(InMemory, g.kind)
	}
	return g.inMemory.SetItems(items)
}

// Items returns every visible item of an in-memory grid.
func (g *Grid[T, F]) Items() ([]T, error) {
	if g.kind != InMemory {
		return nil, incompatible(InMemory, g.kind)
	}
	return g.inMemory.Items()
}

// SetPageSize is only meaningful for paged grids.
func (g *Grid[T, F]) SetPageSize(size int) (int, error) {
	if g.kind != Paged {
		return 0, incompatible(Paged, g.kind)
	}
	return g.paged.SetPageSize(size)
}

// Refresh picks up upstream data changes.
func (g *Grid[T, F]) Refresh() error {
	switch g.kind {
	case InMemory:
		return g.inMemory.sync()
	default:
		return g.paged.Refresh()
	}
}

func (g *Grid[T, F]) SetPlaceholder(placeholder string) {
	g.mutex.Lock()
	g.placeholder = placeholder
	g.mutex.Unlock()
}

// SetItemLabel sets the noun used by the selection indicator.
func (g *Grid[T, F]) SetItemLabel(label string) {
	if label == "" {
		label = DefaultItemLabel
	}
	g.mutex.Lock()
	g.itemLabel = label
	g.mutex.Unlock()
}

// Dispose stops the pending search and drops every listener.
func (g *Grid[T, F]) Dispose() {
	g.mutex.Lock()
	if g.disposed {
		g.mutex.Unlock()
		return
	}
	g.disposed = true
	cancel := g.cancelDebounce
	g.mutex.Unlock()

	if cancel != nil {
		cancel()
	}
	g.filterListeners.clear()
	g.selectionListeners.clear()
	switch g.kind {
	case InMemory:
		g.inMemory.countListeners.clear()
	default:
		g.paged.countListeners.clear()
	}
}

func (g *Grid[T, F]) isDisposed() bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.disposed
}

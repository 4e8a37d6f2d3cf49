package grid

import (
	"fmt"
	"slices"
	"strings"
)

type Column[T any] struct {
	ID     string
	Header string

	// Compare orders two items by this column. In-memory grids need it to
	// sort by the column; paged grids pass the sort to the fetch callback.
	Compare func(a, b T) int

	// Value renders the cell as text, used by exports.
	Value func(item T) string
}

// Sortable reports whether the column can be picked for sorting. Only
// columns with a header can.
func (c Column[T]) Sortable() bool {
	return strings.TrimSpace(c.Header) != ""
}

type ColumnState struct {
	ID       string `json:"id"`
	Header   string `json:"header"`
	Visible  bool   `json:"visible"`
	Sortable bool   `json:"sortable"`
}

type columnState[T any] struct {
	Column[T]
	visible bool
}

func (g *Grid[T, F]) SetColumnVisible(id string, visible bool) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	column := g.findColumnLocked(id)
	if column == nil {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, id)
	}
	column.visible = visible
	return nil
}

// SetVisibleColumns shows exactly the given columns and hides the rest.
func (g *Grid[T, F]) SetVisibleColumns(ids ...string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	for _, id := range ids {
		if g.findColumnLocked(id) == nil {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, id)
		}
	}
	for _, column := range g.columns {
		column.visible = slices.Contains(ids, column.ID)
	}
	return nil
}

func (g *Grid[T, F]) Columns() []ColumnState {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.columnsLocked()
}

func (g *Grid[T, F]) columnsLocked() []ColumnState {
	result := make([]ColumnState, len(g.columns))
	for i, column := range g.columns {
		result[i] = ColumnState{
			ID:       column.ID,
			Header:   column.Header,
			Visible:  column.visible,
			Sortable: g.sortableLocked(column),
		}
	}
	return result
}

// VisibleColumns returns the definitions of the visible columns in order.
func (g *Grid[T, F]) VisibleColumns() []Column[T] {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	result := []Column[T]{}
	for _, column := range g.columns {
		if column.visible {
			result = append(result, column.Column)
		}
	}
	return result
}

// SetSort orders the grid by the given columns. No orders restores the
// natural order.
func (g *Grid[T, F]) SetSort(orders ...SortOrder) error {
	g.mutex.Lock()
	compares := make([]func(a, b T) int, 0, len(orders))
	for _, order := range orders {
		column := g.findColumnLocked(order.Column)
		if column == nil {
			g.mutex.Unlock()
			return fmt.Errorf("%w: %s", ErrColumnNotFound, order.Column)
		}
		if !g.sortableLocked(column) {
			g.mutex.Unlock()
			return fmt.Errorf("%w: %s", ErrColumnNotSortable, order.Column)
		}
		compare := column.Compare
		if order.Descending() {
			compare = func(a, b T) int { return column.Compare(b, a) }
		}
		compares = append(compares, compare)
	}
	g.mutex.Unlock()

	var err error
	switch g.kind {
	case InMemory:
		err = g.inMemory.SetComparator(chain(compares))
	default:
		err = g.paged.SetSort(orders)
	}
	if err != nil {
		return err
	}

	g.mutex.Lock()
	g.sort = slices.Clone(orders)
	g.mutex.Unlock()
	return nil
}

func (g *Grid[T, F]) Sort() []SortOrder {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return slices.Clone(g.sort)
}

func (g *Grid[T, F]) findColumnLocked(id string) *columnState[T] {
	for _, column := range g.columns {
		if column.ID == id {
			return column
		}
	}
	return nil
}

func (g *Grid[T, F]) sortableLocked(column *columnState[T]) bool {
	if !column.Sortable() {
		return false
	}
	return g.kind == Paged || column.Compare != nil
}

func chain[T any](compares []func(a, b T) int) func(a, b T) int {
	if len(compares) == 0 {
		return nil
	}
	return func(a, b T) int {
		for _, compare := range compares {
			if c := compare(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}

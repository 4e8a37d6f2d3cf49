package grid

import (
	"fmt"
	"slices"
	"strings"
)

// SelectionEvent carries the whole selection after a change.
type SelectionEvent[T any] struct {
	Selected []T
}

// walkLimit bounds the pages visited while resolving keys of a paged grid.
const walkLimit = 10000

func (g *Grid[T, F]) Select(items ...T) {
	changed := false
	g.mutex.Lock()
	for _, item := range items {
		key := g.key(item)
		if _, exists := g.selected[key]; !exists {
			changed = true
		}
		g.selected[key] = item
	}
	g.mutex.Unlock()

	if changed {
		g.emitSelection()
	}
}

func (g *Grid[T, F]) Deselect(items ...T) {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = g.key(item)
	}
	g.DeselectKeys(keys...)
}

// SelectKeys selects the visible items with the given keys. Keys that do not
// match a visible item are ignored.
func (g *Grid[T, F]) SelectKeys(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	wanted := map[string]bool{}
	for _, key := range keys {
		wanted[key] = true
	}

	found := []T{}
	err := g.walk(func(item T) bool {
		key := g.key(item)
		if wanted[key] {
			found = append(found, item)
			delete(wanted, key)
		}
		return len(wanted) > 0
	})
	if err != nil {
		return err
	}

	g.Select(found...)
	return nil
}

func (g *Grid[T, F]) DeselectKeys(keys ...string) {
	changed := false
	g.mutex.Lock()
	for _, key := range keys {
		if _, exists := g.selected[key]; exists {
			delete(g.selected, key)
			changed = true
		}
	}
	g.mutex.Unlock()

	if changed {
		g.emitSelection()
	}
}

// SelectAll selects every item passing the active filter.
func (g *Grid[T, F]) SelectAll() error {
	all := []T{}
	err := g.walk(func(item T) bool {
		all = append(all, item)
		return true
	})
	if err != nil {
		return err
	}

	g.Select(all...)
	return nil
}

func (g *Grid[T, F]) DeselectAll() {
	g.mutex.Lock()
	changed := len(g.selected) > 0
	clear(g.selected)
	g.mutex.Unlock()

	if changed {
		g.emitSelection()
	}
}

func (g *Grid[T, F]) IsSelected(item T) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	_, ok := g.selected[g.key(item)]
	return ok
}

// Selected returns the selected items sorted by key. Filtering never changes
// the selection.
func (g *Grid[T, F]) Selected() []T {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.selectedLocked()
}

func (g *Grid[T, F]) SelectedKeys() []string {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.selectedKeysLocked()
}

func (g *Grid[T, F]) selectedKeysLocked() []string {
	keys := make([]string, 0, len(g.selected))
	for key := range g.selected {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (g *Grid[T, F]) selectedLocked() []T {
	keys := g.selectedKeysLocked()
	items := make([]T, len(keys))
	for i, key := range keys {
		items[i] = g.selected[key]
	}
	return items
}

// SelectionText describes the selection, e.g. "3 samples are selected". It is
// not visible when nothing is selected.
func (g *Grid[T, F]) SelectionText() (string, bool) {
	g.mutex.Lock()
	n, label := len(g.selected), g.itemLabel
	g.mutex.Unlock()

	return selectionText(n, label), n > 0
}

func selectionText(n int, label string) string {
	label = strings.TrimSpace(label)
	if n <= 1 {
		return fmt.Sprintf("%d %s is selected", n, label)
	}
	return fmt.Sprintf("%d %ss are selected", n, label)
}

func (g *Grid[T, F]) emitSelection() {
	g.selectionListeners.emit(SelectionEvent[T]{
		Selected: g.Selected(),
	})
}

// walk visits the items passing the active filter in display order until f
// returns false.
func (g *Grid[T, F]) walk(f func(item T) bool) error {
	if g.kind == InMemory {
		items, err := g.inMemory.Items()
		if err != nil {
			return err
		}
		for _, item := range items {
			if !f(item) {
				return nil
			}
		}
		return nil
	}

	pageSize := g.paged.PageSize()
	for offset, pages := 0, 0; pages < walkLimit; offset, pages = offset+pageSize, pages+1 {
		page, err := g.paged.Fetch(offset, pageSize)
		if err != nil {
			return err
		}
		for _, item := range page {
			if !f(item) {
				return nil
			}
		}
		if len(page) < pageSize {
			return nil
		}
	}
	return nil
}

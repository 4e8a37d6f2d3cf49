package grid

import (
	"errors"
	"time"

	"github.com/romdo/go-debounce"

	"github.com/fulldump/labgrid/logger"
)

// FilterUpdateEvent is emitted every time a new filter is applied. For the
// first search of a grid HasOld is false and Old is the default filter.
type FilterUpdateEvent[F any] struct {
	Old        F
	HasOld     bool
	Updated    F
	SearchText string
}

func (g *Grid[T, F]) setupDebounce(wait time.Duration) {
	if wait < 0 {
		return
	}
	if wait == 0 {
		wait = DefaultDebounce
	}

	g.debounced, g.cancelDebounce = debounce.New(wait, func() {
		g.mutex.Lock()
		text := g.pending
		g.mutex.Unlock()

		err := g.Search(text)
		if errors.Is(err, ErrDisposed) {
			logger.Get().Debug("search after dispose", "grid", g.id, "text", text)
			return
		}
		if err != nil {
			logger.Get().Error("apply search", "grid", g.id, "text", text, "err", err)
		}
	})
}

// Search combines text with the current filter and applies it right away.
func (g *Grid[T, F]) Search(text string) error {
	g.searchMutex.Lock()
	defer g.searchMutex.Unlock()

	g.mutex.Lock()
	if g.disposed {
		g.mutex.Unlock()
		return ErrDisposed
	}
	current, searched := g.filter, g.hasFilter
	g.mutex.Unlock()

	updated := g.combine(text, current)
	if err := g.Strategy().SetFilter(updated); err != nil {
		return err
	}

	g.mutex.Lock()
	g.filter = updated
	g.hasFilter = true
	g.searchText = text
	g.mutex.Unlock()

	g.filterListeners.emit(FilterUpdateEvent[F]{
		Old:        current,
		HasOld:     searched,
		Updated:    updated,
		SearchText: text,
	})

	return nil
}

// Type records text as typed in the search field. The filter is applied once
// typing has been quiet for the debounce period.
func (g *Grid[T, F]) Type(text string) error {
	g.mutex.Lock()
	if g.disposed {
		g.mutex.Unlock()
		return ErrDisposed
	}
	g.pending = text
	debounced := g.debounced
	g.mutex.Unlock()

	if debounced == nil {
		return g.Search(text)
	}
	debounced()
	return nil
}

// Filter returns the filter currently applied, the default one until the first
// search, and whether any search has been applied yet.
func (g *Grid[T, F]) Filter() (F, bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.filter, g.hasFilter
}

func (g *Grid[T, F]) SearchText() string {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.searchText
}

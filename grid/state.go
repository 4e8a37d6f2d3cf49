package grid

import "slices"

// Controller is the part of a grid that does not depend on its item or filter
// types. Tab sheets and the HTTP layer work with it.
type Controller interface {
	ID() string
	Kind() Kind
	ItemCount() (ItemCount, error)
	OnItemCountChanged(listener func(ItemCountEvent)) (*Subscription, error)
	Search(text string) error
	Type(text string) error
	Refresh() error
	Rows(offset, limit int) ([]any, error)
	SelectKeys(keys ...string) error
	DeselectKeys(keys ...string)
	SelectAll() error
	DeselectAll()
	SetVisibleColumns(ids ...string) error
	SetSort(orders ...SortOrder) error
	RunAction(name string) error
	State() State
	Dispose()
}

var (
	_ Controller = (*Grid[int, int])(nil)
)

type SelectionIndicator struct {
	Visible bool   `json:"visible"`
	Text    string `json:"text"`
}

// State is a snapshot of everything a client needs to render a grid.
type State struct {
	ID          string             `json:"id"`
	Kind        Kind               `json:"kind"`
	Placeholder string             `json:"placeholder"`
	SearchText  string             `json:"search_text"`
	ItemCount   ItemCount          `json:"item_count"`
	PageSize    int                `json:"page_size,omitempty"`
	Columns     []ColumnState      `json:"columns"`
	Sort        []SortOrder        `json:"sort"`
	Selected    []string           `json:"selected"`
	Selection   SelectionIndicator `json:"selection"`
	Actions     []ActionState      `json:"actions"`
	Error       string             `json:"error,omitempty"`
}

func (g *Grid[T, F]) State() State {
	count, err := g.ItemCount()

	g.mutex.Lock()
	defer g.mutex.Unlock()

	state := State{
		ID:          g.id,
		Kind:        g.kind,
		Placeholder: g.placeholder,
		SearchText:  g.searchText,
		ItemCount:   count,
		Columns:     g.columnsLocked(),
		Sort:        slices.Clone(g.sort),
		Selected:    g.selectedKeysLocked(),
		Selection: SelectionIndicator{
			Visible: len(g.selected) > 0,
			Text:    selectionText(len(g.selected), g.itemLabel),
		},
		Actions: g.actionsLocked(),
	}
	if state.Sort == nil {
		state.Sort = []SortOrder{}
	}
	if g.kind == Paged {
		state.PageSize = g.paged.PageSize()
	}
	if err != nil {
		state.Error = err.Error()
	}

	return state
}

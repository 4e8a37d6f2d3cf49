package grid

// Kind tells how the items of a grid are provided.
type Kind int

const (
	InMemory Kind = iota + 1
	Paged
)

func (k Kind) String() string {
	switch k {
	case InMemory:
		return "in-memory"
	case Paged:
		return "paged"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ItemCount is the number of items matching the active filter. Estimated is
// true while a paged source has not been counted yet.
type ItemCount struct {
	Count     int  `json:"count"`
	Estimated bool `json:"estimated"`
}

type ItemCountEvent struct {
	ItemCount
	Previous int `json:"previous"`
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

type SortOrder struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

func (o SortOrder) Descending() bool {
	return o.Direction == Descending
}

// Query is handed to the fetch and count callbacks of a paged source. Count
// callbacks receive a zero Offset and Limit.
type Query[F any] struct {
	Offset int
	Limit  int
	Filter F
	Sort   []SortOrder
}

type (
	FetchFunc[T, F any] func(query Query[F]) ([]T, error)
	CountFunc[F any]    func(query Query[F]) (int, error)
	Predicate[T, F any] func(item T, filter F) bool
)

// FilterStrategy applies filters and reports item count changes without
// exposing whether the items live in memory or are fetched page by page.
type FilterStrategy[T, F any] interface {
	Kind() Kind
	SetFilter(filter F) error
	OnItemCountChanged(listener func(ItemCountEvent)) (*Subscription, error)
	ItemCount() (ItemCount, error)
	Fetch(offset, limit int) ([]T, error)
}

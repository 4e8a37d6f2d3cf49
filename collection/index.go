package collection

import (
	"fmt"
	"slices"
	"strings"
)

const (
	IndexTypeMap   = "map"
	IndexTypeBtree = "btree"
)

// Index keeps rows findable by some of their fields.
type Index interface {
	AddRow(row *Row) error
	RemoveRow(row *Row) error
	Traverse(options TraverseOptions, f func(row *Row) bool)
	GetType() string
	GetOptions() *IndexOptions
}

// IndexOptions describes an index. Map indexes use Field and are always
// unique; btree indexes use Fields, a "-" prefix sorts that field descending.
type IndexOptions struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Field  string   `json:"field,omitempty"`
	Fields []string `json:"fields,omitempty"`
	Sparse bool     `json:"sparse"`
	Unique bool     `json:"unique"`
}

type TraverseOptions struct {
	Value   string         `json:"value,omitempty"` // map
	Reverse bool           `json:"reverse"`
	From    map[string]any `json:"from,omitempty"`
	To      map[string]any `json:"to,omitempty"`
}

func newIndex(options *IndexOptions) (Index, error) {
	if options.Name == "" {
		return nil, fmt.Errorf("index name is required")
	}
	switch options.Type {
	case IndexTypeMap, "":
		if options.Field == "" {
			return nil, fmt.Errorf("map index '%s' needs a field", options.Name)
		}
		options.Type = IndexTypeMap
		return NewIndexMap(options), nil
	case IndexTypeBtree:
		if len(options.Fields) == 0 {
			return nil, fmt.Errorf("btree index '%s' needs fields", options.Name)
		}
		return NewIndexBTree(options), nil
	}
	return nil, fmt.Errorf("index type '%s' not supported", options.Type)
}

// Index creates and persists a new index over the existing rows.
func (c *Collection) Index(options *IndexOptions) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.createIndex(options); err != nil {
		return err
	}
	return c.persist(CommandIndex, options)
}

func (c *Collection) createIndex(options *IndexOptions) error {
	if _, exists := c.indexes[options.Name]; exists {
		return fmt.Errorf("%w: '%s'", ErrIndexExists, options.Name)
	}

	index, err := newIndex(options)
	if err != nil {
		return err
	}
	for _, row := range c.rows {
		if err := index.AddRow(row); err != nil {
			return fmt.Errorf("index row %d: %w", row.I, err)
		}
	}
	c.indexes[options.Name] = index

	return nil
}

func (c *Collection) DropIndex(name string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.indexes[name]; !exists {
		return fmt.Errorf("%w: '%s'", ErrIndexNotFound, name)
	}
	delete(c.indexes, name)
	return c.persist(CommandDropIndex, dropIndexPayload{Name: name})
}

func (c *Collection) ListIndexes() []*IndexOptions {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]*IndexOptions, 0, len(c.indexes))
	for _, index := range c.indexes {
		result = append(result, index.GetOptions())
	}
	slices.SortFunc(result, func(a, b *IndexOptions) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}

// indexInsert adds row to every index, or to none.
func indexInsert(indexes map[string]Index, row *Row) error {
	done := []Index{}
	for _, index := range indexes {
		if err := index.AddRow(row); err != nil {
			for _, d := range done {
				d.RemoveRow(row)
			}
			return err
		}
		done = append(done, index)
	}
	return nil
}

func indexRemove(indexes map[string]Index, row *Row) error {
	for _, index := range indexes {
		if err := index.RemoveRow(row); err != nil {
			return err
		}
	}
	return nil
}

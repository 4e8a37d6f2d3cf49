package collection

import (
	"fmt"
	"sync"
)

// IndexMap is a unique index over a string field, or over each element of a
// string array field.
type IndexMap struct {
	Entries map[string]*Row
	RWmutex *sync.RWMutex
	Options *IndexOptions
}

func NewIndexMap(options *IndexOptions) *IndexMap {
	return &IndexMap{
		Entries: map[string]*Row{},
		RWmutex: &sync.RWMutex{},
		Options: options,
	}
}

func (i *IndexMap) keys(row *Row) ([]string, error) {
	value, exists := row.Data[i.Options.Field]
	if !exists {
		if i.Options.Sparse {
			return nil, nil
		}
		return nil, fmt.Errorf("field `%s` is indexed and mandatory", i.Options.Field)
	}

	switch value := value.(type) {
	case string:
		return []string{value}, nil
	case []any:
		keys := make([]string, 0, len(value))
		for _, v := range value {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("field `%s` must hold strings", i.Options.Field)
			}
			keys = append(keys, s)
		}
		return keys, nil
	}
	return nil, fmt.Errorf("field `%s`: type not supported", i.Options.Field)
}

func (i *IndexMap) AddRow(row *Row) error {
	keys, err := i.keys(row)
	if err != nil {
		return err
	}

	i.RWmutex.Lock()
	defer i.RWmutex.Unlock()

	for _, key := range keys {
		if existing, exists := i.Entries[key]; exists && existing.I != row.I {
			return fmt.Errorf("%w: field '%s' with value '%s'", ErrIndexConflict, i.Options.Field, key)
		}
	}
	for _, key := range keys {
		i.Entries[key] = row
	}

	return nil
}

func (i *IndexMap) RemoveRow(row *Row) error {
	keys, err := i.keys(row)
	if err != nil {
		return nil // never indexed
	}

	i.RWmutex.Lock()
	defer i.RWmutex.Unlock()

	for _, key := range keys {
		if existing, ok := i.Entries[key]; ok && existing.I == row.I {
			delete(i.Entries, key)
		}
	}
	return nil
}

func (i *IndexMap) Traverse(options TraverseOptions, f func(row *Row) bool) {
	i.RWmutex.RLock()
	row, ok := i.Entries[options.Value]
	i.RWmutex.RUnlock()

	if ok {
		f(row)
	}
}

func (i *IndexMap) Get(value string) (*Row, bool) {
	i.RWmutex.RLock()
	defer i.RWmutex.RUnlock()
	row, ok := i.Entries[value]
	return row, ok
}

func (i *IndexMap) GetType() string {
	return IndexTypeMap
}

func (i *IndexMap) GetOptions() *IndexOptions {
	return i.Options
}

package collection

import (
	"fmt"

	"github.com/SierraSoftworks/connor"
)

// FindOptions selects rows. Without Index rows are scanned in insertion
// order. Filter is a connor query, e.g. {"species": {"$eq": "human"}}, and
// Where an extra predicate; a row must pass both.
type FindOptions struct {
	Index    string
	Traverse TraverseOptions
	Filter   map[string]any
	Where    func(row *Row) bool
	Skip     int
	Limit    int // 0 means no limit
}

// Find calls f for every selected row until f returns false. Rows must not be
// modified from f.
func (c *Collection) Find(options FindOptions, f func(row *Row) bool) error {

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var matchErr error
	skip := options.Skip
	sent := 0
	visit := func(row *Row) bool {
		ok, err := match(options, row)
		if err != nil {
			matchErr = err
			return false
		}
		if !ok {
			return true
		}
		if skip > 0 {
			skip--
			return true
		}
		sent++
		if !f(row) {
			return false
		}
		return options.Limit <= 0 || sent < options.Limit
	}

	if options.Index == "" {
		if options.Traverse.Reverse {
			for i := len(c.rows) - 1; i >= 0; i-- {
				if !visit(c.rows[i]) {
					break
				}
			}
		} else {
			for _, row := range c.rows {
				if !visit(row) {
					break
				}
			}
		}
		return matchErr
	}

	index, exists := c.indexes[options.Index]
	if !exists {
		return fmt.Errorf("%w: '%s'", ErrIndexNotFound, options.Index)
	}
	index.Traverse(options.Traverse, visit)

	return matchErr
}

// Count returns how many rows pass Filter and Where. Skip and Limit are
// ignored.
func (c *Collection) Count(options FindOptions) (int, error) {
	options.Skip = 0
	options.Limit = 0

	n := 0
	err := c.Find(options, func(*Row) bool {
		n++
		return true
	})
	return n, err
}

// FindBy returns the row whose map index entry is value.
func (c *Collection) FindBy(indexName string, value string) (*Row, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	index, exists := c.indexes[indexName]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrIndexNotFound, indexName)
	}
	m, ok := index.(*IndexMap)
	if !ok {
		return nil, fmt.Errorf("index '%s' is not a map index", indexName)
	}
	row, ok := m.Get(value)
	if !ok {
		return nil, fmt.Errorf("%w: %s '%s'", ErrRowNotFound, m.Options.Field, value)
	}
	return row, nil
}

func match(options FindOptions, row *Row) (bool, error) {
	if len(options.Filter) > 0 {
		ok, err := connor.Match(options.Filter, row.Data)
		if err != nil {
			return false, fmt.Errorf("match: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	if options.Where != nil && !options.Where(row) {
		return false, nil
	}
	return true, nil
}

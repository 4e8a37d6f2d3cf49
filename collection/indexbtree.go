package collection

import (
	"cmp"
	"fmt"
	"strings"
	"sync"

	"github.com/google/btree"
)

// IndexBtree keeps rows sorted by one or more fields. Non unique indexes
// order equal keys by row id.
type IndexBtree struct {
	Btree   *btree.BTreeG[*RowOrdered]
	Options *IndexOptions
	less    func(a, b *RowOrdered) bool
	mutex   sync.RWMutex
}

type RowOrdered struct {
	*Row
	Values []any
}

func NewIndexBTree(options *IndexOptions) *IndexBtree {

	reverse := make([]bool, len(options.Fields))
	for i, field := range options.Fields {
		reverse[i] = strings.HasPrefix(field, "-")
	}

	less := func(a, b *RowOrdered) bool {
		c := compareValues(a.Values, b.Values, reverse)
		if c != 0 || options.Unique {
			return c < 0
		}
		return a.I < b.I
	}

	return &IndexBtree{
		Btree:   btree.NewG(32, less),
		Options: options,
		less:    less,
	}
}

func (b *IndexBtree) fieldName(i int) string {
	return strings.TrimPrefix(b.Options.Fields[i], "-")
}

// values returns nil when a sparse index skips the row.
func (b *IndexBtree) values(row *Row) ([]any, error) {
	values := make([]any, 0, len(b.Options.Fields))
	for i := range b.Options.Fields {
		field := b.fieldName(i)
		value, exists := row.Data[field]
		if exists {
			values = append(values, value)
			continue
		}
		if b.Options.Sparse {
			return nil, nil
		}
		return nil, fmt.Errorf("field '%s' not defined", field)
	}
	return values, nil
}

func (b *IndexBtree) AddRow(r *Row) error {
	values, err := b.values(r)
	if err != nil || values == nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	item := &RowOrdered{Row: r, Values: values}
	if b.Options.Unique {
		if existing, found := b.Btree.Get(item); found && existing.I != r.I {
			pairs := make([]string, len(values))
			for i := range values {
				pairs[i] = fmt.Sprint(b.fieldName(i), ":", values[i])
			}
			return fmt.Errorf("%w: key (%s) already exists", ErrIndexConflict, strings.Join(pairs, ","))
		}
	}

	b.Btree.ReplaceOrInsert(item)
	return nil
}

func (b *IndexBtree) RemoveRow(r *Row) error {
	values, err := b.values(r)
	if err != nil || values == nil {
		return nil // never indexed
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.Btree.Delete(&RowOrdered{Row: r, Values: values})
	return nil
}

func (b *IndexBtree) pivot(from map[string]any) *RowOrdered {
	pivot := &RowOrdered{Row: &Row{}}
	for i := range b.Options.Fields {
		value, exists := from[b.fieldName(i)]
		if !exists {
			break
		}
		pivot.Values = append(pivot.Values, value)
	}
	return pivot
}

// Traverse visits rows in index order. From is inclusive and To exclusive,
// both may name a prefix of the index fields.
func (b *IndexBtree) Traverse(options TraverseOptions, f func(row *Row) bool) {

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	iterator := func(r *RowOrdered) bool {
		return f(r.Row)
	}

	hasFrom := len(options.From) > 0
	hasTo := len(options.To) > 0
	pivotFrom := b.pivot(options.From)
	pivotTo := b.pivot(options.To)

	switch {
	case !hasFrom && !hasTo:
		if options.Reverse {
			b.Btree.Descend(iterator)
		} else {
			b.Btree.Ascend(iterator)
		}
	case hasFrom && !hasTo:
		if options.Reverse {
			b.Btree.Descend(func(r *RowOrdered) bool {
				if b.less(r, pivotFrom) {
					return false
				}
				return iterator(r)
			})
		} else {
			b.Btree.AscendGreaterOrEqual(pivotFrom, iterator)
		}
	case !hasFrom && hasTo:
		if options.Reverse {
			b.Btree.DescendLessOrEqual(pivotTo, func(r *RowOrdered) bool {
				if !b.less(r, pivotTo) {
					return true
				}
				return iterator(r)
			})
		} else {
			b.Btree.AscendLessThan(pivotTo, iterator)
		}
	default:
		if options.Reverse {
			b.Btree.DescendLessOrEqual(pivotTo, func(r *RowOrdered) bool {
				if !b.less(r, pivotTo) {
					return true
				}
				if b.less(r, pivotFrom) {
					return false
				}
				return iterator(r)
			})
		} else {
			b.Btree.AscendRange(pivotFrom, pivotTo, iterator)
		}
	}
}

func (b *IndexBtree) GetType() string {
	return IndexTypeBtree
}

func (b *IndexBtree) GetOptions() *IndexOptions {
	return b.Options
}

// compareValues compares the common prefix of a and b. Values of different
// kinds sort nil, bool, number, string.
func compareValues(a, b []any, reverse []bool) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		c := compareValue(a[i], b[i])
		if c == 0 {
			continue
		}
		if i < len(reverse) && reverse[i] {
			return -c
		}
		return c
	}
	return 0
}

func compareValue(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	if ra == 2 {
		na, _ := number(a)
		nb, _ := number(b)
		return cmp.Compare(na, nb)
	}
	switch a := a.(type) {
	case bool:
		bb := b.(bool)
		switch {
		case a == bb:
			return 0
		case !a:
			return -1
		}
		return 1
	case string:
		return strings.Compare(a, b.(string))
	}
	return 0
}

func rank(v any) int {
	if _, ok := number(v); ok {
		return 2
	}
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case string:
		return 3
	}
	return 4
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

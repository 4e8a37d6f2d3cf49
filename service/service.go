package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/fulldump/labgrid/collection"
	"github.com/fulldump/labgrid/database"
	"github.com/fulldump/labgrid/utils"
)

const (
	indexById         = "by-id"
	indexByCode       = "by-code"
	indexByProject    = "by-project"
	indexByExperiment = "by-experiment"
)

type Options struct {
	// Debounce and PageSize configure the grids of every view, zero values
	// pick the grid defaults.
	Debounce time.Duration
	PageSize int

	// ViewTTL closes views not accessed for that long. Zero keeps them.
	ViewTTL time.Duration
}

type Service struct {
	db      *database.Database
	options Options

	// serializes registrations, codes are sequential
	mutex sync.Mutex

	projects     *collection.Collection
	experiments  *collection.Collection
	samples      *collection.Collection
	measurements *collection.Collection

	views *views
}

func NewService(db *database.Database, options Options) (*Service, error) {
	s := &Service{
		db:      db,
		options: options,
		views:   newViews(),
	}

	var err error
	s.projects, err = ensureCollection(db, "projects",
		&collection.IndexOptions{Name: indexById, Type: collection.IndexTypeMap, Field: "id"},
		&collection.IndexOptions{Name: indexByCode, Type: collection.IndexTypeMap, Field: "code"},
	)
	if err != nil {
		return nil, err
	}
	s.experiments, err = ensureCollection(db, "experiments",
		&collection.IndexOptions{Name: indexById, Type: collection.IndexTypeMap, Field: "id"},
		&collection.IndexOptions{Name: indexByProject, Type: collection.IndexTypeBtree, Fields: []string{"projectId", "name"}, Unique: true},
	)
	if err != nil {
		return nil, err
	}
	s.samples, err = ensureCollection(db, "samples",
		&collection.IndexOptions{Name: indexById, Type: collection.IndexTypeMap, Field: "id"},
		&collection.IndexOptions{Name: indexByCode, Type: collection.IndexTypeMap, Field: "code"},
		&collection.IndexOptions{Name: indexByExperiment, Type: collection.IndexTypeBtree, Fields: []string{"experimentId", "code"}},
	)
	if err != nil {
		return nil, err
	}
	s.measurements, err = ensureCollection(db, "measurements",
		&collection.IndexOptions{Name: indexById, Type: collection.IndexTypeMap, Field: "id"},
		&collection.IndexOptions{Name: indexByCode, Type: collection.IndexTypeMap, Field: "code"},
		&collection.IndexOptions{Name: indexByExperiment, Type: collection.IndexTypeBtree, Fields: []string{"experimentId", "code"}},
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// ensureCollection opens the collection and creates whatever defaults and
// indexes it is still missing.
func ensureCollection(db *database.Database, name string, indexes ...*collection.IndexOptions) (*collection.Collection, error) {
	col, err := db.GetOrCreateCollection(name)
	if err != nil {
		return nil, fmt.Errorf("open collection '%s': %w", name, err)
	}

	if len(col.Defaults()) == 0 {
		err := col.SetDefaults(map[string]any{"id": "uuid()"})
		if err != nil {
			return nil, fmt.Errorf("set defaults '%s': %w", name, err)
		}
	}

	existing := map[string]*collection.IndexOptions{}
	for _, options := range col.ListIndexes() {
		existing[options.Name] = options
	}
	for _, options := range indexes {
		if _, exists := existing[options.Name]; exists {
			continue
		}
		if err := col.Index(options); err != nil {
			return nil, fmt.Errorf("index '%s.%s': %w", name, options.Name, err)
		}
	}

	return col, nil
}

func decodeRow[T any](row *collection.Row) (*T, error) {
	item := new(T)
	if err := utils.Remarshal(row.Data, item); err != nil {
		return nil, fmt.Errorf("decode row %d: %w", row.I, err)
	}
	return item, nil
}

func decodeRows[T any](rows []*collection.Row) ([]*T, error) {
	result := make([]*T, 0, len(rows))
	for _, row := range rows {
		item, err := decodeRow[T](row)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func findRows(col *collection.Collection, options collection.FindOptions) ([]*collection.Row, error) {
	rows := []*collection.Row{}
	err := col.Find(options, func(row *collection.Row) bool {
		rows = append(rows, row)
		return true
	})
	return rows, err
}

func findById[T any](col *collection.Collection, id string, notFound error) (*T, *collection.Row, error) {
	row, err := col.FindBy(indexById, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: '%s'", notFound, id)
	}
	item, err := decodeRow[T](row)
	return item, row, err
}

// keyRange selects the rows of a btree index whose first field is value.
func keyRange(field, value string) collection.TraverseOptions {
	return collection.TraverseOptions{
		From: map[string]any{field: value},
		To:   map[string]any{field: value + "\x00"},
	}
}

package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatibleDataSource is returned when a strategy finds its data
	// source is no longer of the kind it was configured for.
	ErrIncompatibleDataSource = errors.New("incompatible data source")

	// ErrArgumentRequired is returned by constructors when a mandatory
	// argument is missing.
	ErrArgumentRequired = errors.New("argument required")

	ErrDuplicateColumn   = errors.New("duplicate column")
	ErrColumnNotFound    = errors.New("column not found")
	ErrColumnNotSortable = errors.New("column not sortable")
	ErrActionNotFound    = errors.New("action not found")
	ErrDisposed          = errors.New("grid disposed")
)

func argumentRequired(name string) error {
	return fmt.Errorf("%w: %s", ErrArgumentRequired, name)
}

func incompatible(expected, actual Kind) error {
	return fmt.Errorf("%w: %s data unexpected, strategy expects %s (changed after configuration?)", ErrIncompatibleDataSource, actual, expected)
}

package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrMissingHeader        = errors.New("missing header row")
	ErrMissingStationColumn = errors.New("missing station column")
	ErrBlankStation         = errors.New("blank station value in first row")
)

// LoadError is returned when the data directory or one of its files cannot be
// read or parsed. It aborts registry construction.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DuplicateStationError is returned by BuildIndex when two tables report the
// same station name.
type DuplicateStationError struct {
	Station string
	First   int
	Second  int
}

func (e *DuplicateStationError) Error() string {
	return fmt.Sprintf("duplicate station %q at positions %d and %d", e.Station, e.First, e.Second)
}

// EmptyTableError is returned by BuildIndex when a table has no data rows and
// therefore no station to index.
type EmptyTableError struct {
	Index int
	File  string
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("table %d (%s) has no rows", e.Index, e.File)
}

// UnknownStationError is returned by Resolve for names outside the index.
type UnknownStationError struct {
	Station string
}

func (e *UnknownStationError) Error() string {
	return fmt.Sprintf("unknown station %q", e.Station)
}

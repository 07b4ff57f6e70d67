package model

import "errors"

// Table and summary errors.
// They are wrapped with positional context (row index, table length, node
// count) by the functions that return them, so callers should match them
// with errors.Is.
var (
	// ErrRowOutOfRange is returned when a row is accessed by a position the
	// table does not have.
	ErrRowOutOfRange = errors.New("row index out of range")

	// ErrNodesNotFound is returned when no row carries the requested node count.
	ErrNodesNotFound = errors.New("no row with the requested node count")

	// ErrUnknownColumn is returned for a column name the table does not hold.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNotDerived is returned when the derived column is requested before
	// Table.Derive has run.
	ErrNotDerived = errors.New("derived column has not been computed")

	// ErrEmptyTable is returned when a summary is requested for a table
	// without rows.
	ErrEmptyTable = errors.New("table has no rows")

	// ErrNoComparableValues is returned when every value of a summarized
	// column is NaN.
	ErrNoComparableValues = errors.New("column has no comparable values")

	// ErrInvalidLookup is returned by ParseDelayLookup for an unknown mode.
	ErrInvalidLookup = errors.New("invalid delay lookup mode: must be \"position\" or \"nodes\"")
)

package model

import (
	"fmt"
	"math"
)

// Column identifies one column of the result table by its CSV header name.
type Column string

// Columns of the result table. The first five are read from the input file;
// ColumnPerNodeThroughput is appended by Table.Derive.
const (
	ColumnNodes             Column = "Nodes"
	ColumnThroughput        Column = "Throughput"
	ColumnPDR               Column = "PDR"
	ColumnDelay             Column = "Delay"
	ColumnCollisions        Column = "Collisions"
	ColumnPerNodeThroughput Column = "PerNodeThroughput"
)

// InputColumns lists the columns that must be present in the input header,
// in the order the simulator writes them.
func InputColumns() []Column {
	return []Column{ColumnNodes, ColumnThroughput, ColumnPDR, ColumnDelay, ColumnCollisions}
}

// Row is one simulation run at a given node count.
type Row struct {
	// Nodes is the number of participating stations.
	Nodes int

	// Throughput is the aggregate throughput in Mbps.
	Throughput float64

	// PDR is the packet delivery ratio, nominally in [0, 1].
	PDR float64

	// Delay is the average end-to-end delay in milliseconds.
	Delay float64

	// Collisions is the estimated collision count.
	Collisions float64

	// PerNodeThroughput is Throughput / Nodes. It is zero until
	// Table.Derive runs.
	PerNodeThroughput float64
}

// Value returns the row's value for the given column.
func (r Row) Value(c Column) (float64, error) {
	switch c {
	case ColumnNodes:
		return float64(r.Nodes), nil
	case ColumnThroughput:
		return r.Throughput, nil
	case ColumnPDR:
		return r.PDR, nil
	case ColumnDelay:
		return r.Delay, nil
	case ColumnCollisions:
		return r.Collisions, nil
	case ColumnPerNodeThroughput:
		return r.PerNodeThroughput, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, string(c))
	}
}

// Table holds the result rows in run order.
// Row order is the order of the input file, not necessarily ascending node
// count. After Derive the table is treated as read-only.
type Table struct {
	// Source is the path the table was loaded from, if any.
	Source string

	rows    []Row
	derived bool

	// integer marks input columns whose every cell was an integer literal.
	integer map[Column]bool
}

// NewTable creates a table from rows. The slice is copied.
func NewTable(source string, rows []Row) *Table {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Table{Source: source, rows: cp}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []Row {
	cp := make([]Row, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Derived reports whether the per-node throughput column has been computed.
func (t *Table) Derived() bool {
	return t.derived
}

// Derive computes PerNodeThroughput = Throughput / Nodes for every row.
// There is no guard against Nodes == 0: such rows get +Inf, -Inf or NaN
// following IEEE 754 division. Calling Derive again is a no-op.
func (t *Table) Derive() {
	if t.derived {
		return
	}
	for i := range t.rows {
		t.rows[i].PerNodeThroughput = t.rows[i].Throughput / float64(t.rows[i].Nodes)
	}
	t.derived = true
}

// MarkInteger records that every cell of the given columns was written
// as an integer literal. Values of those columns print without a
// fractional part, the way an integer-typed column prints.
func (t *Table) MarkInteger(cols ...Column) {
	if t.integer == nil {
		t.integer = make(map[Column]bool, len(cols))
	}
	for _, c := range cols {
		t.integer[c] = true
	}
}

// IsInteger reports whether values of c print as integers. Nodes always
// does; the derived column never does.
func (t *Table) IsInteger(c Column) bool {
	switch c {
	case ColumnNodes:
		return true
	case ColumnPerNodeThroughput:
		return false
	}
	return t.integer[c]
}

// FormatValue formats a value of column c for display.
func (t *Table) FormatValue(c Column, v float64) string {
	return formatValue(t.IsInteger(c), v)
}

// Row returns the row at position i.
func (t *Table) Row(i int) (Row, error) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, fmt.Errorf("%w: index %d, table has %d rows", ErrRowOutOfRange, i, len(t.rows))
	}
	return t.rows[i], nil
}

// IndexOfNodes returns the position of the first row whose Nodes equals n.
func (t *Table) IndexOfNodes(n int) (int, error) {
	for i, r := range t.rows {
		if r.Nodes == n {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrNodesNotFound, n)
}

// Column returns the values of column c in row order.
// The derived column is only available after Derive.
func (t *Table) Column(c Column) ([]float64, error) {
	if c == ColumnPerNodeThroughput && !t.derived {
		return nil, ErrNotDerived
	}
	values := make([]float64, len(t.rows))
	for i, r := range t.rows {
		v, err := r.Value(c)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// NonFiniteRows returns the positions of rows whose derived per-node
// throughput is infinite or NaN. It returns nil before Derive.
func (t *Table) NonFiniteRows() []int {
	if !t.derived {
		return nil
	}
	var idx []int
	for i, r := range t.rows {
		if !IsFinite(r.PerNodeThroughput) {
			idx = append(idx, i)
		}
	}
	return idx
}

// IsFinite reports whether v is neither infinite nor NaN.
func IsFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

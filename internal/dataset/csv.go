package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nao1215/csmareport/internal/model"
)

// utf8BOM is stripped from the first header cell; spreadsheet tools like to
// prepend it when re-saving CSV files.
const utf8BOM = "\ufeff"

// Load opens the CSV file at path, parses it and closes it.
// A missing or unreadable file returns the wrapped *fs.PathError.
func Load(path string) (*model.Table, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	table, err := Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// Parse reads a results table from r. source is recorded as the table's
// origin and may be empty.
func Parse(r io.Reader, source string) (*model.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	// integer tracks the measurement columns in which every cell so far
	// is an integer literal.
	integer := map[model.Column]bool{
		model.ColumnThroughput: true,
		model.ColumnPDR:        true,
		model.ColumnDelay:      true,
		model.ColumnCollisions: true,
	}

	var rows []model.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRow(record, index, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)

		for c, ok := range integer {
			if ok && !isIntegerLiteral(record[index[c]]) {
				integer[c] = false
			}
		}
	}

	table := model.NewTable(source, rows)
	if len(rows) > 0 {
		for _, c := range model.InputColumns() {
			if integer[c] {
				table.MarkInteger(c)
			}
		}
	}
	return table, nil
}

// columnIndex maps every required column to its position in the header.
func columnIndex(header []string) (map[model.Column]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	index := make(map[model.Column]int, len(model.InputColumns()))
	for _, c := range model.InputColumns() {
		pos, ok := positions[string(c)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, string(c))
		}
		index[c] = pos
	}
	return index, nil
}

// parseRow converts one CSV record into a Row.
func parseRow(record []string, index map[model.Column]int, line int) (model.Row, error) {
	var row model.Row

	nodes, err := parseInt(record[index[model.ColumnNodes]])
	if err != nil {
		return row, malformed(line, model.ColumnNodes, err)
	}
	row.Nodes = nodes

	floats := []struct {
		column model.Column
		dst    *float64
	}{
		{model.ColumnThroughput, &row.Throughput},
		{model.ColumnPDR, &row.PDR},
		{model.ColumnDelay, &row.Delay},
		{model.ColumnCollisions, &row.Collisions},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[index[f.column]]), 64)
		if err != nil {
			return row, malformed(line, f.column, err)
		}
		*f.dst = v
	}

	return row, nil
}

// parseInt accepts plain integers and integral floats such as "12.0".
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return int(f), nil
}

// isIntegerLiteral reports whether s is written as a plain integer.
func isIntegerLiteral(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

func malformed(line int, c model.Column, err error) error {
	return fmt.Errorf("%w: line %d, column %s: %w", ErrMalformedValue, line, string(c), err)
}

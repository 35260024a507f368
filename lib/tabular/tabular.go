// Package tabular parses header-first csv files into an in-memory table
// of named columns and string rows.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"datapeek/lib/textutil"

	"github.com/antzucaro/matchr"
)

var ErrEmpty = fmt.Errorf("empty input: no header row")
var ErrNoColumn = fmt.Errorf("no such column")

// Kind classifies a column by the values observed in it, never by
// declaration. Empty cells carry no evidence and are skipped.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

type Column struct {
	Name string
	Kind Kind
}

// Table is one parsed csv file: the header row as ordered columns and
// every following row as strings, exactly as they appeared in the file.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Read parses header-first csv. The first row names the columns
// verbatim and in order. Rows whose field count disagrees with the
// header fail the whole read; no partial table is returned.
func Read(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	header := records[0]
	rows := records[1:]
	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name, Kind: inferKind(rows, i)}
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func inferKind(rows [][]string, col int) Kind {
	kind := KindInt
	seen := false
	for _, row := range rows {
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			kind = KindFloat
			continue
		}
		return KindString
	}
	if !seen {
		return KindString
	}
	return kind
}

// Head returns the first n rows in file order, or every row when the
// table holds fewer than n.
func (t *Table) Head(n int) [][]string {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (t *Table) columnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, nil
		}
	}

	var mostSimilarity float64
	var mostSimilar string
	for _, c := range t.Columns {
		similarity := matchr.JaroWinkler(
			textutil.NormalizeName(name),
			textutil.NormalizeName(c.Name),
			false,
		)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilar = c.Name
		}
	}
	if mostSimilarity > 0.8 {
		return -1, fmt.Errorf("%w: %q (closest match: %q)", ErrNoColumn, name, mostSimilar)
	}
	return -1, fmt.Errorf("%w: %q", ErrNoColumn, name)
}

// Column returns the named column's values, one per row. An unknown
// name fails with the closest-named column as a suggestion.
func (t *Table) Column(name string) ([]string, error) {
	i, err := t.columnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(t.Rows))
	for j, row := range t.Rows {
		values[j] = row[i]
	}
	return values, nil
}

// Rename relabels columns in place. Mapping keys the header does not
// have are ignored.
func (t *Table) Rename(mapping map[string]string) {
	for i := range t.Columns {
		if to, ok := mapping[t.Columns[i].Name]; ok {
			t.Columns[i].Name = to
		}
	}
}

// Floats coerces the named column to numbers. A trailing percent sign
// is stripped, so "45%" reads as 45. Blank or unparseable cells become
// NaN instead of failing the caller.
func (t *Table) Floats(name string) ([]float64, error) {
	i, err := t.columnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(t.Rows))
	for j, row := range t.Rows {
		cell := strings.TrimSpace(row[i])
		cell = strings.TrimSpace(strings.TrimSuffix(cell, "%"))
		if cell == "" {
			values[j] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			values[j] = math.NaN()
			continue
		}
		values[j] = v
	}
	return values, nil
}

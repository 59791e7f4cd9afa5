// Package table holds the immutable tabular dataset the engine reads.
// A Table is produced once by ingestion and never mutated afterwards;
// every analysis step works on derived copies.
package table

import (
	"strings"
)

// Table is an ordered set of uniquely named columns plus a row sequence.
// Cells are the trimmed string forms delivered by ingestion; an empty
// string is a missing cell.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New builds a Table from raw headers and rows. Headers are normalized,
// headers that normalize to the empty string are dropped together with
// their cells, and duplicates are disambiguated with .1, .2, … suffixes.
// Rows shorter than the header are padded with missing cells.
func New(headers []string, rows [][]string) *Table {
	keep := make([]int, 0, len(headers))
	names := make([]string, 0, len(headers))
	for i, h := range headers {
		n := Normalize(h)
		if n == "" {
			continue
		}
		keep = append(keep, i)
		names = append(names, n)
	}
	names = MakeUnique(names)

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(keep))
		for j, src := range keep {
			if src < len(row) {
				cells[j] = strings.TrimSpace(row[src])
			}
		}
		out = append(out, cells)
	}
	return &Table{Columns: names, Rows: out}
}

// ColumnIndex resolves a recipe column reference against the table.
// References are normalized before matching so "Store Name" and
// "store_name" address the same column. The plain normalized form is
// tried first, so a header whose raw name ends in ".<digits>" (which
// normalizes the dot away) still resolves; dedupe references like
// "amount.1" keep their suffix through the fallback match.
func (t *Table) ColumnIndex(name string) (int, bool) {
	want := Normalize(name)
	for i, c := range t.Columns {
		if c == want {
			return i, true
		}
	}

	base, suffix := splitDedupeSuffix(name)
	if suffix == "" {
		return 0, false
	}
	want = Normalize(base) + suffix
	for i, c := range t.Columns {
		if c == want {
			return i, true
		}
	}
	return 0, false
}

// Column returns a copy of one column's cells.
func (t *Table) Column(idx int) []string {
	vals := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = row[idx]
	}
	return vals
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

func splitDedupeSuffix(name string) (base, suffix string) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return name, ""
	}
	for _, r := range name[dot+1:] {
		if r < '0' || r > '9' {
			return name, ""
		}
	}
	return name[:dot], name[dot:]
}

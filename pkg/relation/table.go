// Package relation implements the in-memory tables used to evaluate rule
// bodies: cartesian product, equi-join on same-named columns, projection,
// and conversion back into predicates.
//
// Columns are parameter names taken from a rule's predicates, not data.
// Rows are never deduplicated.
package relation

import (
	"github.com/vilterp/logicdb/pkg/lang"
	pp "github.com/vilterp/logicdb/pkg/prettyprint"
)

type Row []lang.Term

type Table struct {
	Columns []string
	Rows    []Row
}

func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Columns: cols,
	}
}

// FromPredicates makes one row per fact, labeling the positions with
// columns. Every fact must have exactly len(columns) terms.
func FromPredicates(facts []lang.Predicate, columns []string) (*Table, error) {
	table := New(columns)
	table.Rows = make([]Row, 0, len(facts))
	for _, fact := range facts {
		if fact.Arity() != len(columns) {
			return nil, &SchemaMismatchError{
				Columns:   table.Columns,
				Predicate: fact.String(),
			}
		}
		table.Rows = append(table.Rows, Row(fact.Terms()))
	}
	return table, nil
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Times returns the cartesian product of t and other. Rows come out in
// (row of t, row of other) order.
func (t *Table) Times(other *Table) *Table {
	out := New(append(append([]string{}, t.Columns...), other.Columns...))
	out.Rows = make([]Row, 0, len(t.Rows)*len(other.Rows))
	for _, left := range t.Rows {
		for _, right := range other.Rows {
			row := make(Row, 0, len(left)+len(right))
			row = append(row, left...)
			row = append(row, right...)
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Join is the cartesian product restricted to rows that agree on every pair
// of identically named columns.
func (t *Table) Join(other *Table) *Table {
	return t.Times(other).Restrict()
}

// Restrict keeps the rows that agree on every pair of identically named
// columns. A table built from a predicate like E(x,x) keeps only the rows
// whose two positions are equal.
func (t *Table) Restrict() *Table {
	type colPair struct{ i, j int }
	var pairs []colPair
	for i := range t.Columns {
		for j := i + 1; j < len(t.Columns); j++ {
			if t.Columns[i] == t.Columns[j] {
				pairs = append(pairs, colPair{i, j})
			}
		}
	}
	if len(pairs) == 0 {
		return t
	}

	out := New(t.Columns)
	out.Rows = make([]Row, 0, len(t.Rows))
rows:
	for _, row := range t.Rows {
		for _, pair := range pairs {
			if row[pair.i] != row[pair.j] {
				continue rows
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Project returns a table with exactly the given columns, in the given order
// (duplicates allowed). Each value comes from the first column of t with the
// requested name.
func (t *Table) Project(names []string) (*Table, error) {
	indices := make([]int, len(names))
	for idx, name := range names {
		found := -1
		for colIdx, col := range t.Columns {
			if col == name {
				found = colIdx
				break
			}
		}
		if found == -1 {
			return nil, &MissingColumnError{
				Column:  name,
				Columns: t.Columns,
			}
		}
		indices[idx] = found
	}

	out := New(names)
	out.Rows = make([]Row, len(t.Rows))
	for rowIdx, row := range t.Rows {
		projected := make(Row, len(indices))
		for idx, colIdx := range indices {
			projected[idx] = row[colIdx]
		}
		out.Rows[rowIdx] = projected
	}
	return out, nil
}

// ToPredicates turns each row into a predicate with the given name.
func (t *Table) ToPredicates(name string) []lang.Predicate {
	preds := make([]lang.Predicate, len(t.Rows))
	for idx, row := range t.Rows {
		preds[idx] = lang.NewPredicate(name, row)
	}
	return preds
}

func (t *Table) Format() pp.Doc {
	rows := make([][]string, len(t.Rows))
	for rowIdx, row := range t.Rows {
		cells := make([]string, len(row))
		for idx, term := range row {
			cells[idx] = term.Format().String()
		}
		rows[rowIdx] = cells
	}
	return pp.Table(t.Columns, rows)
}

func (t *Table) String() string {
	return t.Format().String()
}

package relation

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vilterp/logicdb/pkg/lang"
)

func table(t *testing.T, columns string, rows ...string) *Table {
	t.Helper()
	cols := strings.Split(columns, ",")
	facts := make([]lang.Predicate, len(rows))
	for idx, row := range rows {
		facts[idx] = lang.P("T", strings.Split(row, ",")...)
	}
	tbl, err := FromPredicates(facts, cols)
	require.NoError(t, err)
	return tbl
}

func rowStrings(tbl *Table) []string {
	out := make([]string, len(tbl.Rows))
	for idx, row := range tbl.Rows {
		out[idx] = lang.NewPredicate("", row).String()
	}
	return out
}

func TestTimes(t *testing.T) {
	a := table(t, "x,y", "a,b", "b,c")
	b := table(t, "y,z", "b,d", "c,e", "c,f")

	product := a.Times(b)
	require.Equal(t, []string{"x", "y", "y", "z"}, product.Columns)
	require.Equal(t, []string{
		"(a,b,b,d)", "(a,b,c,e)", "(a,b,c,f)",
		"(b,c,b,d)", "(b,c,c,e)", "(b,c,c,f)",
	}, rowStrings(product))
}

func TestJoin(t *testing.T) {
	cases := []struct {
		a, b    *Table
		columns []string
		rows    []string
	}{
		{
			table(t, "x,y", "a,b", "b,c"),
			table(t, "y,z", "b,d", "c,e", "c,f"),
			[]string{"x", "y", "y", "z"},
			[]string{"(a,b,b,d)", "(b,c,c,e)", "(b,c,c,f)"},
		},
		// Shared variable x, as in R(x) <- P(x); Q(x).
		{
			table(t, "x", "x", "y"),
			table(t, "x", "x"),
			[]string{"x", "x"},
			[]string{"(x,x)"},
		},
		// No shared column: plain product.
		{
			table(t, "x", "a", "b"),
			table(t, "y", "c"),
			[]string{"x", "y"},
			[]string{"(a,c)", "(b,c)"},
		},
		// Repeated variable inside one operand, as in S(x) <- E(x,x); F(x).
		{
			table(t, "x,x", "a,a", "a,b", "b,b"),
			table(t, "x", "b", "a"),
			[]string{"x", "x", "x"},
			[]string{"(a,a,a)", "(b,b,b)"},
		},
		// Adjacent rows removed in one pass must not be skipped.
		{
			table(t, "x", "a", "a", "a", "b"),
			table(t, "x", "b"),
			[]string{"x", "x"},
			[]string{"(b,b)"},
		},
		{
			table(t, "x"),
			table(t, "x", "a"),
			[]string{"x", "x"},
			[]string{},
		},
	}

	for idx, testCase := range cases {
		joined := testCase.a.Join(testCase.b)
		if diff := cmp.Diff(testCase.columns, joined.Columns); diff != "" {
			t.Fatalf("case %d: columns (-want +got):\n%s", idx, diff)
		}
		if diff := cmp.Diff(testCase.rows, rowStrings(joined)); diff != "" {
			t.Fatalf("case %d: rows (-want +got):\n%s", idx, diff)
		}
	}
}

func TestRestrict(t *testing.T) {
	tbl := table(t, "x,x", "a,a", "a,b", "c,c")
	require.Equal(t, []string{"(a,a)", "(c,c)"}, rowStrings(tbl.Restrict()))
	require.Len(t, tbl.Rows, 3)

	distinct := table(t, "x,y", "a,b")
	require.Same(t, distinct, distinct.Restrict())
}

func TestProject(t *testing.T) {
	tbl := table(t, "x,y,y,z", "a,b,b,d", "b,c,c,e")

	projected, err := tbl.Project([]string{"z", "x"})
	require.NoError(t, err)
	require.Equal(t, []string{"z", "x"}, projected.Columns)
	require.Equal(t, []string{"(d,a)", "(e,b)"}, rowStrings(projected))

	projected, err = tbl.Project([]string{"x", "x"})
	require.NoError(t, err)
	require.Equal(t, []string{"(a,a)", "(b,b)"}, rowStrings(projected))

	_, err = tbl.Project([]string{"x", "w"})
	require.EqualError(t, err, "no column w to project from (x,y,y,z)")
	_, ok := err.(*MissingColumnError)
	require.True(t, ok)
}

func TestFromPredicatesArity(t *testing.T) {
	_, err := FromPredicates(
		[]lang.Predicate{lang.P("L", "a", "b"), lang.P("L", "c")},
		[]string{"x", "y"},
	)
	require.EqualError(t, err, "fact L(c) doesn't fit columns (x,y)")
}

func TestToPredicates(t *testing.T) {
	tbl := table(t, "x,y", "a,b", "b,c", "a,b")
	preds := tbl.ToPredicates("M")
	require.Equal(t, []string{"M(a,b)", "M(b,c)", "M(a,b)"}, lang.Strings(preds))
}

func TestFormat(t *testing.T) {
	tbl := table(t, "x,yy", "abc,d")
	require.Equal(t, "x   | yy\n----+---\nabc | d", tbl.String())
}

// Property checks over random tables.

func randomTable(rng *rand.Rand, columns []string) *Table {
	tbl := New(columns)
	values := []string{"a", "b", "c"}
	numRows := rng.Intn(6)
	tbl.Rows = make([]Row, 0, numRows)
	for i := 0; i < numRows; i++ {
		row := make(Row, len(columns))
		for idx := range row {
			row[idx] = lang.Constant(values[rng.Intn(len(values))])
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

func randomColumns(rng *rand.Rand) []string {
	names := []string{"x", "y", "z"}
	cols := make([]string, 1+rng.Intn(3))
	for idx := range cols {
		cols[idx] = names[rng.Intn(len(names))]
	}
	return cols
}

// canonicalRows renders each row as its sorted name=value bindings. After a
// join, same-named columns hold the same value, so this is well defined.
func canonicalRows(tbl *Table) []string {
	out := make([]string, len(tbl.Rows))
	for rowIdx, row := range tbl.Rows {
		bindings := map[string]string{}
		for idx, col := range tbl.Columns {
			bindings[col] = row[idx].Format().String()
		}
		var parts []string
		for col, val := range bindings {
			parts = append(parts, fmt.Sprintf("%s=%s", col, val))
		}
		sort.Strings(parts)
		out[rowIdx] = strings.Join(parts, ",")
	}
	sort.Strings(out)
	return out
}

func TestTableProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := randomTable(rng, randomColumns(rng))
		b := randomTable(rng, randomColumns(rng))

		product := a.Times(b)
		require.Equal(t, a.Len()*b.Len(), product.Len(), "iteration %d", i)

		ab := a.Join(b)
		require.LessOrEqual(t, ab.Len(), product.Len(), "iteration %d", i)

		ba := b.Join(a)
		require.Equal(t, canonicalRows(ab), canonicalRows(ba), "iteration %d:\n%s", i, spew.Sdump(a, b))

		// Projecting onto the own columns is the identity once same-named
		// columns agree, since each name reads its first column.
		restricted := a.Restrict()
		identity, err := restricted.Project(restricted.Columns)
		require.NoError(t, err)
		require.Equal(t, restricted.Rows, identity.Rows, "iteration %d:\n%s", i, spew.Sdump(a))
	}
}

func TestProjectDuplicateColumnsTakeFirst(t *testing.T) {
	tbl := table(t, "x,x,z", "b,a,c", "a,a,d")

	projected, err := tbl.Project(tbl.Columns)
	require.NoError(t, err)
	require.Equal(t, []string{"(b,b,c)", "(a,a,d)"}, rowStrings(projected))

	projected, err = tbl.Project([]string{"z", "x"})
	require.NoError(t, err)
	require.Equal(t, []string{"(c,b)", "(d,a)"}, rowStrings(projected))
}

package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKnowledgeBase(t *testing.T) {
	cases := []struct {
		facts []Predicate
		rules []Rule
		error string
	}{
		{
			[]Predicate{P("L", "a", "b"), P("L", "b", "c")},
			[]Rule{MustRule(P("M", "x", "y"), P("L", "x", "y"))},
			"",
		},
		{
			[]Predicate{P("L", "a", "b"), P("L", "b")},
			nil,
			"predicate L has arity 2, but fact L(b) uses it with 1 terms",
		},
		{
			[]Predicate{P("L", "a", "b")},
			[]Rule{MustRule(P("M", "x"), P("L", "x"))},
			"predicate L has arity 2, but rule M(x) <- L(x) uses it with 1 terms",
		},
		{
			[]Predicate{P("L", "a", "?")},
			nil,
			"wildcard not allowed in fact: L(a,?)",
		},
	}

	for idx, testCase := range cases {
		_, err := NewKnowledgeBase(testCase.facts, testCase.rules)
		if testCase.error == "" {
			require.NoError(t, err, "case %d", idx)
			continue
		}
		require.EqualError(t, err, testCase.error, "case %d", idx)
	}
}

func TestKnowledgeBaseLookup(t *testing.T) {
	kb, err := NewKnowledgeBase(
		[]Predicate{P("L", "a", "b"), P("P", "x"), P("L", "b", "c")},
		[]Rule{
			MustRule(P("M", "x", "y"), P("L", "x", "y")),
			MustRule(P("N", "x"), P("P", "x")),
			MustRule(P("M", "y", "x"), P("L", "x", "y")),
		},
	)
	require.NoError(t, err)

	require.Equal(t, []Predicate{P("L", "a", "b"), P("L", "b", "c")}, kb.FactsNamed("L"))
	require.Empty(t, kb.FactsNamed("M"))
	require.Len(t, kb.RulesFor("M"), 2)
	require.Equal(t, "M(y,x) <- L(x,y)", kb.RulesFor("M")[1].String())

	arity, ok := kb.Arity("M")
	require.True(t, ok)
	require.Equal(t, 2, arity)
	_, ok = kb.Arity("Z")
	require.False(t, ok)

	require.Equal(t, `facts:
  L(a,b)
  P(x)
  L(b,c)
rules:
  M(x,y) <- L(x,y)
  N(x) <- P(x)
  M(y,x) <- L(x,y)`, kb.Format().String())
}

package lang

import (
	pp "github.com/vilterp/logicdb/pkg/prettyprint"
)

// Term is either a Constant or the Wildcard. Terms are comparable with ==.
type Term interface {
	Format() pp.Doc
	isTerm()
}

// Constant

// Constant is an opaque token. In facts it is a value; in rules it names a
// variable, and variables unify by string equality.
type Constant string

var _ Term = Constant("")

func (c Constant) Format() pp.Doc {
	return pp.Text(string(c))
}

func (Constant) isTerm() {}

// Wildcard

type wildcard struct{}

// Wildcard matches any term and carries no value.
var Wildcard Term = wildcard{}

func (wildcard) Format() pp.Doc {
	return pp.Text("?")
}

func (wildcard) isTerm() {}

func IsWildcard(t Term) bool {
	_, ok := t.(wildcard)
	return ok
}

// Constants builds a term list out of raw tokens, with "?" read as the wildcard.
func Constants(tokens ...string) []Term {
	terms := make([]Term, len(tokens))
	for idx, tok := range tokens {
		if tok == "?" {
			terms[idx] = Wildcard
			continue
		}
		terms[idx] = Constant(tok)
	}
	return terms
}

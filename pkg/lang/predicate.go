package lang

import (
	"fmt"

	pp "github.com/vilterp/logicdb/pkg/prettyprint"
)

// Predicate is a name applied to an ordered list of terms. It is used for
// stored facts, derived facts, questions, and rule heads and bodies.
// A Predicate is never mutated after construction.
type Predicate struct {
	name  string
	terms []Term
}

func NewPredicate(name string, terms []Term) Predicate {
	copied := make([]Term, len(terms))
	copy(copied, terms)
	return Predicate{
		name:  name,
		terms: copied,
	}
}

// P is shorthand for NewPredicate(name, Constants(tokens...)).
func P(name string, tokens ...string) Predicate {
	return Predicate{
		name:  name,
		terms: Constants(tokens...),
	}
}

// Template returns name(?,?,...) with the given arity.
func Template(name string, arity int) Predicate {
	terms := make([]Term, arity)
	for idx := range terms {
		terms[idx] = Wildcard
	}
	return Predicate{
		name:  name,
		terms: terms,
	}
}

func (p Predicate) Name() string {
	return p.name
}

func (p Predicate) Arity() int {
	return len(p.terms)
}

func (p Predicate) Term(idx int) Term {
	return p.terms[idx]
}

// Terms returns a copy of the term list.
func (p Predicate) Terms() []Term {
	out := make([]Term, len(p.terms))
	copy(out, p.terms)
	return out
}

// Params returns the terms as strings. For rule predicates these are the
// variable names, which serve as relation columns.
func (p Predicate) Params() []string {
	out := make([]string, len(p.terms))
	for idx, term := range p.terms {
		out[idx] = term.Format().String()
	}
	return out
}

// IsGround reports whether no term is the wildcard.
func (p Predicate) IsGround() bool {
	for _, term := range p.terms {
		if IsWildcard(term) {
			return false
		}
	}
	return true
}

func (p Predicate) Equal(other Predicate) bool {
	if p.name != other.name || len(p.terms) != len(other.terms) {
		return false
	}
	for idx := range p.terms {
		if p.terms[idx] != other.terms[idx] {
			return false
		}
	}
	return true
}

// Matches reports whether p agrees with question at every position where
// question has a constant. Names and arities are not compared; positions past
// the end of p never match a constant.
func (p Predicate) Matches(question Predicate) bool {
	for idx, want := range question.terms {
		if IsWildcard(want) {
			continue
		}
		if idx >= len(p.terms) || p.terms[idx] != want {
			return false
		}
	}
	return true
}

func (p Predicate) Format() pp.Doc {
	args := make([]pp.Doc, len(p.terms))
	for idx, term := range p.terms {
		args[idx] = term.Format()
	}
	return pp.Call(p.name, args)
}

func (p Predicate) String() string {
	return p.Format().String()
}

func (p Predicate) GoString() string {
	return fmt.Sprintf("lang.P(%q, %q)", p.name, p.Params())
}

// FormatAll renders a predicate list as `[A(x), B(y)]`.
func FormatAll(preds []Predicate) pp.Doc {
	docs := make([]pp.Doc, len(preds))
	for idx, pred := range preds {
		docs[idx] = pred.Format()
	}
	return pp.List(docs)
}

// Strings renders each predicate on its own.
func Strings(preds []Predicate) []string {
	out := make([]string, len(preds))
	for idx, pred := range preds {
		out[idx] = pred.String()
	}
	return out
}

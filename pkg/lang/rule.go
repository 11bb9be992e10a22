package lang

import (
	"errors"

	pp "github.com/vilterp/logicdb/pkg/prettyprint"
)

var ErrEmptyBody = errors.New("rule body must have at least one predicate")

// Rule derives its head for every assignment of variables that satisfies
// all of its body predicates at once.
type Rule struct {
	head Predicate
	body []Predicate
}

func NewRule(head Predicate, body []Predicate) (Rule, error) {
	if len(body) == 0 {
		return Rule{}, ErrEmptyBody
	}
	for _, pred := range append([]Predicate{head}, body...) {
		if !pred.IsGround() {
			return Rule{}, &WildcardNotAllowedError{Predicate: pred.String(), Where: "rule"}
		}
	}
	copied := make([]Predicate, len(body))
	copy(copied, body)
	return Rule{
		head: head,
		body: copied,
	}, nil
}

// MustRule is like NewRule but panics on error. For tests and literals.
func MustRule(head Predicate, body ...Predicate) Rule {
	rule, err := NewRule(head, body)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r Rule) Head() Predicate {
	return r.head
}

// Body returns a copy of the body predicates.
func (r Rule) Body() []Predicate {
	out := make([]Predicate, len(r.body))
	copy(out, r.body)
	return out
}

func (r Rule) Format() pp.Doc {
	body := make([]pp.Doc, len(r.body))
	for idx, pred := range r.body {
		body[idx] = pred.Format()
	}
	return pp.Seq(r.head.Format(), pp.Text(" <- "), pp.Join(body, pp.Text("; ")))
}

func (r Rule) String() string {
	return r.Format().String()
}

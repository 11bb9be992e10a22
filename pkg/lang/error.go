package lang

import "fmt"

type ArityMismatchError struct {
	Name   string
	Wanted int
	Got    int
	In     string
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf(
		"predicate %s has arity %d, but %s uses it with %d terms", e.Name, e.Wanted, e.In, e.Got,
	)
}

type WildcardNotAllowedError struct {
	Predicate string
	Where     string
}

func (e *WildcardNotAllowedError) Error() string {
	return fmt.Sprintf("wildcard not allowed in %s: %s", e.Where, e.Predicate)
}

package relation

import (
	"fmt"
	"strings"
)

// SchemaMismatchError is returned when a fact doesn't have one term per
// column of the table it's loaded into.
type SchemaMismatchError struct {
	Columns   []string
	Predicate string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf(
		"fact %s doesn't fit columns (%s)", e.Predicate, strings.Join(e.Columns, ","),
	)
}

// MissingColumnError is returned when a projection asks for a column the
// table doesn't have, i.e. a rule head uses a variable its body never binds.
type MissingColumnError struct {
	Column  string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf(
		"no column %s to project from (%s)", e.Column, strings.Join(e.Columns, ","),
	)
}

package parse

import (
	"errors"
	"fmt"
)

var (
	ErrRuleNotAllowed = errors.New("expected a predicate, got a rule")
	ErrNotARule       = errors.New("expected a rule, got a predicate")
)

// LineError locates a knowledge base line that couldn't be parsed.
// Line is 1-based.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: cannot parse %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

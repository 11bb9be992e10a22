package logicdb

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pkg/errors"
	"github.com/vilterp/logicdb/pkg/lang"
	"github.com/vilterp/logicdb/pkg/parse"
	"github.com/vilterp/logicdb/pkg/relation"
)

type MalformedQuestionError struct {
	Question string
	Err      error
}

func (e *MalformedQuestionError) Error() string {
	return fmt.Sprintf("cannot interpret the question %q: %v", e.Question, e.Err)
}

// CycleError is returned when resolving a predicate requires resolving
// itself. Path starts and ends with the same name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic rule dependency: %s", strings.Join(e.Path, " -> "))
}

type DepthExceededError struct {
	MaxDepth int
	Path     []string
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf(
		"rule graph too deep: more than %d nested expansions (%s ...)",
		e.MaxDepth, strings.Join(e.Path[:min(len(e.Path), 5)], " -> "),
	)
}

var ErrNotSnapshot = errors.New("not a knowledge base snapshot")

// Error kinds, as reported by ErrorKind.
const (
	KindMalformedQuestion = "malformed_question"
	KindCycle             = "cycle"
	KindTooDeep           = "too_deep"
	KindSchema            = "schema"
	KindArity             = "arity"
	KindParse             = "parse"
	KindIO                = "io"
	KindCanceled          = "canceled"
	KindInternal          = "internal"
)

// ErrorKind classifies an error returned by this package (possibly wrapped
// with github.com/pkg/errors) into one of the Kind constants.
func ErrorKind(err error) string {
	cause := errors.Cause(err)
	switch cause.(type) {
	case *MalformedQuestionError:
		return KindMalformedQuestion
	case *CycleError:
		return KindCycle
	case *DepthExceededError:
		return KindTooDeep
	case *relation.SchemaMismatchError, *relation.MissingColumnError:
		return KindSchema
	case *lang.ArityMismatchError:
		return KindArity
	case *parse.LineError, *lang.WildcardNotAllowedError:
		return KindParse
	case *fs.PathError:
		return KindIO
	}
	if cause == ErrNotSnapshot {
		return KindIO
	}
	if cause == context.Canceled || cause == context.DeadlineExceeded {
		return KindCanceled
	}
	return KindInternal
}

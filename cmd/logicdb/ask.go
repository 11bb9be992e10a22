package main

import (
	"context"
	"fmt"
	"io"

	logicdb "github.com/vilterp/logicdb/pkg"
	"github.com/vilterp/logicdb/pkg/lang"
)

func runAsk(ctx context.Context, out io.Writer, opts logicdb.Options, kbPath string, question string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	kb, err := logicdb.LoadKnowledgeBase(kbPath)
	if err != nil {
		return loadError(err)
	}
	logLoaded(kbPath, len(kb.Facts()), len(kb.Rules()))

	answer, err := logicdb.NewSolver(kb, opts).AskString(ctx, question)
	if err != nil {
		return &exitError{code: exitUnanswerable, err: err}
	}
	fmt.Fprintf(out, "Answer: %s\n", lang.FormatAll(answer))
	return nil
}

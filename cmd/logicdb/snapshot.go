package main

import (
	"fmt"

	"github.com/spf13/cobra"
	logicdb "github.com/vilterp/logicdb/pkg"
	clog "github.com/vilterp/logicdb/pkg/log"
)

func snapshotCmd(globals *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <kb-path> <out.db>",
		Short: "Write a knowledge base to a bolt snapshot",
		Long: `snapshot parses a knowledge base and stores it in a bolt file, which
can be given anywhere a knowledge base path is expected.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := globals.load(cmd); err != nil {
				return err
			}
			defer clog.L().Sync()

			kb, err := logicdb.LoadKnowledgeBase(args[0])
			if err != nil {
				return loadError(err)
			}
			logLoaded(args[0], len(kb.Facts()), len(kb.Rules()))
			if err := logicdb.SaveSnapshot(args[1], kb, args[0]); err != nil {
				return &exitError{code: exitIO, err: err}
			}
			fmt.Fprintf(
				cmd.OutOrStdout(), "wrote %d facts and %d rules to %s\n",
				len(kb.Facts()), len(kb.Rules()), args[1],
			)
			return nil
		},
	}
}

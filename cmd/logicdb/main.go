package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	logicdb "github.com/vilterp/logicdb/pkg"
	"github.com/vilterp/logicdb/pkg/config"
	clog "github.com/vilterp/logicdb/pkg/log"
	"go.uber.org/zap"
)

// Exit statuses.
const (
	exitOK = iota
	exitBadArguments
	exitUnanswerable
	exitBadKnowledgeBase
	exitIO
)

// exitError carries the status the process should exit with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if exitErr, ok := err.(*exitError); ok {
		return exitErr.code
	}
	// Anything cobra rejects before running a command.
	return exitBadArguments
}

// loadError maps a knowledge base loading failure to its exit status.
func loadError(err error) error {
	switch logicdb.ErrorKind(err) {
	case logicdb.KindParse, logicdb.KindArity:
		return &exitError{code: exitBadKnowledgeBase, err: err}
	default:
		return &exitError{code: exitIO, err: err}
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
	parallel   bool
	maxDepth   int
}

// load reads the config file and applies the flags the user set on top.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, &exitError{code: exitBadArguments, err: err}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("parallel") {
		cfg.Solver.Parallel = g.parallel
	}
	if flags.Changed("max-depth") {
		cfg.Solver.MaxDepth = g.maxDepth
	}
	if err := cfg.Validate(); err != nil {
		return nil, &exitError{code: exitBadArguments, err: err}
	}

	logger, err := clog.New(cfg.LogLevel)
	if err != nil {
		return nil, &exitError{code: exitBadArguments, err: err}
	}
	clog.SetLogger(logger)
	return cfg, nil
}

func solverOptions(cfg *config.Config) logicdb.Options {
	return logicdb.Options{
		MaxDepth: cfg.Solver.MaxDepth,
		Parallel: cfg.Solver.Parallel,
	}
}

func rootCmd() *cobra.Command {
	globals := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "logicdb <kb-path> <question>",
		Short: "Answer a question against a knowledge base of facts and rules",
		Long: `logicdb loads a knowledge base (one fact or rule per line, or a snapshot)
and prints every fact, stored or derived, that matches the question.

  L(a,b)
  M(x,y) <- L(x,y)

$ logicdb family.kb 'M(?,?)'
Answer: [M(a,b)]`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.load(cmd)
			if err != nil {
				return err
			}
			defer clog.L().Sync()
			return runAsk(cmd.Context(), cmd.OutOrStdout(), solverOptions(cfg), args[0], args[1])
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&globals.configPath, "config", "c", "", "config file path (YAML)")
	flags.StringVar(&globals.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&globals.parallel, "parallel", false, "resolve rule bodies concurrently")
	flags.IntVar(&globals.maxDepth, "max-depth", logicdb.DefaultMaxDepth, "maximum nesting of rule expansions")

	cmd.AddCommand(serveCmd(globals))
	cmd.AddCommand(shellCmd(globals))
	cmd.AddCommand(snapshotCmd(globals))
	cmd.AddCommand(workloadCmd(globals))
	return cmd
}

func logLoaded(path string, numFacts, numRules int) {
	clog.L().Info(
		"loaded knowledge base",
		zap.String("path", path), zap.Int("facts", numFacts), zap.Int("rules", numRules),
	)
}

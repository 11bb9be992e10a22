package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	logicdb "github.com/vilterp/logicdb/pkg"
	clog "github.com/vilterp/logicdb/pkg/log"
	"go.uber.org/zap"
)

func serveCmd(globals *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve <kb-path>",
		Short: "Answer questions over websocket at /ws",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.load(cmd)
			if err != nil {
				return err
			}
			defer clog.L().Sync()
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			kb, err := logicdb.LoadKnowledgeBase(args[0])
			if err != nil {
				return loadError(err)
			}
			logLoaded(args[0], len(kb.Facts()), len(kb.Rules()))

			server := logicdb.NewServer(logicdb.NewSolver(kb, solverOptions(cfg)), cfg.Addr())

			// graceful shutdown on Ctrl-C
			ctrlCChan := make(chan os.Signal, 1)
			signal.Notify(ctrlCChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-ctrlCChan
				if err := server.Close(); err != nil {
					clog.L().Error("error closing", zap.Error(err))
				}
			}()

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return &exitError{code: exitIO, err: err}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to listen on")
	cmd.Flags().IntVar(&port, "port", 9000, "port to listen on")
	return cmd
}

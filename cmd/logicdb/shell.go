package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/robertkrimen/isatty"
	"github.com/spf13/cobra"
	logicdb "github.com/vilterp/logicdb/pkg"
	clog "github.com/vilterp/logicdb/pkg/log"
)

func shellCmd(globals *globalFlags) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Ask questions of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.load(cmd)
			if err != nil {
				return err
			}
			defer clog.L().Sync()
			if cmd.Flags().Changed("url") {
				cfg.Shell.URL = url
			}

			// connect to server
			client, err := logicdb.NewClient(cfg.Shell.URL)
			if err != nil {
				return &exitError{code: exitIO, err: fmt.Errorf("couldn't connect: %v", err)}
			}
			defer client.Close()

			// Wait for server closing
			go waitForServerClose(client)

			// check if is TTY
			isInputTty := isatty.Check(os.Stdin.Fd())

			if isInputTty {
				fmt.Println("logicdb shell")
				fmt.Println("\\h for help")
			}

			// initialize readline
			prompt := ""
			if isInputTty {
				prompt = fmt.Sprintf("%s> ", cfg.Shell.URL)
			}
			l, err := readline.NewEx(&readline.Config{
				Prompt:            prompt,
				HistoryFile:       cfg.Shell.HistoryFile,
				InterruptPrompt:   "^C",
				EOFPrompt:         "bye!",
				HistorySearchFold: true,
			})
			if err != nil {
				return &exitError{code: exitIO, err: err}
			}
			defer l.Close()

			for {
				line, readlineErr := l.Readline()
				if readlineErr != nil {
					fmt.Println("bye!")
					return nil
				}
				if !runShellLine(cmd.OutOrStdout(), client, line) {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:9000/ws", "URL of logicdb server to connect to")
	return cmd
}

func waitForServerClose(client *logicdb.Client) {
	<-client.ServerClosed
	fmt.Println("server closed the connection")
	os.Exit(0)
}

// runShellLine handles one line of shell input. It returns false when the
// shell should exit.
func runShellLine(out io.Writer, client *logicdb.Client, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return true
	case `\h`:
		fmt.Fprintln(out, `NAME(a,?)	ask a question; ? matches anything`)
		fmt.Fprintln(out, `\h	help`)
		fmt.Fprintln(out, `\q	quit`)
		return true
	case `\q`:
		return false
	}

	answer, err := client.Ask(line)
	if err != nil {
		fmt.Fprintln(out, "error:", err)
		return true
	}
	fmt.Fprintf(out, "Answer: [%s]\n", strings.Join(answer, ", "))
	return true
}

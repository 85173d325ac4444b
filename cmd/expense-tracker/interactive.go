package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands in one session",
		Long: `Start an interactive session. Each line is a command such as
  save --name "Iced coffee" --price 4 --today
  list
and all commands share one store handle until "exit".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.openLedger(); err != nil {
				return a.fail(cmd, err)
			}
			return a.interactive(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// interactive reads commands line by line until exit or end of input.
// Failures are shown and the session continues.
func (a *app) interactive(in io.Reader, out, errOut io.Writer) error {
	fmt.Fprintln(out, `Type a command, "help" for a list, "exit" to quit.`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		args, err := shellwords.Parse(line)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "shell":
			fmt.Fprintln(errOut, "Error: already in a shell session")
			continue
		}

		root := newRootCmd(a)
		if name := sessionFlag(root, args); name != "" {
			fmt.Fprintf(errOut, "Error: --%s cannot be changed inside a shell session\n", name)
			continue
		}
		root.SetArgs(args)
		root.SetOut(out)
		root.SetErr(errOut)
		if err := root.Execute(); err != nil {
			var reported reportedError
			if !errors.As(err, &reported) {
				fmt.Fprintf(errOut, "Error: %v\n", err)
			}
		}
	}

	return scanner.Err()
}

// sessionFlag returns the first global flag in args. Global flags are read
// once when the session starts.
func sessionFlag(root *cobra.Command, args []string) string {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if root.PersistentFlags().Lookup(name) != nil {
			return name
		}
	}
	return ""
}

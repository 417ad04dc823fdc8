package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/nkinder/go-removinator/removinator"
)

const historyFile = ".removinator_history"

// runShell reads commands interactively until Ctrl-D, "quit" or ctx is done.
// A failing command is reported and the prompt continues.
func runShell(ctx context.Context, conn *removinator.Conn) error {
	e := newEnv(conn)

	shell := liner.NewLiner()
	defer shell.Close()

	shell.SetCtrlCAborts(true)
	shell.SetCompleter(func(line string) (c []string) {
		for name := range cliCommands {
			if strings.HasPrefix(name, strings.ToLower(line)) {
				c = append(c, name)
			}
		}
		return
	})

	history := historyPath()
	if f, err := os.Open(history); err == nil {
		shell.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(stdout, "Connected to %s. Type \"help\" for commands, Ctrl-D to quit.\n", conn.Address())
	for ctx.Err() == nil {
		input, err := shell.Prompt("removinator> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Fprintln(stdout)
			break
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		shell.AppendHistory(input)

		switch input {
		case "help":
			for _, c := range commandList() {
				fmt.Fprintf(stdout, "  %-22s %s\n", c.Name+" "+c.Args, c.Description)
			}
			continue
		case "quit", "exit":
			return saveHistory(shell, history)
		}

		tokens := strings.Fields(input)
		if err := dispatch(ctx, e, tokens[0], tokens[1:]); err != nil {
			fmt.Fprintln(stdout, "error:", err)
		}
	}

	return saveHistory(shell, history)
}

func historyPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, historyFile)
	}
	return historyFile
}

func saveHistory(shell *liner.State, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	_, err = shell.WriteHistory(f)
	return err
}

// Command kwazam-cli plays a hot-seat Kwazam game in the terminal.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/rocketscienceinc/kwazam-backend/internal/cli"
	"github.com/rocketscienceinc/kwazam-backend/internal/config"
)

func main() {
	conf, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := config.NewLogger(conf.LogLevel, os.Stderr).With("app", "kwazam-cli")
	colored := term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""

	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:     filepath.Join(os.TempDir(), ".kwazam_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	registry := cli.NewRegistry(logger, rl.Stdout(), conf.SaveDir, colored)

	fmt.Fprintln(rl.Stdout(), "Kwazam chess. Type 'help' for commands.")
	registry.Execute("board") //nolint: errcheck // board never quits

	for {
		rl.SetPrompt(cli.Prompt(registry.Game(), colored))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			continue
		}

		if errors.Is(registry.Execute(line), cli.ErrQuit) {
			return
		}
	}
}

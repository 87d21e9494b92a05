// Package cli implements the hot-seat terminal front end: both teams play from one keyboard.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/rocketscienceinc/kwazam-backend/internal/entity"
	"github.com/rocketscienceinc/kwazam-backend/pkg/idgen"
)

// ErrQuit - returned by Execute once the player asked to leave.
var ErrQuit = errors.New("quit")

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("wrong arguments")
)

// Command - one REPL command with its handler.
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	MinArgs     int
	MaxArgs     int
	Handler     func(args []string) error
}

// Registry - the local game and the commands that drive it.
type Registry struct {
	logger   *slog.Logger
	out      io.Writer
	painter  painter
	saveDir  string
	game     *entity.Game
	commands map[string]*Command
}

func NewRegistry(logger *slog.Logger, out io.Writer, saveDir string, colored bool) *Registry {
	registry := &Registry{
		logger:   logger.With("component", "cli"),
		out:      out,
		painter:  painter{enabled: colored},
		saveDir:  saveDir,
		game:     newLocalGame(),
		commands: make(map[string]*Command),
	}

	registry.registerGameCommands()
	registry.registerFileCommands()

	registry.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		MaxArgs:     1,
		Handler:     registry.help,
	})

	registry.Register(&Command{
		Name:        "quit",
		ShortName:   "q",
		Description: "Leave the game",
		Usage:       "quit",
		Handler: func([]string) error {
			return ErrQuit
		},
	})

	return registry
}

func newLocalGame() *entity.Game {
	game := entity.NewGame(idgen.NewGameID())
	game.Status = entity.StatusOngoing

	return game
}

func (that *Registry) Register(cmd *Command) {
	that.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		that.commands[cmd.ShortName] = cmd
	}
}

// Game - the game being played.
func (that *Registry) Game() *entity.Game {
	return that.game
}

// Execute - runs one input line. Command failures are reported to the player and swallowed;
// only ErrQuit is returned.
func (that *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	err := that.run(strings.ToLower(parts[0]), parts[1:])
	if err == nil || errors.Is(err, ErrQuit) {
		return err
	}

	fmt.Fprintln(that.out, that.painter.paint(red, "Error: "+err.Error()))
	if errors.Is(err, ErrUnknownCommand) {
		fmt.Fprintln(that.out, "Type 'help' for available commands")
	}

	return nil
}

func (that *Registry) run(name string, args []string) error {
	cmd, exists := that.commands[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if len(args) < cmd.MinArgs || len(args) > cmd.MaxArgs {
		return fmt.Errorf("%w: usage: %s", ErrUsage, cmd.Usage)
	}

	return cmd.Handler(args)
}

func (that *Registry) help(args []string) error {
	if len(args) > 0 {
		cmd, exists := that.commands[strings.ToLower(args[0])]
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
		}
		fmt.Fprintf(that.out, "%s - %s\nUsage: %s\n", that.painter.paint(cyan, cmd.Name), cmd.Description, cmd.Usage)
		return nil
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(that.commands))
	for _, cmd := range that.commands {
		if !seen[cmd.Name] {
			seen[cmd.Name] = true
			names = append(names, cmd.Name)
		}
	}
	sort.Strings(names)

	fmt.Fprintln(that.out, "Commands:")
	for _, name := range names {
		cmd := that.commands[name]
		fmt.Fprintf(that.out, "  %-18s %s\n", cmd.Usage, cmd.Description)
	}

	return nil
}

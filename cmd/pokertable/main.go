package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/display"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every subcommand.
type Globals struct {
	LogLevel string `kong:"help='Log level (debug, info, warn, error); serve falls back to the config file'"`
	NoColor  bool   `kong:"help='Disable colored output'"`
}

// newLogger builds the stderr logger for level, defaulting to info.
func (g *Globals) newLogger(level string) (*log.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
	}), nil
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the table server"`
	Simulate SimulateCmd      `cmd:"" help:"Play scripted rounds and check engine invariants"`
	Play     PlayCmd          `cmd:"" help:"Play a hot-seat table in the terminal"`
	Show     ShowCmd          `cmd:"" help:"Show a stored table snapshot"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokertable"),
		kong.Description("Texas Hold'em table engine, server and simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	display.SetColor(!cli.NoColor)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

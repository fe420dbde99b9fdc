package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/randutil"
	"github.com/lox/pokertable/internal/store"
	"github.com/lox/pokertable/internal/tui"
)

// PlayCmd runs a hot-seat table in the terminal.
type PlayCmd struct {
	Players []string `kong:"default='Alice,Bob,Carol',help='Player names, in seat order'"`
	Stack   int      `kong:"default='1000',help='Starting stack'"`
	Seed    *int64   `kong:"help='Deck seed (random when omitted)'"`
	Save    string   `kong:"type='path',help='Directory to save the table to on exit (optional)'"`
	Resume  string   `kong:"help='Table id to resume from --save'"`
}

func (c *PlayCmd) Run(g *Globals) error {
	// The TUI owns the terminal; only errors reach stderr.
	level := g.LogLevel
	if level == "" {
		level = "error"
	}
	logger, err := g.newLogger(level)
	if err != nil {
		return err
	}

	var st *store.Store
	if c.Save != "" {
		if st, err = store.New(c.Save, logger); err != nil {
			return err
		}
	}

	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}

	var table *game.Table
	switch {
	case c.Resume != "":
		if st == nil {
			return errors.New("--resume needs --save")
		}
		table, err = st.Load(c.Resume, game.WithSeed(seed), game.WithTableLogger(logger))
		if err != nil {
			return err
		}
	default:
		table, err = newHotSeatTable(c.Players, c.Stack, seed, logger)
		if err != nil {
			return err
		}
	}

	model := tui.New(table, logger)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}

	if st != nil {
		if err := st.Save(table); err != nil {
			return err
		}
		fmt.Printf("Saved table %s to %s\n", table.ID(), st.Dir())
	}
	return nil
}

// newHotSeatTable seats names in order with equal stacks.
func newHotSeatTable(names []string, stack int, seed int64, logger *log.Logger) (*game.Table, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: need at least two --players", game.ErrNotEnoughPlayers)
	}
	table, err := game.NewTable(game.DefaultRules(), game.WithSeed(seed), game.WithTableLogger(logger))
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if err := table.Join(playerID(name), name, stack); err != nil {
			return nil, fmt.Errorf("seat %s: %w", name, err)
		}
	}
	return table, nil
}

func playerID(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

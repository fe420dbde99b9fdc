package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/lox/pokertable/internal/display"
	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/randutil"
	"github.com/lox/pokertable/internal/simulator"
)

// SimulateCmd plays scripted tables and prints a report.
type SimulateCmd struct {
	Tables       int    `kong:"default='4',help='Number of tables'"`
	Rounds       int    `kong:"default='250',help='Rounds per table'"`
	Players      int    `kong:"default='6',help='Players per table'"`
	Stack        int    `kong:"default='1000',help='Starting stack'"`
	Strategy     string `kong:"default='mixed',help='Player strategy: random, call, maniac or mixed'"`
	Seed         *int64 `kong:"help='RNG seed (random when omitted)'"`
	Parallel     int    `kong:"default='0',help='Tables played at once (0 for one per CPU)'"`
	Ante         int    `kong:"default='10',help='Ante'"`
	SmallBlind   int    `kong:"default='20',help='Small blind'"`
	BigBlind     int    `kong:"default='40',help='Big blind'"`
	RaiseMinimum bool   `kong:"help='Reject raises smaller than the largest raise so far'"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger, err := g.newLogger(g.LogLevel)
	if err != nil {
		return err
	}

	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}
	parallel := c.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	sim, err := simulator.New(simulator.Config{
		Tables:   c.Tables,
		Rounds:   c.Rounds,
		Players:  c.Players,
		Stack:    c.Stack,
		Strategy: c.Strategy,
		Rules: game.Rules{
			Ante: c.Ante,
			Blinds: []game.Blind{
				{Name: "Small", Value: c.SmallBlind},
				{Name: "Big", Value: c.BigBlind},
			},
			RaiseMinimum: c.RaiseMinimum,
		},
		Seed:     seed,
		Parallel: parallel,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := sim.Run(ctx)
	if report != nil {
		fmt.Println(display.RenderReport(report))
	}
	if err != nil {
		return fmt.Errorf("simulation failed (replay with --seed %d): %w", seed, err)
	}
	return nil
}

// Package simulator plays large numbers of rounds between scripted players
// and checks the engine's invariants after every action.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/randutil"
)

// maxActions bounds a single round. A round that runs longer is stuck.
const maxActions = 1000

// ErrInvalidConfig is returned by New for unusable settings.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds configuration for running simulations
type Config struct {
	Tables   int
	Rounds   int // per table
	Players  int // per table
	Stack    int
	Strategy string
	Rules    game.Rules
	Seed     int64
	// Parallel limits how many tables play at once.
	Parallel int
	Logger   *log.Logger
}

// DefaultConfig returns four six-handed tables of mixed strategies playing
// 250 rounds each under the default rules.
func DefaultConfig() Config {
	return Config{
		Tables:   4,
		Rounds:   250,
		Players:  6,
		Stack:    1000,
		Strategy: "mixed",
		Rules:    game.DefaultRules(),
		Parallel: runtime.GOMAXPROCS(0),
	}
}

// Simulator runs poker round simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New validates config and creates a simulator.
func New(config Config) (*Simulator, error) {
	switch {
	case config.Tables < 1:
		return nil, fmt.Errorf("%w: need at least one table", ErrInvalidConfig)
	case config.Rounds < 1:
		return nil, fmt.Errorf("%w: need at least one round", ErrInvalidConfig)
	case config.Players < 2 || config.Players > game.MaxPlayers:
		return nil, fmt.Errorf("%w: players must be between 2 and %d", ErrInvalidConfig, game.MaxPlayers)
	case config.Stack <= 0:
		return nil, fmt.Errorf("%w: stack must be positive", ErrInvalidConfig)
	}
	if err := config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := LookupStrategy(config.Strategy, config.Players); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if config.Parallel < 1 {
		config.Parallel = 1
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}, nil
}

// Run plays every table and returns the combined report. It stops at the
// first invariant violation, returning it as a *Violation.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	s.logger.Info("Starting simulation", "tables", s.config.Tables, "rounds", s.config.Rounds,
		"players", s.config.Players, "strategy", s.config.Strategy, "seed", s.config.Seed)

	reports := make([]*Report, s.config.Tables)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for n := range s.config.Tables {
		g.Go(func() error {
			rep, err := s.runTable(ctx, n)
			reports[n] = rep
			return err
		})
	}
	err := g.Wait()

	report := newReport()
	report.Seed = s.config.Seed
	report.Strategy = s.config.Strategy
	for _, rep := range reports {
		report.Merge(rep)
	}
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}

	s.logger.Info("Simulation complete", "rounds", report.Rounds, "actions", report.Actions,
		"showdowns", report.Showdowns, "duration", report.Duration)
	return report, nil
}

// tableRun is the state of one simulated table.
type tableRun struct {
	sim        *Simulator
	n          int
	seed       int64
	table      *game.Table
	strategies map[string]Strategy
	report     *Report
	logger     *log.Logger
}

func (s *Simulator) runTable(ctx context.Context, n int) (*Report, error) {
	seed := randutil.Derive(s.config.Seed, n)
	logger := s.logger.With("table", n)
	tableLogger := logger.With()
	if tableLogger.GetLevel() < log.WarnLevel {
		tableLogger.SetLevel(log.WarnLevel)
	}

	tr := &tableRun{
		sim:        s,
		n:          n,
		seed:       seed,
		strategies: make(map[string]Strategy),
		report:     newReport(),
		logger:     tableLogger,
	}
	tr.report.Tables = 1

	seats, _ := LookupStrategy(s.config.Strategy, s.config.Players)
	for i, strategy := range seats {
		tr.strategies[playerID(i)] = strategy
	}
	if err := tr.reseat(); err != nil {
		return tr.report, err
	}

	rng := randutil.New(seed)
	for tr.report.Rounds < s.config.Rounds {
		if err := ctx.Err(); err != nil {
			return tr.report, err
		}
		round, err := tr.table.StartRound()
		if errors.Is(err, game.ErrNotEnoughPlayers) {
			tr.report.Rebuys++
			if err := tr.reseat(); err != nil {
				return tr.report, err
			}
			continue
		}
		if err != nil {
			return tr.report, fmt.Errorf("table %d: %w", n, err)
		}
		if err := tr.play(rng, round); err != nil {
			return tr.report, err
		}
	}

	logger.Debug("Table finished", "rounds", tr.report.Rounds, "rebuys", tr.report.Rebuys)
	return tr.report, nil
}

func playerID(i int) string {
	return fmt.Sprintf("p%d", i+1)
}

// reseat replaces the table with a fresh one where everyone has the
// starting stack.
func (tr *tableRun) reseat() error {
	cfg := tr.sim.config
	table, err := game.NewTable(cfg.Rules,
		game.WithTableID(fmt.Sprintf("sim-%d-%d", tr.n, tr.report.Rebuys)),
		game.WithSeed(randutil.Derive(tr.seed, tr.report.Rebuys)),
		game.WithMaxPlayers(cfg.Players),
		game.WithTableLogger(tr.logger),
	)
	if err != nil {
		return err
	}
	for i := range cfg.Players {
		if err := table.Join(playerID(i), "", cfg.Stack); err != nil {
			return err
		}
	}
	tr.table = table
	return nil
}

func (tr *tableRun) violation(round *game.Round, check string, err error) error {
	return &Violation{Table: tr.n, Seed: tr.seed, Round: round.ID(), Check: check, Err: err}
}

// play drives one round to its end, checking invariants after every step.
func (tr *tableRun) play(rng *rand.Rand, round *game.Round) error {
	checks := []struct {
		name string
		fn   func(*game.Round) error
	}{
		{"completion", checkCompletion},
		{"projection", checkProjection},
		{"round trip", checkRoundTrip},
	}
	run := func() error {
		for _, c := range checks {
			if err := c.fn(round); err != nil {
				return tr.violation(round, c.name, err)
			}
		}
		return nil
	}

	if err := run(); err != nil {
		return err
	}
	for actions := 0; !round.Ended(); actions++ {
		if actions >= maxActions {
			return tr.violation(round, "termination", fmt.Errorf("no end after %d actions", actions))
		}
		acting, ok := round.Acting()
		if !ok {
			return tr.violation(round, "turn", fmt.Errorf("no acting player at %s", round.Progress()))
		}
		view := game.Project(round, acting)
		action := tr.strategies[acting].Decide(rng, view)
		if err := tr.table.Act(acting, action); err != nil {
			return tr.violation(round, "legal action", fmt.Errorf("%s %d rejected: %w", action.Kind(), game.ActionAmount(action), err))
		}
		tr.report.Actions++
		if err := run(); err != nil {
			return err
		}
	}

	if err := checkSettlement(round); err != nil {
		return tr.violation(round, "settlement", err)
	}
	cfg := tr.sim.config
	if err := checkChips(tr.table, cfg.Players*cfg.Stack); err != nil {
		return tr.violation(round, "chip conservation", err)
	}
	tr.record(round)
	return nil
}

func (tr *tableRun) record(round *game.Round) {
	res := round.Result()
	rep := tr.report
	rep.Rounds++
	rep.TotalPot += res.Total()
	rep.MaxPot = max(rep.MaxPot, res.Total())
	if len(res.Pots) > 1 {
		rep.SidePots++
	}
	for _, pot := range res.Pots {
		if len(pot.Winners) > 1 {
			rep.SplitPots++
		}
	}

	if activeCount(round) < 2 {
		rep.FoldOuts++
		return
	}
	rep.Showdowns++
	for _, pr := range res.Players {
		if pr.Rank == 1 && !pr.Folded {
			rep.Winning[pr.Hand.Category]++
			break
		}
	}
}

func activeCount(round *game.Round) int {
	n := 0
	for _, p := range round.Players() {
		if p.Active() {
			n++
		}
	}
	return n
}

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/store"
)

// ErrRunnerStopped is returned for commands sent after the runner exited.
var ErrRunnerStopped = errors.New("table runner stopped")

// Subscriber receives a fresh projection of the table after every change.
// SendView is called from the runner goroutine and must not block.
type Subscriber interface {
	Viewer() string
	SendView(game.TableView)
}

type command struct {
	run     func() error
	mutates bool
	reply   chan error
}

// Runner owns one table. Every read and mutation goes through its command
// channel and is executed on the Run goroutine, so the table never sees
// concurrent access.
type Runner struct {
	name        string
	table       *game.Table
	buyIn       int
	autoStart   bool
	timeout     time.Duration
	store       *store.Store
	clock       quartz.Clock
	logger      *log.Logger
	commands    chan command
	timeouts    chan uint64
	done        chan struct{}
	subscribers map[Subscriber]struct{}

	turnTimer *quartz.Timer
	turnKey   string
	turnSeq   uint64
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	clock  quartz.Clock
	store  *store.Store
	seed   *int64
	logger *log.Logger
}

// WithRunnerClock sets the clock used for the turn clock and table log.
func WithRunnerClock(clock quartz.Clock) RunnerOption {
	return func(o *runnerOptions) { o.clock = clock }
}

// WithRunnerStore persists the table after every change and restores it on
// creation when a snapshot exists.
func WithRunnerStore(s *store.Store) RunnerOption {
	return func(o *runnerOptions) { o.store = s }
}

// WithRunnerSeed makes the table's decks reproducible.
func WithRunnerSeed(seed int64) RunnerOption {
	return func(o *runnerOptions) { o.seed = &seed }
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *log.Logger) RunnerOption {
	return func(o *runnerOptions) { o.logger = logger }
}

// NewRunner creates the runner for a configured table, restoring its last
// snapshot from the store if there is one.
func NewRunner(cfg TableConfig, opts ...RunnerOption) (*Runner, error) {
	o := runnerOptions{clock: quartz.NewReal(), logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	logger := o.logger.WithPrefix("runner").With("table", cfg.Name)
	tableOpts := []game.TableOption{
		game.WithTableID(cfg.Name),
		game.WithClock(o.clock),
		game.WithMaxPlayers(cfg.MaxPlayers),
		game.WithTableLogger(o.logger),
	}
	if o.seed != nil {
		tableOpts = append(tableOpts, game.WithSeed(*o.seed))
	}

	var table *game.Table
	if o.store != nil {
		table, err = o.store.Load(cfg.Name, tableOpts...)
		switch {
		case err == nil:
			logger.Info("Restored table", "seats", len(table.Seats()), "rounds", table.Rounds())
		case errors.Is(err, store.ErrNotFound):
			table = nil
		default:
			return nil, err
		}
	}
	if table == nil {
		table, err = game.NewTable(cfg.Rules(), tableOpts...)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", cfg.Name, err)
		}
	}

	return &Runner{
		name:        cfg.Name,
		table:       table,
		buyIn:       cfg.BuyIn,
		autoStart:   cfg.AutoStart,
		timeout:     timeout,
		store:       o.store,
		clock:       o.clock,
		logger:      logger,
		commands:    make(chan command),
		timeouts:    make(chan uint64, 1),
		done:        make(chan struct{}),
		subscribers: make(map[Subscriber]struct{}),
	}, nil
}

// Name returns the configured table name.
func (r *Runner) Name() string { return r.name }

// Run processes commands until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	defer r.stopTurnClock()

	r.logger.Info("Table runner started", "timeout", r.timeout, "autoStart", r.autoStart)
	r.changed()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Table runner stopped")
			return nil

		case cmd := <-r.commands:
			err := cmd.run()
			if err == nil && cmd.mutates {
				r.changed()
			}
			cmd.reply <- err

		case seq := <-r.timeouts:
			r.turnExpired(seq)
		}
	}
}

func (r *Runner) exec(ctx context.Context, mutates bool, fn func() error) error {
	cmd := command{run: fn, mutates: mutates, reply: make(chan error, 1)}
	select {
	case r.commands <- cmd:
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join seats a player with the table's buy-in.
func (r *Runner) Join(ctx context.Context, playerID, name string) error {
	return r.exec(ctx, true, func() error {
		return r.table.Join(playerID, name, r.buyIn)
	})
}

// Leave unseats a player, folding them out of a round in play.
func (r *Runner) Leave(ctx context.Context, playerID string) error {
	return r.exec(ctx, true, func() error {
		return r.table.Leave(playerID)
	})
}

// Start deals the next round.
func (r *Runner) Start(ctx context.Context) error {
	return r.exec(ctx, true, func() error {
		_, err := r.table.StartRound()
		return err
	})
}

// Act applies an action for a seated player.
func (r *Runner) Act(ctx context.Context, playerID string, action game.Action) error {
	return r.exec(ctx, true, func() error {
		if _, ok := r.table.Seat(playerID); !ok {
			return fmt.Errorf("%w: %s", game.ErrNotSeated, playerID)
		}
		return r.table.Act(playerID, action)
	})
}

// View returns the table as viewer sees it.
func (r *Runner) View(ctx context.Context, viewer string) (game.TableView, error) {
	var v game.TableView
	err := r.exec(ctx, false, func() error {
		v = r.table.View(viewer)
		return nil
	})
	return v, err
}

// Info returns a summary for table listings.
func (r *Runner) Info(ctx context.Context) (TableInfo, error) {
	var info TableInfo
	err := r.exec(ctx, false, func() error {
		info = TableInfo{Name: r.name, BuyIn: r.buyIn, InRound: r.table.InRound(), Rounds: r.table.Rounds()}
		for _, s := range r.table.Seats() {
			if !s.Left {
				info.Players++
			}
		}
		return nil
	})
	return info, err
}

// Subscribe registers sub for views and sends it the current one.
func (r *Runner) Subscribe(ctx context.Context, sub Subscriber) error {
	return r.exec(ctx, false, func() error {
		r.subscribers[sub] = struct{}{}
		sub.SendView(r.table.View(sub.Viewer()))
		return nil
	})
}

// Unsubscribe stops sending views to sub.
func (r *Runner) Unsubscribe(ctx context.Context, sub Subscriber) error {
	return r.exec(ctx, false, func() error {
		delete(r.subscribers, sub)
		return nil
	})
}

// changed runs after every successful mutation and after a timeout fold.
func (r *Runner) changed() {
	if r.autoStart && !r.table.InRound() && r.startable() {
		if r.table.Round() != nil {
			// Publish the finished round before dealing the next one.
			r.broadcast()
		}
		if _, err := r.table.StartRound(); err != nil {
			r.logger.Error("Failed to start round", "error", err)
		}
	}
	if r.store != nil {
		if err := r.store.Save(r.table); err != nil {
			r.logger.Error("Failed to save table", "error", err)
		}
	}
	r.armTurnClock()
	r.broadcast()
}

func (r *Runner) startable() bool {
	n := 0
	for _, s := range r.table.Seats() {
		if !s.Left && s.Stack > 0 {
			n++
		}
	}
	return n >= 2
}

func (r *Runner) broadcast() {
	for sub := range r.subscribers {
		sub.SendView(r.table.View(sub.Viewer()))
	}
}

// armTurnClock restarts the turn clock whenever the turn passes to a new
// decision: a new round, a new acting player or a new action.
func (r *Runner) armTurnClock() {
	if r.timeout <= 0 {
		return
	}
	round := r.table.Round()
	acting := ""
	if round != nil {
		acting, _ = round.Acting()
	}
	if acting == "" {
		r.stopTurnClock()
		r.turnKey = ""
		return
	}

	key := fmt.Sprintf("%s/%s/%d", round.ID(), acting, len(round.Events()))
	if key == r.turnKey {
		return
	}
	r.stopTurnClock()
	r.turnKey = key
	r.turnSeq++
	seq := r.turnSeq
	r.turnTimer = r.clock.AfterFunc(r.timeout, func() {
		select {
		case r.timeouts <- seq:
		case <-r.done:
		}
	}, "turn")
}

func (r *Runner) stopTurnClock() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
}

// turnExpired folds the acting player when their turn clock runs out.
// Stale expiries from an earlier turn are ignored.
func (r *Runner) turnExpired(seq uint64) {
	if seq != r.turnSeq || r.turnTimer == nil {
		return
	}
	r.turnTimer = nil
	round := r.table.Round()
	if round == nil {
		return
	}
	acting, ok := round.Acting()
	if !ok {
		return
	}
	r.logger.Warn("Turn timed out, folding", "player", acting, "timeout", r.timeout)
	if err := r.table.Act(acting, game.Fold{}); err != nil {
		r.logger.Error("Failed to fold timed out player", "player", acting, "error", err)
		return
	}
	r.changed()
}

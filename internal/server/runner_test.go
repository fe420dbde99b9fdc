package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/store"
)

type fakeSubscriber struct {
	viewer string
	views  chan game.TableView
}

func newFakeSubscriber(viewer string) *fakeSubscriber {
	return &fakeSubscriber{viewer: viewer, views: make(chan game.TableView, 64)}
}

func (f *fakeSubscriber) Viewer() string { return f.viewer }

func (f *fakeSubscriber) SendView(v game.TableView) { f.views <- v }

func (f *fakeSubscriber) next(t *testing.T) game.TableView {
	t.Helper()
	select {
	case v := <-f.views:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view")
		return game.TableView{}
	}
}

func testTableConfig() TableConfig {
	ante := 10
	return TableConfig{
		Name:          "test",
		MaxPlayers:    game.MaxPlayers,
		Ante:          &ante,
		ActionTimeout: "30s",
		AutoStart:     true,
		BuyIn:         1000,
		Blinds:        defaultBlinds(),
	}
}

func startRunner(t *testing.T, cfg TableConfig, opts ...RunnerOption) (*Runner, *quartz.Mock, context.Context) {
	t.Helper()
	clock := quartz.NewMock(t)
	opts = append([]RunnerOption{
		WithRunnerClock(clock),
		WithRunnerSeed(1),
		WithRunnerLogger(testLogger()),
	}, opts...)
	r, err := NewRunner(cfg, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r, clock, ctx
}

func TestRunnerAutoStart(t *testing.T) {
	t.Parallel()
	r, _, ctx := startRunner(t, testTableConfig())

	require.NoError(t, r.Join(ctx, "alice", "Alice"))
	v, err := r.View(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, v.Round, "one player cannot start a round")

	require.NoError(t, r.Join(ctx, "bob", "Bob"))
	v, err = r.View(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, v.Round)
	assert.Equal(t, game.Dealt, v.Round.Progress)
	assert.Equal(t, "bob", v.Round.Acting)

	info, err := r.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, TableInfo{Name: "test", Players: 2, BuyIn: 1000, InRound: true}, info)
}

func TestRunnerManualStart(t *testing.T) {
	t.Parallel()
	cfg := testTableConfig()
	cfg.AutoStart = false
	r, _, ctx := startRunner(t, cfg)

	err := r.Start(ctx)
	assert.ErrorIs(t, err, game.ErrNotEnoughPlayers)

	require.NoError(t, r.Join(ctx, "alice", ""))
	require.NoError(t, r.Join(ctx, "bob", ""))
	v, err := r.View(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, v.Round)

	require.NoError(t, r.Start(ctx))
	err = r.Start(ctx)
	assert.ErrorIs(t, err, game.ErrRoundInProgress)
}

func TestRunnerAct(t *testing.T) {
	t.Parallel()
	r, _, ctx := startRunner(t, testTableConfig())
	require.NoError(t, r.Join(ctx, "alice", ""))
	require.NoError(t, r.Join(ctx, "bob", ""))

	err := r.Act(ctx, "alice", game.Check{})
	require.ErrorIs(t, err, game.ErrNotYourTurn)
	assert.Equal(t, game.ProtocolViolation, game.Classify(err))

	err = r.Act(ctx, "bob", game.Call{Amount: 10})
	assert.Equal(t, game.RuleViolation, game.Classify(err))

	err = r.Act(ctx, "mallory", game.Fold{})
	assert.ErrorIs(t, err, game.ErrNotSeated)

	require.NoError(t, r.Act(ctx, "bob", game.Call{Amount: 50}))
	v, err := r.View(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, game.Flopped, v.Round.Progress)
}

func TestRunnerTurnClockFolds(t *testing.T) {
	t.Parallel()
	r, clock, ctx := startRunner(t, testTableConfig())
	require.NoError(t, r.Join(ctx, "alice", ""))
	require.NoError(t, r.Join(ctx, "bob", ""))

	// Nothing happens before the timeout.
	clock.Advance(29 * time.Second).MustWait(ctx)
	v, err := r.View(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Rounds)

	clock.Advance(time.Second).MustWait(ctx)
	require.Eventually(t, func() bool {
		v, err := r.View(ctx, "")
		return err == nil && v.Rounds == 1
	}, 2*time.Second, 10*time.Millisecond)

	v, err = r.View(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, v.Round)
	assert.Equal(t, "bob", v.Round.Button, "the next round started with the button moved")
	stacks := map[string]int{}
	for _, s := range v.Seats {
		stacks[s.ID] = s.Stack
	}
	assert.Equal(t, map[string]int{"alice": 1030, "bob": 970}, stacks, "bob timed out and lost the small blind")
}

func TestRunnerTurnClockResetsOnAction(t *testing.T) {
	t.Parallel()
	r, clock, ctx := startRunner(t, testTableConfig())
	require.NoError(t, r.Join(ctx, "alice", ""))
	require.NoError(t, r.Join(ctx, "bob", ""))

	clock.Advance(20 * time.Second).MustWait(ctx)
	require.NoError(t, r.Act(ctx, "bob", game.Call{Amount: 50}))

	// bob's clock restarted for the flop.
	clock.Advance(20 * time.Second).MustWait(ctx)
	v, err := r.View(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Rounds)
	assert.Equal(t, "bob", v.Round.Acting)
}

func TestRunnerSubscribers(t *testing.T) {
	t.Parallel()
	r, _, ctx := startRunner(t, testTableConfig())
	alice := newFakeSubscriber("alice")

	require.NoError(t, r.Join(ctx, "alice", ""))
	require.NoError(t, r.Subscribe(ctx, alice))
	v := alice.next(t)
	assert.Nil(t, v.Round)

	require.NoError(t, r.Join(ctx, "bob", ""))
	v = alice.next(t)
	require.NotNil(t, v.Round)
	assert.Equal(t, "alice", v.Round.Viewer)
	bob, _ := v.Round.Player("bob")
	assert.False(t, bob.Cards[0].IsKnown(), "bob's cards are hidden from alice")
	self, _ := v.Round.Player("alice")
	assert.True(t, self.Cards[0].IsKnown())

	require.NoError(t, r.Unsubscribe(ctx, alice))
	require.NoError(t, r.Act(ctx, "bob", game.Fold{}))
	select {
	case <-alice.views:
		t.Fatal("unsubscribed viewer received a view")
	default:
	}
}

func TestRunnerPublishesFinishedRound(t *testing.T) {
	t.Parallel()
	r, _, ctx := startRunner(t, testTableConfig())
	watcher := newFakeSubscriber("alice")
	require.NoError(t, r.Join(ctx, "alice", ""))
	require.NoError(t, r.Join(ctx, "bob", ""))
	require.NoError(t, r.Subscribe(ctx, watcher))
	watcher.next(t)

	require.NoError(t, r.Act(ctx, "bob", game.Fold{}))
	finished := watcher.next(t)
	require.NotNil(t, finished.Round)
	assert.Equal(t, game.Ended, finished.Round.Progress)
	require.NotNil(t, finished.Round.Result)

	next := watcher.next(t)
	require.NotNil(t, next.Round)
	assert.Equal(t, game.Dealt, next.Round.Progress)
	assert.NotEqual(t, finished.Round.ID, next.Round.ID)
}

func TestRunnerPersistsAndRestores(t *testing.T) {
	t.Parallel()
	s, err := store.New(t.TempDir(), testLogger())
	require.NoError(t, err)
	cfg := testTableConfig()
	cfg.AutoStart = false

	first, err := NewRunner(cfg, WithRunnerStore(s), WithRunnerLogger(testLogger()), WithRunnerClock(quartz.NewMock(t)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- first.Run(ctx) }()
	require.NoError(t, first.Join(ctx, "alice", ""))
	require.NoError(t, first.Join(ctx, "bob", ""))
	require.NoError(t, first.Start(ctx))
	cancel()
	require.NoError(t, <-done)

	ids, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, ids)

	second, _, ctx2 := startRunner(t, cfg, WithRunnerStore(s))
	v, err := second.View(ctx2, "")
	require.NoError(t, err)
	assert.Len(t, v.Seats, 2)
	require.NotNil(t, v.Round)
	assert.Equal(t, "bob", v.Round.Acting)
}

func TestRunnerStopped(t *testing.T) {
	t.Parallel()
	r, err := NewRunner(testTableConfig(), WithRunnerLogger(testLogger()), WithRunnerClock(quartz.NewMock(t)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()
	require.NoError(t, <-done)

	err = r.Join(context.Background(), "alice", "")
	assert.True(t, errors.Is(err, ErrRunnerStopped))
}

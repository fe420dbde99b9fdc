package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/randutil"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		players []Player
		rules   Rules
		wantErr error
	}{
		{"no players", nil, DefaultRules(), ErrNoPlayers},
		{"duplicate id", []Player{{ID: "a", Stack: 10}, {ID: "a", Stack: 10}}, DefaultRules(), ErrDuplicatePlayer},
		{"empty stack", []Player{{ID: "a", Stack: 10}, {ID: "b"}}, DefaultRules(), ErrInvalidStack},
		{"button missing", players("a", "b"), Rules{Button: "z"}, ErrButtonNotSeated},
		{"limit", players("a", "b"), Rules{Limit: 2}, ErrUnsupportedLimit},
		{"negative ante", players("a", "b"), Rules{Ante: -1}, ErrInvalidRules},
		{"too many", make([]Player, 24), DefaultRules(), ErrTooManyPlayers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.players, tt.rules)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewDealsAndPostsBlinds(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob", "carol"), DefaultRules(), WithRNG(randutil.New(1)))

	assert.Equal(t, Dealt, r.Progress())
	assert.Equal(t, "alice", r.Button())
	assert.Equal(t, 52-6, r.DeckSize())
	assert.Empty(t, r.Community())

	bob, _ := r.Player("bob")
	carol, _ := r.Player("carol")
	alice, _ := r.Player("alice")
	assert.Equal(t, 30, bob.Bet, "ante plus small blind")
	assert.Equal(t, 50, carol.Bet, "ante plus big blind")
	assert.Equal(t, 10, alice.Bet, "ante only")
	assert.Equal(t, KindBet, bob.LastAction.Kind())
	assert.Equal(t, KindRaise, carol.LastAction.Kind())

	assert.Equal(t, []BlindPost{
		{Name: "Small", Player: "bob", Amount: 30},
		{Name: "Big", Player: "carol", Amount: 50},
	}, r.Blinds())
	assert.Equal(t, 50, r.BetSize())
	assert.Equal(t, 90, r.PotSize())
	assert.Equal(t, 20, r.BetIncrement())
	assert.Equal(t, "alice", acting(t, r))
	assert.True(t, r.IsAwaitingAction())

	for _, p := range r.Players() {
		assert.Len(t, p.Cards, 2)
	}
}

func TestStreetAutoAdvance(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob"), Rules{Button: "bob"})

	require.Equal(t, "alice", acting(t, r))
	mustAct(t, r, "alice", Bet{Amount: 100})
	assert.Equal(t, Dealt, r.Progress())

	mustAct(t, r, "bob", Call{Amount: 100})
	assert.Equal(t, Flopped, r.Progress())
	assert.Len(t, r.Community(), 3)
	assert.True(t, r.IsAwaitingAction())
	assert.Equal(t, "alice", acting(t, r))

	// Bets accumulate across streets, so the matched 100 can be checked.
	mustAct(t, r, "alice", Check{})
	mustAct(t, r, "bob", Check{})
	assert.Equal(t, Turned, r.Progress())
	assert.Len(t, r.Community(), 4)

	alice, _ := r.Player("alice")
	assert.Equal(t, 100, alice.Bet)
	assert.Equal(t, 0, alice.StreetBet())
}

func TestFoldEndsRound(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob"), DefaultRules())

	require.Equal(t, "bob", acting(t, r))
	mustAct(t, r, "bob", Fold{})

	assert.Equal(t, Ended, r.Progress())
	assert.False(t, r.IsAwaitingAction())
	_, ok := r.Acting()
	assert.False(t, ok)

	res := r.Result()
	require.NotNil(t, res)
	alice, _ := res.Player("alice")
	bob, _ := res.Player("bob")
	assert.Equal(t, 80, alice.Winnings)
	assert.Equal(t, 30, alice.Net)
	assert.Equal(t, -30, bob.Net)
	assert.True(t, bob.Folded)
	assert.Equal(t, 2, bob.Rank)
	assert.Equal(t, 1, alice.Rank)
}

func TestRejectedActionsLeaveStateUnchanged(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob"), DefaultRules())
	require.Equal(t, "bob", acting(t, r))

	tests := []struct {
		name    string
		player  string
		action  Action
		wantErr error
		class   ErrorClass
	}{
		{"check below bet", "bob", Check{}, ErrCheckNotAllowed, RuleViolation},
		{"bet over a bet", "bob", Bet{Amount: 100}, ErrBetNotAllowed, RuleViolation},
		{"raise to current", "bob", Raise{Amount: 50}, ErrRaiseTooLow, RuleViolation},
		{"raise beyond stack", "bob", Raise{Amount: 2000}, ErrInsufficientChips, RuleViolation},
		{"call wrong amount", "bob", Call{Amount: 40}, ErrCallAmount, RuleViolation},
		{"all-in wrong amount", "bob", AllIn{Amount: 500}, ErrAllInAmount, RuleViolation},
		{"missing action", "bob", nil, ErrUnknownAction, ProtocolViolation},
		{"out of turn", "alice", Fold{}, ErrNotYourTurn, ProtocolViolation},
		{"unknown player", "carol", Fold{}, ErrUnknownPlayer, ProtocolViolation},
	}

	before, err := Marshal(r)
	require.NoError(t, err)
	for _, tt := range tests {
		err := r.Act(tt.player, tt.action)
		require.ErrorIs(t, err, tt.wantErr, tt.name)
		assert.Equal(t, tt.class, Classify(err), tt.name)

		var actionErr *ActionError
		require.ErrorAs(t, err, &actionErr)
		assert.Equal(t, tt.player, actionErr.Player)
	}
	after, err := Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestCheckNeedsNonZeroBet(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob"), Rules{Button: "bob"})

	err := r.Act("alice", Check{})
	require.ErrorIs(t, err, ErrCheckNotAllowed)
	require.ErrorIs(t, r.Act("alice", Raise{Amount: 10}), ErrRaiseNotAllowed)
	require.ErrorIs(t, r.Act("alice", Call{Amount: 0}), ErrCallNotAllowed)
	require.ErrorIs(t, r.Act("alice", Bet{Amount: 0}), ErrInvalidAmount)
	assert.Equal(t, "alice", acting(t, r))
}

func TestRaiseReopensAction(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob", "carol"), DefaultRules())

	require.Equal(t, "alice", acting(t, r))
	mustAct(t, r, "alice", Call{Amount: 50})
	require.Equal(t, "bob", acting(t, r))
	mustAct(t, r, "bob", Raise{Amount: 150})
	assert.Equal(t, 100, r.BetIncrement())

	alice, _ := r.Player("alice")
	assert.False(t, alice.Acted, "raise clears acted flags")

	mustAct(t, r, "carol", Call{Amount: 150})
	assert.Equal(t, Dealt, r.Progress())
	mustAct(t, r, "alice", Call{Amount: 150})
	assert.Equal(t, Flopped, r.Progress())

	require.Equal(t, "bob", acting(t, r))
	for _, id := range []string{"bob", "carol", "alice"} {
		mustAct(t, r, id, Check{})
	}
	assert.Equal(t, Turned, r.Progress())
	assert.Equal(t, 450, r.PotSize())
}

func TestRaiseMinimum(t *testing.T) {
	t.Parallel()
	rules := DefaultRules()
	rules.RaiseMinimum = true
	r := newRound(t, players("alice", "bob"), rules)

	err := r.Act("bob", Raise{Amount: 60})
	require.ErrorIs(t, err, ErrRaiseTooSmall)
	assert.Equal(t, RuleViolation, Classify(err))

	legal := r.LegalActions("bob")
	assert.Contains(t, legal, LegalAction{Kind: KindRaise, Min: 70, Max: 1000})
	mustAct(t, r, "bob", Raise{Amount: 70})

	// Without the rule any increment is accepted.
	relaxed := newRound(t, players("alice", "bob"), DefaultRules())
	mustAct(t, relaxed, "bob", Raise{Amount: 51})
}

func TestLegalActions(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob"), DefaultRules())

	assert.Equal(t, []LegalAction{
		{Kind: KindFold},
		{Kind: KindCall, Min: 50, Max: 50},
		{Kind: KindRaise, Min: 51, Max: 1000},
		{Kind: KindAllIn, Min: 1000, Max: 1000},
	}, r.LegalActions("bob"))
	assert.Empty(t, r.LegalActions("alice"))

	mustAct(t, r, "bob", Call{Amount: 50})
	assert.Equal(t, Flopped, r.Progress())

	legal := r.LegalActions(acting(t, r))
	assert.Equal(t, []LegalAction{
		{Kind: KindFold},
		{Kind: KindCheck},
		{Kind: KindRaise, Min: 51, Max: 1000},
		{Kind: KindAllIn, Min: 1000, Max: 1000},
	}, legal)
}

func TestAllInRunsOutTheBoard(t *testing.T) {
	t.Parallel()
	ps := []Player{{ID: "alice", Stack: 1000}, {ID: "bob", Stack: 300}}
	r := newRound(t, ps, DefaultRules())

	mustAct(t, r, "bob", AllIn{Amount: 300})
	require.Equal(t, "alice", acting(t, r))
	mustAct(t, r, "alice", Call{Amount: 300})

	assert.Equal(t, Ended, r.Progress())
	assert.Len(t, r.Community(), 5)

	autoChecks := 0
	for _, e := range r.Events() {
		if e.Kind == EventAutoCheck {
			autoChecks++
			assert.Equal(t, "alice", e.Player)
		}
	}
	assert.Equal(t, 3, autoChecks)
	assert.Equal(t, 600, r.Result().Total())
}

func TestShortCallMustGoAllIn(t *testing.T) {
	t.Parallel()
	ps := []Player{{ID: "alice", Stack: 1000}, {ID: "bob", Stack: 1000}, {ID: "carol", Stack: 100}}
	r := newRound(t, ps, DefaultRules())

	mustAct(t, r, "alice", Raise{Amount: 400})
	mustAct(t, r, "bob", Call{Amount: 400})
	require.Equal(t, "carol", acting(t, r))

	require.ErrorIs(t, r.Act("carol", Call{Amount: 400}), ErrInsufficientChips)
	assert.NotContains(t, kinds(r.LegalActions("carol")), KindCall)
	mustAct(t, r, "carol", AllIn{Amount: 100})

	// Carol's short all-in does not reopen the betting.
	assert.Equal(t, Flopped, r.Progress())
}

func kinds(legal []LegalAction) []ActionKind {
	out := make([]ActionKind, len(legal))
	for i, l := range legal {
		out[i] = l.Kind
	}
	return out
}

func TestRemovePlayer(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob", "carol"), Rules{Ante: 10, Button: "alice"})

	require.Equal(t, "bob", acting(t, r))
	require.NoError(t, r.Remove("bob"))
	assert.Equal(t, "carol", acting(t, r), "removing the actor passes the turn")

	next, ok := r.NextPlayer("carol")
	require.True(t, ok)
	assert.Equal(t, "alice", next, "left players are skipped")

	require.NoError(t, r.Remove("carol"))
	assert.Equal(t, Ended, r.Progress())
	_, ok = r.NextPlayer("alice")
	assert.False(t, ok)

	res := r.Result()
	alice, _ := res.Player("alice")
	assert.Equal(t, 30, alice.Winnings)
	assert.Equal(t, 20, alice.Net)

	require.ErrorIs(t, r.Remove("zed"), ErrUnknownPlayer)
	require.NoError(t, r.Remove("alice"), "removing from an ended round is a no-op")
}

func TestRemoveCompletesStreet(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob", "carol"), Rules{Button: "alice"})

	mustAct(t, r, "bob", Bet{Amount: 100})
	mustAct(t, r, "carol", Call{Amount: 100})
	require.Equal(t, "alice", acting(t, r))

	// Alice disconnects while facing the bet: the street is complete.
	require.NoError(t, r.Remove("alice"))
	assert.Equal(t, Flopped, r.Progress())
	assert.Equal(t, "bob", acting(t, r))
}

func TestEndIsIdempotent(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("alice", "bob"), DefaultRules())

	r.End()
	require.True(t, r.Ended())
	events := len(r.Events())
	first := r.Result()

	r.End()
	assert.Len(t, r.Events(), events)
	assert.Equal(t, first, r.Result())

	err := r.Act("bob", Fold{})
	require.ErrorIs(t, err, ErrRoundEnded)
	assert.Equal(t, PreconditionViolation, Classify(err))
}

func TestSinglePlayerRound(t *testing.T) {
	t.Parallel()
	r := newRound(t, players("solo"), DefaultRules())

	assert.True(t, r.Ended())
	assert.Empty(t, r.Blinds())
	solo, _ := r.Result().Player("solo")
	assert.Equal(t, 0, solo.Net)
}

func TestRandomPlayInvariants(t *testing.T) {
	t.Parallel()
	for seed := range int64(200) {
		rng := randutil.New(seed)
		ps := []Player{
			{ID: "p1", Stack: 200 + rng.IntN(1000)},
			{ID: "p2", Stack: 200 + rng.IntN(1000)},
			{ID: "p3", Stack: 200 + rng.IntN(1000)},
			{ID: "p4", Stack: 50 + rng.IntN(200)},
		}
		r := newRound(t, ps[:2+rng.IntN(3)], DefaultRules(), WithRNG(rng))

		for steps := 0; !r.Ended(); steps++ {
			require.Less(t, steps, 500, "seed %d did not terminate", seed)
			id := acting(t, r)
			legal := r.LegalActions(id)
			require.NotEmpty(t, legal)
			mustAct(t, r, id, randomAction(rng, legal))
			assert.Equal(t, !r.Ended(), r.IsAwaitingAction(), "seed %d", seed)

			maxBet := r.BetSize()
			for _, p := range r.Players() {
				if p.Acted && p.Active() && !p.AllIn() {
					assert.Equal(t, maxBet, p.Bet, "seed %d: acted player %s unmatched", seed, p.ID)
				}
			}
		}

		res := r.Result()
		require.NotNil(t, res)
		assert.Equal(t, r.PotSize(), res.Total(), "seed %d: pot conservation", seed)

		paid, net := 0, 0
		for _, pot := range res.Pots {
			for _, w := range pot.Winnings {
				paid += w
			}
			assert.NotEmpty(t, pot.Winners)
		}
		for _, pr := range res.Players {
			net += pr.Net
		}
		assert.Equal(t, res.Total(), paid, "seed %d: winnings equal pots", seed)
		assert.Zero(t, net, "seed %d: nets sum to zero", seed)

		// At showdown every remaining player matched the bet or is all-in.
		active := 0
		for _, p := range r.Players() {
			if p.Active() {
				active++
			}
		}
		if active >= 2 {
			assert.Len(t, r.Community(), 5)
			for _, p := range r.Players() {
				if p.Active() {
					assert.True(t, p.AllIn() || p.Bet == r.BetSize(), "seed %d: %s unmatched at showdown", seed, p.ID)
				}
			}
		}
	}
}

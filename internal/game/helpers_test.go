package game

import (
	"io"
	rand "math/rand/v2"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/poker"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// players builds players with 1000 chips each.
func players(ids ...string) []Player {
	out := make([]Player, len(ids))
	for i, id := range ids {
		out[i] = Player{ID: id, Stack: 1000}
	}
	return out
}

// stackedDeck returns a deck that deals holes[i] to player i (dealing starts
// left of button) followed by board.
func stackedDeck(t *testing.T, button int, holes []string, board string) *poker.Deck {
	t.Helper()
	n := len(holes)
	parsed := make([]poker.Cards, n)
	for i, h := range holes {
		parsed[i] = poker.MustParseCards(h)
		require.Len(t, parsed[i], 2)
	}

	var order poker.Cards
	for k := range 2 {
		for j := range n {
			order = append(order, parsed[(button+1+j)%n][k])
		}
	}
	order = append(order, poker.MustParseCards(board)...)

	cards := poker.FullDeck().RelativeComplement(order)
	for i := len(order) - 1; i >= 0; i-- {
		cards = append(cards, order[i])
	}
	require.Len(t, cards, 52)
	return poker.NewDeckFromCards(cards)
}

func newRound(t *testing.T, ps []Player, rules Rules, opts ...RoundOption) *Round {
	t.Helper()
	opts = append([]RoundOption{WithID("round_test"), WithLogger(quietLogger())}, opts...)
	r, err := New(ps, rules, opts...)
	require.NoError(t, err)
	return r
}

func mustAct(t *testing.T, r *Round, id string, a Action) {
	t.Helper()
	require.NoError(t, r.Act(id, a), "%s %s", id, describeAction(a))
}

func acting(t *testing.T, r *Round) string {
	t.Helper()
	id, ok := r.Acting()
	require.True(t, ok, "no acting player at %s", r.Progress())
	return id
}

// randomAction picks a legal action, favouring passive play so rounds
// regularly reach showdown.
func randomAction(rng *rand.Rand, legal []LegalAction) Action {
	pick := legal[rng.IntN(len(legal))]
	if pick.Kind == KindFold && len(legal) > 1 && rng.IntN(3) > 0 {
		pick = legal[1+rng.IntN(len(legal)-1)]
	}
	amount := pick.Min
	if pick.Max > pick.Min {
		amount += rng.IntN(min(pick.Max-pick.Min, 200) + 1)
	}
	a, _ := NewAction(pick.Kind, amount)
	return a
}

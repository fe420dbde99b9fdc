package simulator

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/lox/pokertable/internal/game"
)

// Strategy picks an action for the acting player from their own projection
// of the round. It only ever sees what that player is allowed to see.
type Strategy interface {
	Decide(rng *rand.Rand, view game.View) game.Action
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(rng *rand.Rand, view game.View) game.Action

func (f StrategyFunc) Decide(rng *rand.Rand, view game.View) game.Action { return f(rng, view) }

var strategies = map[string]Strategy{
	"random": StrategyFunc(randomStrategy),
	"call":   StrategyFunc(callStrategy),
	"maniac": StrategyFunc(maniacStrategy),
}

// Strategies lists the available strategy names, plus "mixed" which seats
// them in rotation.
func Strategies() []string {
	names := make([]string, 0, len(strategies)+1)
	for name := range strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return append(names, "mixed")
}

// LookupStrategy returns the strategy for each seat of a table.
func LookupStrategy(name string, seats int) ([]Strategy, error) {
	name = strings.ToLower(name)
	out := make([]Strategy, seats)
	if name == "mixed" {
		mix := []string{"random", "call", "maniac"}
		for i := range out {
			out[i] = strategies[mix[i%len(mix)]]
		}
		return out, nil
	}
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (want one of %s)", name, strings.Join(Strategies(), ", "))
	}
	for i := range out {
		out[i] = s
	}
	return out, nil
}

func find(legal []game.LegalAction, kind game.ActionKind) (game.LegalAction, bool) {
	for _, l := range legal {
		if l.Kind == kind {
			return l, true
		}
	}
	return game.LegalAction{}, false
}

func build(l game.LegalAction, amount int) game.Action {
	a, err := game.NewAction(l.Kind, amount)
	if err != nil {
		return game.Fold{}
	}
	return a
}

// randomStrategy picks any legal action, leaning away from folding so rounds
// regularly reach showdown. Sized actions use a random amount in range.
func randomStrategy(rng *rand.Rand, view game.View) game.Action {
	legal := view.LegalActions
	if len(legal) == 0 {
		return game.Fold{}
	}
	pick := legal[rng.IntN(len(legal))]
	if pick.Kind == game.KindFold && len(legal) > 1 && rng.IntN(3) > 0 {
		pick = legal[1+rng.IntN(len(legal)-1)]
	}
	amount := pick.Min
	if pick.Max > pick.Min {
		amount += rng.IntN(min(pick.Max-pick.Min, 4*max(view.BetIncrement, 50)) + 1)
	}
	return build(pick, amount)
}

// callStrategy checks when it can and calls otherwise, going all-in when a
// call would take the whole stack.
func callStrategy(_ *rand.Rand, view game.View) game.Action {
	for _, kind := range []game.ActionKind{game.KindCheck, game.KindCall, game.KindAllIn} {
		if l, ok := find(view.LegalActions, kind); ok {
			return build(l, l.Min)
		}
	}
	return game.Fold{}
}

// maniacStrategy bets and raises big, shoves often and rarely folds.
func maniacStrategy(rng *rand.Rand, view game.View) game.Action {
	legal := view.LegalActions
	roll := rng.Float64()

	if roll < 0.25 {
		if l, ok := find(legal, game.KindAllIn); ok {
			return build(l, l.Min)
		}
	}
	if roll < 0.7 {
		for _, kind := range []game.ActionKind{game.KindBet, game.KindRaise} {
			if l, ok := find(legal, kind); ok {
				return build(l, l.Min+(l.Max-l.Min)*3/4)
			}
		}
	}
	if roll < 0.9 {
		return callStrategy(rng, view)
	}
	if l, ok := find(legal, game.KindCheck); ok {
		return build(l, 0)
	}
	return game.Fold{}
}

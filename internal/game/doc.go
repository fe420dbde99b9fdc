// Package game implements a multi-player Texas Hold'em betting round and the
// table that runs rounds back to back.
//
// The main type is Round, a state machine that deals, enforces turn order
// and action legality, advances through the streets and settles the pots,
// including side pots for all-in players.
//
// # Basic Usage
//
//	r, err := game.New(players, game.DefaultRules(), game.WithRNG(randutil.New(42)))
//	if err != nil {
//	    return err
//	}
//	acting, _ := r.Acting()
//	if err := r.Act(acting, game.Call{Amount: r.BetSize()}); err != nil {
//	    switch game.Classify(err) {
//	    case game.ProtocolViolation: // out of turn, unknown action
//	    case game.RuleViolation:     // wrong amount, illegal check
//	    }
//	}
//	if r.Ended() {
//	    for _, p := range r.Result().Players {
//	        fmt.Println(p.ID, p.Net)
//	    }
//	}
//
// Amounts are totals for the whole round: a player who posted a 40 blind
// and calls a raise to 120 sends Call{Amount: 120}.
//
// # Views
//
// Project builds a per-viewer View that hides other players' hole cards
// until showdown and attaches the viewer's legal actions. Views never share
// memory with the round.
//
// # Persistence
//
// Marshal and Unmarshal round-trip the complete state, including the undealt
// deck, acted flags and history. Unmarshal rejects snapshots that break a
// round invariant.
//
// # Tables
//
// Table seats up to eight players, rotates the button between rounds and
// applies each round's net result to the seat stacks exactly once.
package game

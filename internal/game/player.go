package game

import "github.com/lox/pokertable/poker"

// Player is a participant handed to New.
type Player struct {
	ID    string
	Name  string
	Stack int
}

// PlayerState is a player's state within one round.
type PlayerState struct {
	// Order is the player's fixed turn order index for the round.
	Order int
	ID    string
	Name  string
	// Stack is the player's worth when the round started. It does not
	// shrink as chips are committed.
	Stack int
	// Bet is the total committed this round. It accumulates across streets.
	Bet int
	// StreetStart is Bet as it stood when the current street opened.
	StreetStart int
	Acted       bool
	LastAction  Action
	Cards       poker.Cards
	Folded      bool
	Left        bool
}

// Active reports whether the player is still in the round.
func (p *PlayerState) Active() bool {
	return !p.Folded && !p.Left
}

// AllIn reports whether the player has committed their whole stake.
func (p *PlayerState) AllIn() bool {
	return p.Bet >= p.Stack
}

// StreetBet is the amount committed on the current street.
func (p *PlayerState) StreetBet() int {
	return p.Bet - p.StreetStart
}

// Remaining is the part of the stake not yet committed.
func (p *PlayerState) Remaining() int {
	return max(p.Stack-p.Bet, 0)
}

func (p *PlayerState) clone() PlayerState {
	out := *p
	out.Cards = p.Cards.Clone()
	return out
}

package game

// LegalAction is an action the acting player may take. Min and Max bound the
// amount; for Call and AllIn they are equal, for Fold and Check they are 0.
type LegalAction struct {
	Kind ActionKind `json:"kind"`
	Min  int        `json:"min,omitempty"`
	Max  int        `json:"max,omitempty"`
}

// Allows reports whether a matches the kind and amount bounds.
func (l LegalAction) Allows(a Action) bool {
	if a == nil || a.Kind() != l.Kind {
		return false
	}
	switch l.Kind {
	case KindFold, KindCheck:
		return true
	}
	amount := ActionAmount(a)
	return amount >= l.Min && amount <= l.Max
}

func canCheck(p *PlayerState, maxBet int) bool {
	return p.Bet == maxBet && p.Bet > 0
}

func canBet(maxBet int) bool {
	return maxBet == 0
}

func canRaise(maxBet int) bool {
	return maxBet > 0
}

func canCall(p *PlayerState, maxBet int) bool {
	return maxBet > 0 && p.Bet != maxBet
}

func canAllIn(p *PlayerState) bool {
	return !p.AllIn()
}

// LegalActions returns what playerID may do now. It is empty unless the
// player is the one to act.
func (r *Round) LegalActions(playerID string) []LegalAction {
	if r.acting < 0 || r.players[r.acting].ID != playerID {
		return nil
	}
	return r.legalActions(r.players[r.acting])
}

func (r *Round) legalActions(p *PlayerState) []LegalAction {
	maxBet := r.maxBet()
	actions := []LegalAction{{Kind: KindFold}}
	if canCheck(p, maxBet) {
		actions = append(actions, LegalAction{Kind: KindCheck})
	}
	if canBet(maxBet) && p.Stack > 0 {
		actions = append(actions, LegalAction{Kind: KindBet, Min: 1, Max: p.Stack})
	}
	if canCall(p, maxBet) && maxBet <= p.Stack {
		actions = append(actions, LegalAction{Kind: KindCall, Min: maxBet, Max: maxBet})
	}
	if canRaise(maxBet) {
		lowest := maxBet + 1
		if r.rules.RaiseMinimum {
			lowest = maxBet + max(r.betIncrement, 1)
		}
		// Short of a full raise only all-in remains.
		if lowest <= p.Stack {
			actions = append(actions, LegalAction{Kind: KindRaise, Min: lowest, Max: p.Stack})
		}
	}
	if canAllIn(p) {
		actions = append(actions, LegalAction{Kind: KindAllIn, Min: p.Stack, Max: p.Stack})
	}
	return actions
}

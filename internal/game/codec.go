package game

import (
	"encoding/json"
	"fmt"

	"github.com/lox/pokertable/poker"
)

const snapshotVersion = 1

type roundSnapshot struct {
	Version      int              `json:"version"`
	ID           string           `json:"id"`
	Rules        Rules            `json:"rules"`
	Progress     Progress         `json:"progress"`
	Deck         poker.Cards      `json:"deck"`
	Community    poker.Cards      `json:"community"`
	Players      []playerSnapshot `json:"players"`
	Acting       string           `json:"acting,omitempty"`
	BetIncrement int              `json:"betIncrement"`
	Blinds       []BlindPost      `json:"blinds"`
	Events       []Event          `json:"events"`
	Result       *Result          `json:"result,omitempty"`
}

type playerSnapshot struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Stack       int           `json:"stack"`
	Bet         int           `json:"bet"`
	StreetStart int           `json:"streetStart"`
	Acted       bool          `json:"acted"`
	Folded      bool          `json:"folded"`
	Left        bool          `json:"left"`
	LastAction  *ActionRecord `json:"lastAction,omitempty"`
	Cards       poker.Cards   `json:"cards"`
}

// Marshal serializes the complete round, including the undealt deck.
func Marshal(r *Round) ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal restores a round written by Marshal.
func Unmarshal(data []byte, opts ...RoundOption) (*Round, error) {
	var cfg roundConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Round{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	r.logger = cfg.roundLogger(r.id)
	return r, nil
}

// MarshalJSON implements json.Marshaler.
func (r *Round) MarshalJSON() ([]byte, error) {
	s := roundSnapshot{
		Version:      snapshotVersion,
		ID:           r.id,
		Rules:        r.rules,
		Progress:     r.progress,
		Deck:         r.deck.Cards(),
		Community:    r.community,
		BetIncrement: r.betIncrement,
		Blinds:       r.blinds,
		Events:       r.events,
		Result:       r.result,
	}
	if acting, ok := r.Acting(); ok {
		s.Acting = acting
	}
	for _, p := range r.players {
		s.Players = append(s.Players, playerSnapshot{
			ID:          p.ID,
			Name:        p.Name,
			Stack:       p.Stack,
			Bet:         p.Bet,
			StreetStart: p.StreetStart,
			Acted:       p.Acted,
			Folded:      p.Folded,
			Left:        p.Left,
			LastAction:  RecordOf(p.LastAction),
			Cards:       p.Cards,
		})
	}
	return json.Marshal(s)
}

// UnmarshalJSON implements json.Unmarshaler. The restored state is checked
// against the round invariants before it is accepted.
func (r *Round) UnmarshalJSON(data []byte) error {
	var s roundSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, s.Version)
	}

	restored := Round{
		id:           s.ID,
		rules:        s.Rules,
		progress:     s.Progress,
		deck:         poker.NewDeckFromCards(s.Deck),
		community:    s.Community,
		acting:       -1,
		betIncrement: s.BetIncrement,
		blinds:       s.Blinds,
		events:       s.Events,
		result:       s.Result,
		logger:       r.logger,
	}
	for i, ps := range s.Players {
		p := &PlayerState{
			Order:       i,
			ID:          ps.ID,
			Name:        ps.Name,
			Stack:       ps.Stack,
			Bet:         ps.Bet,
			StreetStart: ps.StreetStart,
			Acted:       ps.Acted,
			Folded:      ps.Folded,
			Left:        ps.Left,
			Cards:       ps.Cards,
		}
		if ps.LastAction != nil {
			a, err := ps.LastAction.Action()
			if err != nil {
				return fmt.Errorf("%w: player %s: %v", ErrInvalidSnapshot, ps.ID, err)
			}
			p.LastAction = a
		}
		restored.players = append(restored.players, p)
	}
	if s.Acting != "" {
		restored.acting = restored.index(s.Acting)
		if restored.acting < 0 {
			return fmt.Errorf("%w: acting player %s not in round", ErrInvalidSnapshot, s.Acting)
		}
	}

	if err := restored.checkInvariants(); err != nil {
		return err
	}
	if restored.logger == nil {
		restored.logger = (&roundConfig{}).roundLogger(restored.id)
	}
	*r = restored
	return nil
}

// checkInvariants verifies a restored round.
func (r *Round) checkInvariants() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidSnapshot}, args...)...)
	}

	if r.id == "" {
		return invalid("missing id")
	}
	if len(r.players) == 0 {
		return invalid("no players")
	}
	if err := r.rules.Validate(); err != nil {
		return invalid("%v", err)
	}
	if r.progress == Starting || r.progress > Ended {
		return invalid("progress %s", r.progress)
	}
	if r.index(r.rules.Button) < 0 {
		return invalid("button %s not in round", r.rules.Button)
	}

	seen := make(map[poker.Card]bool, 52)
	addCards := func(where string, cards poker.Cards) error {
		for _, c := range cards {
			if !c.IsKnown() {
				return invalid("unknown card in %s", where)
			}
			if seen[c] {
				return invalid("card %s appears twice", c)
			}
			seen[c] = true
		}
		return nil
	}
	if err := addCards("deck", r.deck.Cards()); err != nil {
		return err
	}
	if err := addCards("community", r.community); err != nil {
		return err
	}

	ids := make(map[string]bool, len(r.players))
	for _, p := range r.players {
		if p.ID == "" || ids[p.ID] {
			return invalid("missing or duplicate player id %q", p.ID)
		}
		ids[p.ID] = true
		if len(p.Cards) != 2 {
			return invalid("player %s holds %d cards", p.ID, len(p.Cards))
		}
		if err := addCards("player "+p.ID, p.Cards); err != nil {
			return err
		}
		if p.Stack <= 0 || p.Bet < 0 || p.Bet > p.Stack || p.StreetStart > p.Bet {
			return invalid("player %s has bet %d of stack %d", p.ID, p.Bet, p.Stack)
		}
	}
	if len(seen) != 52 {
		return invalid("%d cards accounted for, want 52", len(seen))
	}

	// Community cards only count from the flop; an ended round may stop at
	// any street.
	want := r.progress.communityCards()
	if r.progress == Ended {
		switch len(r.community) {
		case 0, 3, 4, 5:
		default:
			return invalid("%d community cards", len(r.community))
		}
	} else if len(r.community) != want {
		return invalid("%d community cards at %s", len(r.community), r.progress)
	}

	maxBet := r.maxBet()
	for _, p := range r.players {
		if p.Acted && p.Active() && p.Bet != maxBet && !p.AllIn() {
			return invalid("player %s acted but has not matched %d", p.ID, maxBet)
		}
	}

	switch {
	case r.progress == Ended:
		if r.acting >= 0 {
			return invalid("ended round has an acting player")
		}
		if r.result == nil {
			return invalid("ended round without result")
		}
	case r.acting < 0:
		return invalid("no acting player")
	case !needsAction(r.players[r.acting], maxBet):
		return invalid("acting player %s has nothing to do", r.players[r.acting].ID)
	}
	return nil
}

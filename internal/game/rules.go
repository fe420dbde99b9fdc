package game

import "fmt"

// Blind is one rung of the blind ladder.
type Blind struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Rules configure a round.
type Rules struct {
	Ante   int     `json:"ante"`
	Blinds []Blind `json:"blinds"`
	// Button is the dealer button player id. Empty means the first player.
	Button string `json:"button,omitempty"`
	// Limit selects the betting structure. Only 0 (no-limit) is supported.
	Limit int `json:"limit"`
	// RaiseMinimum rejects raises whose increment is below the largest
	// increment seen so far in the round.
	RaiseMinimum bool `json:"raiseMinimum"`
}

// DefaultRules returns ante 10 with Small 20 and Big 40 blinds.
func DefaultRules() Rules {
	return Rules{
		Ante: 10,
		Blinds: []Blind{
			{Name: "Small", Value: 20},
			{Name: "Big", Value: 40},
		},
	}
}

// Validate checks the rule values.
func (r Rules) Validate() error {
	if r.Limit != 0 {
		return fmt.Errorf("%w: limit %d", ErrUnsupportedLimit, r.Limit)
	}
	if r.Ante < 0 {
		return fmt.Errorf("%w: ante must not be negative", ErrInvalidRules)
	}
	for _, b := range r.Blinds {
		if b.Value <= 0 {
			return fmt.Errorf("%w: blind %q must be positive", ErrInvalidRules, b.Name)
		}
	}
	return nil
}

func (r Rules) clone() Rules {
	out := r
	out.Blinds = append([]Blind(nil), r.Blinds...)
	return out
}

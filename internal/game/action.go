package game

import (
	"fmt"
	"strings"
)

// ActionKind identifies a betting action.
type ActionKind uint8

const (
	NoAction ActionKind = iota
	KindFold
	KindCheck
	KindBet
	KindRaise
	KindCall
	KindAllIn
)

var actionKindNames = [...]string{"NONE", "FOLD", "CHECK", "BET", "RAISE", "CALL", "ALL_IN"}

func (k ActionKind) String() string {
	if int(k) >= len(actionKindNames) {
		return "UNKNOWN"
	}
	return actionKindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ActionKind) UnmarshalText(text []byte) error {
	if string(text) == "NONE" {
		*k = NoAction
		return nil
	}
	parsed, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseActionKind parses an action name, case-insensitively. "allin",
// "all-in" and "all_in" are all accepted.
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FOLD":
		return KindFold, nil
	case "CHECK":
		return KindCheck, nil
	case "BET":
		return KindBet, nil
	case "RAISE":
		return KindRaise, nil
	case "CALL":
		return KindCall, nil
	case "ALL_IN", "ALLIN", "ALL-IN":
		return KindAllIn, nil
	}
	return NoAction, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Action is one of Fold, Check, Bet, Raise, Call or AllIn. Amounts are the
// player's total commitment for the round after the action, not the chips
// added by it.
type Action interface {
	Kind() ActionKind
	isAction()
}

type (
	Fold  struct{}
	Check struct{}
	Bet   struct{ Amount int }
	Raise struct{ Amount int }
	Call  struct{ Amount int }
	AllIn struct{ Amount int }
)

func (Fold) Kind() ActionKind  { return KindFold }
func (Check) Kind() ActionKind { return KindCheck }
func (Bet) Kind() ActionKind   { return KindBet }
func (Raise) Kind() ActionKind { return KindRaise }
func (Call) Kind() ActionKind  { return KindCall }
func (AllIn) Kind() ActionKind { return KindAllIn }

func (Fold) isAction()  {}
func (Check) isAction() {}
func (Bet) isAction()   {}
func (Raise) isAction() {}
func (Call) isAction()  {}
func (AllIn) isAction() {}

// NewAction builds an action from a kind and amount, as received from a
// transport. Fold and Check ignore the amount.
func NewAction(kind ActionKind, amount int) (Action, error) {
	switch kind {
	case KindFold:
		return Fold{}, nil
	case KindCheck:
		return Check{}, nil
	case KindBet:
		return Bet{Amount: amount}, nil
	case KindRaise:
		return Raise{Amount: amount}, nil
	case KindCall:
		return Call{Amount: amount}, nil
	case KindAllIn:
		return AllIn{Amount: amount}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownAction, kind)
}

// ActionAmount returns the amount carried by an action, 0 for Fold and Check.
func ActionAmount(a Action) int {
	switch a := a.(type) {
	case Bet:
		return a.Amount
	case Raise:
		return a.Amount
	case Call:
		return a.Amount
	case AllIn:
		return a.Amount
	}
	return 0
}

func describeAction(a Action) string {
	if a == nil {
		return "act"
	}
	switch a.Kind() {
	case KindFold, KindCheck:
		return strings.ToLower(a.Kind().String())
	}
	return fmt.Sprintf("%s %d", strings.ToLower(a.Kind().String()), ActionAmount(a))
}

// ActionRecord is the serializable form of an action.
type ActionRecord struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
}

// RecordOf converts an action to its record. A nil action gives nil.
func RecordOf(a Action) *ActionRecord {
	if a == nil {
		return nil
	}
	return &ActionRecord{Kind: a.Kind(), Amount: ActionAmount(a)}
}

// Action converts the record back to an action.
func (r ActionRecord) Action() (Action, error) {
	return NewAction(r.Kind, r.Amount)
}

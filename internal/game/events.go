package game

import (
	"fmt"

	"github.com/lox/pokertable/poker"
)

// Progress is the round's position in its lifecycle.
type Progress uint8

const (
	Starting Progress = iota
	Dealt
	Flopped
	Turned
	Rivered
	Ended
)

var progressNames = [...]string{"STARTING", "DEALT", "FLOPPED", "TURNED", "RIVERED", "ENDED"}

func (p Progress) String() string {
	if int(p) >= len(progressNames) {
		return "UNKNOWN"
	}
	return progressNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Progress) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Progress) UnmarshalText(text []byte) error {
	for i, name := range progressNames {
		if name == string(text) {
			*p = Progress(i)
			return nil
		}
	}
	return fmt.Errorf("unknown progress %q", text)
}

// communityCards is the number of community cards visible at each progress.
func (p Progress) communityCards() int {
	switch p {
	case Flopped:
		return 3
	case Turned:
		return 4
	case Rivered:
		return 5
	}
	return 0
}

// EventKind identifies an entry in a round's history.
type EventKind string

const (
	EventDeal      EventKind = "deal"
	EventAnte      EventKind = "ante"
	EventBlind     EventKind = "blind"
	EventAction    EventKind = "action"
	EventAutoCheck EventKind = "auto_check"
	EventStreet    EventKind = "street"
	EventRemove    EventKind = "remove"
	EventEnd       EventKind = "end"
)

// Event is one entry in a round's history.
type Event struct {
	Kind     EventKind     `json:"kind"`
	Player   string        `json:"player,omitempty"`
	Action   *ActionRecord `json:"action,omitempty"`
	Blind    string        `json:"blind,omitempty"`
	Amount   int           `json:"amount,omitempty"`
	Progress Progress      `json:"progress"`
	Cards    poker.Cards   `json:"cards,omitempty"`
}

// String renders the event for logs.
func (e Event) String() string {
	switch e.Kind {
	case EventDeal:
		return fmt.Sprintf("%s dealt %d cards", e.Player, e.Amount)
	case EventAnte:
		return fmt.Sprintf("%s posts ante %d", e.Player, e.Amount)
	case EventBlind:
		return fmt.Sprintf("%s posts %s blind %d", e.Player, e.Blind, e.Amount)
	case EventAction:
		if e.Action == nil {
			return e.Player + " acts"
		}
		a, err := e.Action.Action()
		if err != nil {
			return e.Player + " acts"
		}
		return fmt.Sprintf("%s: %s", e.Player, describeAction(a))
	case EventAutoCheck:
		return e.Player + " checks (no decision left)"
	case EventStreet:
		return fmt.Sprintf("%s: %s", e.Progress, e.Cards)
	case EventRemove:
		return e.Player + " left the round"
	case EventEnd:
		return "Round ended"
	}
	return string(e.Kind)
}

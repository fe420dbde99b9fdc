package game

import (
	"errors"
	"fmt"
)

// Round construction errors.
var (
	ErrNoPlayers        = errors.New("round needs at least one player")
	ErrTooManyPlayers   = errors.New("too many players for one deck")
	ErrDuplicatePlayer  = errors.New("duplicate player id")
	ErrInvalidStack     = errors.New("stack must be positive")
	ErrButtonNotSeated  = errors.New("button player is not in the round")
	ErrUnsupportedLimit = errors.New("only no-limit (limit 0) is supported")
	ErrInvalidRules     = errors.New("invalid rules")
)

// Protocol violations: the request itself is malformed or out of turn.
var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrUnknownAction = errors.New("unknown action")
)

// Rule violations: the action is well-formed but not allowed right now.
var (
	ErrCheckNotAllowed   = errors.New("check not allowed, there is no matched bet")
	ErrBetNotAllowed     = errors.New("bet not allowed, there is already a bet")
	ErrRaiseNotAllowed   = errors.New("raise not allowed, there is no bet to raise")
	ErrCallNotAllowed    = errors.New("call not allowed, nothing to call")
	ErrAllInNotAllowed   = errors.New("all-in not allowed, stake already committed")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrRaiseTooLow       = errors.New("raise must exceed the current bet")
	ErrRaiseTooSmall     = errors.New("raise increment below minimum")
	ErrCallAmount        = errors.New("call must match the current bet")
	ErrAllInAmount       = errors.New("all-in must commit the whole stake")
	ErrInsufficientChips = errors.New("insufficient chips")
)

// Precondition violations on terminal rounds and tables.
var (
	ErrRoundEnded       = errors.New("round has ended")
	ErrNoRound          = errors.New("no round in progress")
	ErrRoundInProgress  = errors.New("round already in progress")
	ErrNotEnoughPlayers = errors.New("not enough players to start a round")
	ErrTableFull        = errors.New("table is full")
	ErrNotSeated        = errors.New("player is not seated")
)

// ErrInvalidSnapshot is returned when restored state breaks a round invariant.
var ErrInvalidSnapshot = errors.New("invalid round snapshot")

// ErrorClass groups rejections so callers can present specific feedback.
type ErrorClass int

const (
	Unclassified ErrorClass = iota
	ProtocolViolation
	RuleViolation
	PreconditionViolation
)

func (c ErrorClass) String() string {
	switch c {
	case ProtocolViolation:
		return "protocol_violation"
	case RuleViolation:
		return "rule_violation"
	case PreconditionViolation:
		return "precondition_violation"
	default:
		return "unclassified"
	}
}

var errorClasses = map[ErrorClass][]error{
	ProtocolViolation: {ErrUnknownPlayer, ErrNotYourTurn, ErrUnknownAction},
	RuleViolation: {
		ErrCheckNotAllowed, ErrBetNotAllowed, ErrRaiseNotAllowed, ErrCallNotAllowed,
		ErrAllInNotAllowed, ErrInvalidAmount, ErrRaiseTooLow, ErrRaiseTooSmall,
		ErrCallAmount, ErrAllInAmount, ErrInsufficientChips,
	},
	PreconditionViolation: {
		ErrRoundEnded, ErrNoRound, ErrRoundInProgress, ErrNotEnoughPlayers,
		ErrTableFull, ErrNotSeated,
	},
}

// Classify returns the class of a rejection returned by this package.
func Classify(err error) ErrorClass {
	if err == nil {
		return Unclassified
	}
	for class, targets := range errorClasses {
		for _, target := range targets {
			if errors.Is(err, target) {
				return class
			}
		}
	}
	return Unclassified
}

// ActionError is returned when Act rejects an action. State is unchanged.
type ActionError struct {
	Player string
	Action Action
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("player %s cannot %s: %v", e.Player, describeAction(e.Action), e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

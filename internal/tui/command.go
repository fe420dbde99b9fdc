package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/pokertable/internal/game"
)

// ErrInvalidCommand is returned for input that is not a command.
var ErrInvalidCommand = errors.New("invalid command")

// Command is one line typed at the prompt.
type Command struct {
	Quit   bool
	Next   bool
	Action game.Action
}

// ParseCommand turns prompt input into a command for the acting player in
// v. Amounts are round totals, as everywhere else: "raise 200" means a
// total commitment of 200. "call" and "allin" fill in their amounts.
func ParseCommand(input string, v *game.View) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{Next: true}, nil
	}

	word, args := fields[0], fields[1:]
	switch word {
	case "q", "quit", "exit":
		return Command{Quit: true}, nil
	case "n", "next", "deal":
		return Command{Next: true}, nil
	}

	if v == nil || v.Acting == "" {
		return Command{}, fmt.Errorf("%w: no round in play, press enter to deal", ErrInvalidCommand)
	}
	acting, _ := v.Player(v.Acting)

	amount := func() (int, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%w: %s needs an amount", ErrInvalidCommand, word)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: bad amount %q", ErrInvalidCommand, args[0])
		}
		return n, nil
	}

	switch word {
	case "f", "fold":
		return Command{Action: game.Fold{}}, nil
	case "k", "check":
		return Command{Action: game.Check{}}, nil
	case "c", "call":
		return Command{Action: game.Call{Amount: v.BetSize}}, nil
	case "a", "allin", "all-in", "shove":
		return Command{Action: game.AllIn{Amount: acting.Stack}}, nil
	case "b", "bet":
		n, err := amount()
		if err != nil {
			return Command{}, err
		}
		return Command{Action: game.Bet{Amount: n}}, nil
	case "r", "raise":
		n, err := amount()
		if err != nil {
			return Command{}, err
		}
		return Command{Action: game.Raise{Amount: n}}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, word)
}

package poker

import (
	"errors"
	"fmt"
	"strings"
)

// Suit is one of the four card suits. Suits carry no ranking.
type Suit uint8

const (
	NoSuit Suit = iota
	Hearts
	Spades
	Clubs
	Diamonds
)

// Suits lists every suit in deck order.
var Suits = [...]Suit{Hearts, Spades, Clubs, Diamonds}

var suitSymbols = [...]string{"?", "♥", "♠", "♣", "♦"}

// String returns the suit symbol.
func (s Suit) String() string {
	if int(s) >= len(suitSymbols) {
		return "?"
	}
	return suitSymbols[s]
}

// IsRed reports whether the suit is hearts or diamonds.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Value is a card value, ordered Two (lowest) to Ace (highest).
type Value uint8

const (
	NoValue Value = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Values lists every value from lowest to highest.
var Values = [...]Value{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var valueNames = [...]string{"?", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// String returns the value as printed on the card ("2".."10", "J", "Q", "K", "A").
func (v Value) String() string {
	if int(v) >= len(valueNames) {
		return "?"
	}
	return valueNames[v]
}

// Card is an immutable value and suit pair. The zero Card is the unknown
// placeholder used to conceal cards in projected views.
type Card struct {
	Value Value
	Suit  Suit
}

// Unknown is the placeholder for a concealed card.
var Unknown = Card{}

var ErrInvalidCard = errors.New("invalid card")

// NewCard creates a card from a value and suit.
func NewCard(value Value, suit Suit) Card {
	return Card{Value: value, Suit: suit}
}

// Rank returns the card's rank in 0..12 (Two is 0, Ace is 12), or -1 for an
// unknown card.
func (c Card) Rank() int {
	if !c.IsKnown() {
		return -1
	}
	return int(c.Value) - 1
}

// IsKnown reports whether the card has a real value and suit.
func (c Card) IsKnown() bool {
	return c.Value >= Two && c.Value <= Ace && c.Suit >= Hearts && c.Suit <= Diamonds
}

// IsSameSuit reports whether both cards share a suit.
func (c Card) IsSameSuit(other Card) bool {
	return c.Suit == other.Suit
}

// IsSameCard reports whether both cards have the same value and suit.
func (c Card) IsSameCard(other Card) bool {
	return c.Value == other.Value && c.Suit == other.Suit
}

// IsRed reports whether the card is a heart or diamond.
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// String renders the card as value then suit symbol, e.g. "A♥" or "10♠".
func (c Card) String() string {
	if !c.IsKnown() {
		return "??"
	}
	return c.Value.String() + c.Suit.String()
}

// MarshalText implements encoding.TextMarshaler.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a single card. It accepts suit symbols or letters and
// "10" or "T" for ten: "A♥", "10♠", "Td", "ks". The string "??" parses to
// Unknown.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "??" {
		return Unknown, nil
	}
	runes := []rune(s)
	if len(runes) < 2 || len(runes) > 3 {
		return Unknown, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	suit, ok := parseSuit(runes[len(runes)-1])
	if !ok {
		return Unknown, fmt.Errorf("%w: unknown suit in %q", ErrInvalidCard, s)
	}
	value, ok := parseValue(strings.ToUpper(string(runes[:len(runes)-1])))
	if !ok {
		return Unknown, fmt.Errorf("%w: unknown value in %q", ErrInvalidCard, s)
	}
	return NewCard(value, suit), nil
}

// MustParseCard is ParseCard that panics on error. Intended for tests and
// fixed tables.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseSuit(r rune) (Suit, bool) {
	switch r {
	case '♥', 'h', 'H':
		return Hearts, true
	case '♠', 's', 'S':
		return Spades, true
	case '♣', 'c', 'C':
		return Clubs, true
	case '♦', 'd', 'D':
		return Diamonds, true
	}
	return NoSuit, false
}

func parseValue(s string) (Value, bool) {
	if s == "T" {
		return Ten, true
	}
	for i, name := range valueNames {
		if i > 0 && name == s {
			return Value(i), true
		}
	}
	return NoValue, false
}

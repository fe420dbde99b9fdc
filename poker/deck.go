package poker

import (
	"errors"
	rand "math/rand/v2"
)

// ErrEmptyDeck is the panic value raised when drawing from an empty deck.
var ErrEmptyDeck = errors.New("draw from empty deck")

// Deck is an ordered, mutable card sequence. Cards are drawn from the end.
type Deck struct {
	cards Cards
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a shuffled 52-card deck using rng. A nil rng falls back to
// the global source.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: FullDeck(),
		rng:   rng,
	}
	d.Shuffle()
	return d
}

// NewDeckFromCards creates a deck holding exactly the given cards, in order.
// The last card is drawn first.
func NewDeckFromCards(cards Cards) *Deck {
	return &Deck{cards: cards.Clone()}
}

// FullDeck returns the 52 unique cards in suit then value order.
func FullDeck() Cards {
	cards := make(Cards, 0, len(Suits)*len(Values))
	for _, s := range Suits {
		for _, v := range Values {
			cards = append(cards, NewCard(v, s))
		}
	}
	return cards
}

// Shuffle shuffles the remaining cards in place (Fisher-Yates).
func (d *Deck) Shuffle() {
	swap := func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] }
	if d.rng != nil {
		d.rng.Shuffle(len(d.cards), swap)
		return
	}
	rand.Shuffle(len(d.cards), swap)
}

// Draw removes and returns the last card. Drawing from an empty deck panics
// with ErrEmptyDeck: callers size the table so this never happens.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		panic(ErrEmptyDeck)
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c
}

// DrawN draws n cards.
func (d *Deck) DrawN(n int) Cards {
	out := make(Cards, 0, n)
	for range n {
		out = append(out, d.Draw())
	}
	return out
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards.
func (d *Deck) Cards() Cards {
	return d.cards.Clone()
}

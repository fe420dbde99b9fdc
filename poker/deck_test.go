package poker

import (
	"errors"
	"testing"

	"github.com/lox/pokertable/internal/randutil"
)

func TestNewDeckIsComplete(t *testing.T) {
	t.Parallel()
	d := NewDeck(randutil.New(42))
	if d.Len() != 52 {
		t.Fatalf("expected 52 cards, got %d", d.Len())
	}

	seen := make(map[Card]bool)
	for d.Len() > 0 {
		c := d.Draw()
		if !c.IsKnown() {
			t.Fatalf("drew placeholder card")
		}
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}
	if len(seen) != 52 {
		t.Errorf("expected 52 unique cards, got %d", len(seen))
	}
}

func TestDeckDeterministic(t *testing.T) {
	t.Parallel()
	a := NewDeck(randutil.New(7)).Cards()
	b := NewDeck(randutil.New(7)).Cards()
	c := NewDeck(randutil.New(8)).Cards()
	if a.String() != b.String() {
		t.Error("same seed produced different decks")
	}
	if a.String() == c.String() {
		t.Error("different seeds produced identical decks")
	}
}

func TestDrawFromEnd(t *testing.T) {
	t.Parallel()
	d := NewDeckFromCards(MustParseCards("2♥ 3♥ 4♥"))
	if got := d.Draw(); !got.IsSameCard(MustParseCard("4♥")) {
		t.Errorf("Draw() = %s, want 4♥", got)
	}
	if got := d.DrawN(2).String(); got != "3♥ 2♥" {
		t.Errorf("DrawN(2) = %s", got)
	}
}

func TestDrawEmptyPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrEmptyDeck) {
			t.Errorf("expected ErrEmptyDeck panic, got %v", r)
		}
	}()
	NewDeckFromCards(nil).Draw()
}

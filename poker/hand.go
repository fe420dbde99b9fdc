package poker

import "slices"

// Category is the class of a five card poker hand, 1 (High Card) to 10
// (Royal Flush).
type Category uint8

const (
	NoCategory Category = iota
	HighCard
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = [...]string{
	"None", "High Card", "Pair", "Two Pair", "Three of a Kind", "Straight",
	"Flush", "Full House", "Four of a Kind", "Straight Flush", "Royal Flush",
}

func (c Category) String() string {
	if int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Hand is the classification of a card pool. Cards holds the cards that make
// the category, in comparison order (a wheel is 5-4-3-2-A, a full house lists
// the trips before the pair). Kickers only break ties.
type Hand struct {
	Category Category `json:"category"`
	Cards    Cards    `json:"cards"`
	Kickers  Cards    `json:"kickers,omitempty"`
}

// String describes the hand, e.g. "Two Pair (A♥ A♠ 7♥ 7♦, K♣)".
func (h Hand) String() string {
	s := h.Category.String() + " (" + h.Cards.String()
	if len(h.Kickers) > 0 {
		s += ", " + h.Kickers.String()
	}
	return s + ")"
}

// matcher reports the cards forming a category in a pool sorted highest first.
type matcher func(sorted Cards) (Cards, bool)

// categories is iterated from the highest category down; the first match wins.
var categories = []struct {
	category Category
	kickers  int
	match    matcher
}{
	{RoyalFlush, 0, matchRoyalFlush},
	{StraightFlush, 0, matchStraightFlush},
	{FourOfAKind, 1, matchSet(4)},
	{FullHouse, 0, matchFullHouse},
	{Flush, 0, matchFlush},
	{Straight, 0, matchStraight},
	{ThreeOfAKind, 2, matchSet(3)},
	{TwoPair, 1, matchTwoPair},
	{OnePair, 3, matchSet(2)},
	{HighCard, 4, matchHighCard},
}

// Evaluate classifies the best five card hand in cards. Unknown cards are
// ignored. An empty pool yields the zero Hand.
func Evaluate(cards Cards) Hand {
	var pool Cards
	for _, c := range cards {
		if c.IsKnown() {
			pool = append(pool, c)
		}
	}
	sorted := pool.Sorted()
	for _, cat := range categories {
		defining, ok := cat.match(sorted)
		if !ok {
			continue
		}
		h := Hand{Category: cat.category, Cards: defining}
		if kickers := sorted.RelativeComplement(defining).HighestN(cat.kickers); len(kickers) > 0 {
			h.Kickers = kickers
		}
		return h
	}
	return Hand{}
}

// Compare orders two hands: positive when a beats b, negative when b beats a,
// zero for a tie. Category first, then the defining cards, then kickers.
func Compare(a, b Hand) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	if c := CompareCards(a.Cards, b.Cards); c != 0 {
		return sign(c)
	}
	return sign(CompareCards(a.Kickers, b.Kickers))
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func matchRoyalFlush(sorted Cards) (Cards, bool) {
	sf, ok := matchStraightFlush(sorted)
	if !ok || sf[0].Value != Ace {
		return nil, false
	}
	return sf, true
}

func matchStraightFlush(sorted Cards) (Cards, bool) {
	var best Cards
	for _, g := range sorted.GroupBySuit() {
		if len(g) < 5 {
			continue
		}
		if s := g.Straight(5); s != nil && (best == nil || CompareCards(s, best) > 0) {
			best = s
		}
	}
	return best, best != nil
}

func matchSet(size int) matcher {
	return func(sorted Cards) (Cards, bool) {
		groups := sorted.GroupByValue()
		if len(groups) == 0 || len(groups[0]) < size {
			return nil, false
		}
		return groups[0][:size].Clone(), true
	}
}

func matchFullHouse(sorted Cards) (Cards, bool) {
	groups := sorted.GroupByValue()
	if len(groups) < 2 || len(groups[0]) < 3 {
		return nil, false
	}
	// A second set of trips can fill the pair.
	var pair Cards
	for _, g := range groups[1:] {
		if len(g) >= 2 && (pair == nil || g[0].Value > pair[0].Value) {
			pair = g
		}
	}
	if pair == nil {
		return nil, false
	}
	return groups[0][:3].Combined(pair[:2]), true
}

func matchFlush(sorted Cards) (Cards, bool) {
	var best Cards
	for _, g := range sorted.GroupBySuit() {
		if len(g) < 5 {
			continue
		}
		if top := g.HighestN(5); best == nil || CompareCards(top, best) > 0 {
			best = top
		}
	}
	return best, best != nil
}

func matchStraight(sorted Cards) (Cards, bool) {
	s := sorted.Straight(5)
	return s, s != nil
}

func matchTwoPair(sorted Cards) (Cards, bool) {
	var pairs []Cards
	for _, g := range sorted.GroupByValue() {
		if len(g) >= 2 {
			pairs = append(pairs, g)
		}
	}
	if len(pairs) < 2 {
		return nil, false
	}
	slices.SortFunc(pairs, func(a, b Cards) int { return int(b[0].Value) - int(a[0].Value) })
	return pairs[0][:2].Combined(pairs[1][:2]), true
}

func matchHighCard(sorted Cards) (Cards, bool) {
	if len(sorted) == 0 {
		return nil, false
	}
	return sorted[:1].Clone(), true
}

package poker

import (
	"slices"
	"strings"
)

// Cards is an ordered set of cards. Methods never modify the receiver; the
// ones returning Cards always return a fresh slice.
type Cards []Card

// ParseCards parses a whitespace or comma separated list of cards.
func ParseCards(s string) (Cards, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	cards := make(Cards, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards that panics on error.
func MustParseCards(s string) Cards {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// String joins the cards with single spaces.
func (cs Cards) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Clone returns a copy of the set.
func (cs Cards) Clone() Cards {
	if cs == nil {
		return nil
	}
	return slices.Clone(cs)
}

// Combined returns the receiver followed by other.
func (cs Cards) Combined(other Cards) Cards {
	out := make(Cards, 0, len(cs)+len(other))
	out = append(out, cs...)
	return append(out, other...)
}

// Sorted returns the cards ordered by value, highest first. Cards of equal
// value keep suit order.
func (cs Cards) Sorted() Cards {
	out := cs.Clone()
	slices.SortStableFunc(out, func(a, b Card) int {
		if a.Value != b.Value {
			return int(b.Value) - int(a.Value)
		}
		return int(a.Suit) - int(b.Suit)
	})
	return out
}

// Highest returns the highest valued card, or Unknown for an empty set.
func (cs Cards) Highest() Card {
	if len(cs) == 0 {
		return Unknown
	}
	return cs.Sorted()[0]
}

// HighestN returns up to count of the highest valued cards.
func (cs Cards) HighestN(count int) Cards {
	sorted := cs.Sorted()
	if count < len(sorted) {
		sorted = sorted[:max(count, 0)]
	}
	return sorted
}

// GroupBySuit splits the cards by suit. Groups are ordered largest first,
// then by highest card; each group is sorted highest first.
func (cs Cards) GroupBySuit() []Cards {
	return group(cs, func(c Card) int { return int(c.Suit) })
}

// GroupByValue splits the cards by value. Groups are ordered largest first,
// then by value descending; each group keeps suit order.
func (cs Cards) GroupByValue() []Cards {
	return group(cs, func(c Card) int { return int(c.Value) })
}

func group(cs Cards, key func(Card) int) []Cards {
	index := make(map[int]int)
	var groups []Cards
	for _, c := range cs.Sorted() {
		k := key(c)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], c)
	}
	slices.SortStableFunc(groups, func(a, b Cards) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return int(b[0].Value) - int(a[0].Value)
	})
	return groups
}

// RelativeComplement returns the cards not present in exclude, compared by
// value and suit.
func (cs Cards) RelativeComplement(exclude Cards) Cards {
	out := make(Cards, 0, len(cs))
	for _, c := range cs {
		if !exclude.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether the set holds a card with the same value and suit.
func (cs Cards) Contains(card Card) bool {
	return slices.ContainsFunc(cs, card.IsSameCard)
}

// ContainsValue reports whether any card has the given value.
func (cs Cards) ContainsValue(v Value) bool {
	return slices.ContainsFunc(cs, func(c Card) bool { return c.Value == v })
}

// Straight returns the highest run of length consecutive values, highest card
// first, or nil when there is none. Duplicate values are skipped without
// breaking the run. An Ace completes a run ending in Two as the lowest card.
func (cs Cards) Straight(length int) Cards {
	if length <= 0 {
		return nil
	}
	var uniq Cards
	for _, c := range cs.Sorted() {
		if len(uniq) == 0 || uniq[len(uniq)-1].Value != c.Value {
			uniq = append(uniq, c)
		}
	}
	if len(uniq) == 0 {
		return nil
	}

	for i := range uniq {
		run := Cards{uniq[i]}
		for j := i + 1; j < len(uniq) && len(run) < length; j++ {
			if uniq[j].Value != run[len(run)-1].Value-1 {
				break
			}
			run = append(run, uniq[j])
		}
		if len(run) == length {
			return run
		}
		if len(run) == length-1 && run[len(run)-1].Value == Two && uniq[0].Value == Ace {
			return append(run, uniq[0])
		}
	}
	return nil
}

// CompareCards compares two card sequences positionally by value. It returns
// a positive number when a is higher, negative when b is higher and 0 when
// equal. A longer sequence wins when one is a prefix of the other.
func CompareCards(a, b Cards) int {
	for i := range min(len(a), len(b)) {
		if a[i].Value != b[i].Value {
			return int(a[i].Value) - int(b[i].Value)
		}
	}
	return len(a) - len(b)
}

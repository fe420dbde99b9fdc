// Package poker provides the card model and the hand evaluator.
//
// # Basic Usage
//
//	deck := poker.NewDeck(randutil.New(42))
//	hole := deck.DrawN(2)
//	board := deck.DrawN(5)
//	hand := poker.Evaluate(hole.Combined(board))
//	fmt.Println(hand.Category) // e.g. "Two Pair"
//
// Hands compare with poker.Compare, which returns a signed result so any set
// of hands can be fully ordered:
//
//	if poker.Compare(a, b) > 0 {
//	    // a wins
//	}
//
// The zero Card (poker.Unknown) is a concealed placeholder. It renders as
// "??" and is ignored by Evaluate.
package poker

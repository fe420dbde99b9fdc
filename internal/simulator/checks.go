package simulator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/pokertable/internal/game"
)

// ErrInvariant is wrapped by every Violation.
var ErrInvariant = errors.New("invariant violated")

// Violation describes a broken invariant with enough context to replay it.
type Violation struct {
	Table int
	Seed  int64
	Round string
	Check string
	Err   error
}

func (v *Violation) Error() string {
	return fmt.Sprintf("table %d (seed %d) round %s: %s: %v", v.Table, v.Seed, v.Round, v.Check, v.Err)
}

func (v *Violation) Unwrap() []error { return []error{ErrInvariant, v.Err} }

// checkCompletion verifies that a round never rests between streets: it is
// either waiting on a player or over, and every player who has acted and can
// still bet has matched the bet.
func checkCompletion(r *game.Round) error {
	if !r.Ended() && !r.IsAwaitingAction() {
		return fmt.Errorf("round at %s awaits no action", r.Progress())
	}
	if _, ok := r.Acting(); ok == r.Ended() {
		return fmt.Errorf("acting player present=%v at %s", ok, r.Progress())
	}
	if r.Ended() {
		return nil
	}
	maxBet := r.BetSize()
	for _, p := range r.Players() {
		if p.Acted && p.Active() && !p.AllIn() && p.Bet != maxBet {
			return fmt.Errorf("%s acted with %d against %d", p.ID, p.Bet, maxBet)
		}
	}
	return nil
}

// checkProjection verifies that no player's view leaks another player's
// cards before showdown and that showdown reveals the remaining hands.
func checkProjection(r *game.Round) error {
	players := r.Players()
	for _, viewer := range players {
		v := game.Project(r, viewer.ID)
		if v.DeckSize != r.DeckSize() {
			return fmt.Errorf("view for %s reports deck %d, want %d", viewer.ID, v.DeckSize, r.DeckSize())
		}
		if !slices.Equal(v.LegalActions, r.LegalActions(viewer.ID)) {
			return fmt.Errorf("view for %s has legal actions %v, want %v", viewer.ID, v.LegalActions, r.LegalActions(viewer.ID))
		}
		for i, pv := range v.Players {
			actual := players[i]
			revealed := pv.ID == viewer.ID || (r.Ended() && actual.Active())
			for j, c := range pv.Cards {
				switch {
				case revealed && c != actual.Cards[j]:
					return fmt.Errorf("view for %s shows %s instead of %s for %s", viewer.ID, c, actual.Cards[j], pv.ID)
				case !revealed && c.IsKnown():
					return fmt.Errorf("view for %s leaks %s from %s", viewer.ID, c, pv.ID)
				}
			}
		}
	}
	return nil
}

// checkRoundTrip verifies that a serialized round restores to one with the
// same betting state and the same legal actions for every player.
func checkRoundTrip(r *game.Round) error {
	data, err := game.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	restored, err := game.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	a, b := game.Project(r, ""), game.Project(restored, "")
	switch {
	case a.ID != b.ID, a.Progress != b.Progress, a.Acting != b.Acting:
		return fmt.Errorf("restored %s/%s/%q, want %s/%s/%q", b.ID, b.Progress, b.Acting, a.ID, a.Progress, a.Acting)
	case a.PotSize != b.PotSize, a.BetSize != b.BetSize, a.BetIncrement != b.BetIncrement, a.DeckSize != b.DeckSize:
		return fmt.Errorf("restored pot %d bet %d increment %d deck %d, want %d %d %d %d",
			b.PotSize, b.BetSize, b.BetIncrement, b.DeckSize, a.PotSize, a.BetSize, a.BetIncrement, a.DeckSize)
	case !slices.Equal(a.Community, b.Community):
		return fmt.Errorf("restored community %s, want %s", b.Community, a.Community)
	case len(a.Players) != len(b.Players):
		return fmt.Errorf("restored %d players, want %d", len(b.Players), len(a.Players))
	}
	for i, pa := range a.Players {
		pb := b.Players[i]
		if pa.ID != pb.ID || pa.Stack != pb.Stack || pa.Bet != pb.Bet || pa.StreetBet != pb.StreetBet ||
			pa.Acted != pb.Acted || pa.Folded != pb.Folded || pa.Left != pb.Left || !slices.Equal(pa.Cards, pb.Cards) {
			return fmt.Errorf("restored player %+v, want %+v", pb, pa)
		}
		if !slices.Equal(r.LegalActions(pa.ID), restored.LegalActions(pa.ID)) {
			return fmt.Errorf("restored legal actions for %s differ", pa.ID)
		}
	}
	return nil
}

// checkSettlement verifies pot conservation for an ended round.
func checkSettlement(r *game.Round) error {
	res := r.Result()
	if res == nil {
		return errors.New("ended round has no result")
	}
	if res.Total() != r.PotSize() {
		return fmt.Errorf("pots hold %d, players put in %d", res.Total(), r.PotSize())
	}

	paid := 0
	for _, pot := range res.Pots {
		if len(pot.Winners) == 0 {
			return fmt.Errorf("pot %d has no winner", pot.Tier)
		}
		share := 0
		for _, id := range pot.Winners {
			if !slices.Contains(pot.Eligible, id) {
				return fmt.Errorf("pot %d won by ineligible %s", pot.Tier, id)
			}
			share += pot.Winnings[id]
		}
		if share != pot.Total {
			return fmt.Errorf("pot %d of %d paid %d", pot.Tier, pot.Total, share)
		}
		paid += share
	}

	net, winnings := 0, 0
	for _, pr := range res.Players {
		net += pr.Net
		winnings += pr.Winnings
	}
	if winnings != paid {
		return fmt.Errorf("players won %d of %d paid", winnings, paid)
	}
	if net != 0 {
		return fmt.Errorf("nets sum to %d", net)
	}
	return nil
}

// checkChips verifies that the table holds exactly the chips it was given.
func checkChips(t *game.Table, want int) error {
	total := 0
	for _, s := range t.Seats() {
		total += s.Stack
	}
	if total != want {
		return fmt.Errorf("table holds %d chips, want %d", total, want)
	}
	return nil
}

package game

import (
	"maps"
	"slices"

	"github.com/lox/pokertable/poker"
)

// Result is the settlement of an ended round.
type Result struct {
	Players []PlayerResult `json:"players"`
	Pots    []Pot          `json:"pots"`
}

// PlayerResult is one player's outcome. Rank 1 is the best hand; players who
// folded or left share the rank below every active player.
type PlayerResult struct {
	ID       string     `json:"id"`
	Hand     poker.Hand `json:"hand"`
	Rank     int        `json:"rank"`
	Folded   bool       `json:"folded,omitempty"`
	Bet      int        `json:"bet"`
	Winnings int        `json:"winnings"`
	// Net is Winnings minus Bet. Nets of a round sum to zero.
	Net int `json:"net"`
}

// Pot is one tier of the settlement. Contributors put chips in; Eligible may
// win it; Winnings maps each winner to their share.
type Pot struct {
	Tier         int            `json:"tier"`
	Total        int            `json:"total"`
	Contributors []string       `json:"contributors"`
	Eligible     []string       `json:"eligible"`
	Rankings     map[string]int `json:"rankings"`
	Winners      []string       `json:"winners"`
	Winnings     map[string]int `json:"winnings"`
}

// Player returns the result for one player.
func (res *Result) Player(id string) (PlayerResult, bool) {
	for _, p := range res.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerResult{}, false
}

// Total is the sum of every pot.
func (res *Result) Total() int {
	total := 0
	for _, pot := range res.Pots {
		total += pot.Total
	}
	return total
}

func (res *Result) clone() *Result {
	out := &Result{
		Players: make([]PlayerResult, len(res.Players)),
		Pots:    make([]Pot, len(res.Pots)),
	}
	for i, p := range res.Players {
		out.Players[i] = p
		out.Players[i].Hand = poker.Hand{
			Category: p.Hand.Category,
			Cards:    p.Hand.Cards.Clone(),
			Kickers:  p.Hand.Kickers.Clone(),
		}
	}
	for i, pot := range res.Pots {
		out.Pots[i] = Pot{
			Tier:         pot.Tier,
			Total:        pot.Total,
			Contributors: slices.Clone(pot.Contributors),
			Eligible:     slices.Clone(pot.Eligible),
			Rankings:     maps.Clone(pot.Rankings),
			Winners:      slices.Clone(pot.Winners),
			Winnings:     maps.Clone(pot.Winnings),
		}
	}
	return out
}

// settle evaluates every hand, splits contributions into pots by bet tier and
// pays each pot to its best ranked eligible players.
func (r *Round) settle() *Result {
	hands := make(map[string]poker.Hand, len(r.players))
	for _, p := range r.players {
		hands[p.ID] = poker.Evaluate(p.Cards.Combined(r.community))
	}
	ranks := r.rankHands(hands)

	winnings := make(map[string]int, len(r.players))
	var pots []Pot

	var tiers []int
	for _, p := range r.players {
		if p.Active() && p.Bet > 0 && !slices.Contains(tiers, p.Bet) {
			tiers = append(tiers, p.Bet)
		}
	}
	slices.Sort(tiers)

	prev := 0
	for i, tier := range tiers {
		last := i == len(tiers)-1
		pot := Pot{Tier: tier}
		for _, p := range r.players {
			// Chips above the highest active bet (from folded or removed
			// players) belong to the top pot.
			c := min(p.Bet, tier) - prev
			if last {
				c = p.Bet - prev
			}
			if c > 0 {
				pot.Total += c
				pot.Contributors = append(pot.Contributors, p.ID)
			}
			if p.Active() && p.Bet >= tier {
				pot.Eligible = append(pot.Eligible, p.ID)
			}
		}
		prev = tier
		if pot.Total == 0 {
			continue
		}
		r.award(&pot, ranks, winnings)
		pots = append(pots, pot)
	}

	if len(tiers) == 0 {
		// Nobody still in the round has a chip in: one pot for whatever the
		// others left behind.
		pot := Pot{}
		for _, p := range r.players {
			if p.Bet > 0 {
				pot.Total += p.Bet
				pot.Contributors = append(pot.Contributors, p.ID)
			}
			if p.Active() {
				pot.Eligible = append(pot.Eligible, p.ID)
			}
		}
		if pot.Total > 0 {
			if len(pot.Eligible) == 0 {
				// Nobody can win it: contributions go back.
				pot.Eligible = slices.Clone(pot.Contributors)
			}
			r.award(&pot, ranks, winnings)
			pots = append(pots, pot)
		}
	}

	res := &Result{Pots: pots}
	for _, p := range r.players {
		res.Players = append(res.Players, PlayerResult{
			ID:       p.ID,
			Hand:     hands[p.ID],
			Rank:     ranks[p.ID],
			Folded:   !p.Active(),
			Bet:      p.Bet,
			Winnings: winnings[p.ID],
			Net:      winnings[p.ID] - p.Bet,
		})
	}
	return res
}

// rankHands gives active players dense ranks from 1 (best); equal hands
// share a rank. Folded and removed players rank just below the worst.
func (r *Round) rankHands(hands map[string]poker.Hand) map[string]int {
	var active []*PlayerState
	for _, p := range r.players {
		if p.Active() {
			active = append(active, p)
		}
	}
	slices.SortStableFunc(active, func(a, b *PlayerState) int {
		return poker.Compare(hands[b.ID], hands[a.ID])
	})

	ranks := make(map[string]int, len(r.players))
	rank := 0
	for i, p := range active {
		if i == 0 || poker.Compare(hands[p.ID], hands[active[i-1].ID]) != 0 {
			rank++
		}
		ranks[p.ID] = rank
	}
	for _, p := range r.players {
		if !p.Active() {
			ranks[p.ID] = rank + 1
		}
	}
	return ranks
}

// award splits pot.Total evenly among the best ranked eligible players. Odd
// chips go one at a time to the winners in seat order starting left of the
// button.
func (r *Round) award(pot *Pot, ranks map[string]int, winnings map[string]int) {
	pot.Rankings = make(map[string]int, len(pot.Eligible))
	best := 0
	for _, id := range pot.Eligible {
		rank := ranks[id]
		pot.Rankings[id] = rank
		if best == 0 || rank < best {
			best = rank
		}
	}
	for _, id := range pot.Eligible {
		if ranks[id] == best {
			pot.Winners = append(pot.Winners, id)
		}
	}

	n := len(r.players)
	button := r.index(r.rules.Button)
	slices.SortFunc(pot.Winners, func(a, b string) int {
		da := (r.index(a) - button - 1 + n) % n
		db := (r.index(b) - button - 1 + n) % n
		return da - db
	})

	pot.Winnings = make(map[string]int, len(pot.Winners))
	share, rem := pot.Total/len(pot.Winners), pot.Total%len(pot.Winners)
	for i, id := range pot.Winners {
		amount := share
		if i < rem {
			amount++
		}
		pot.Winnings[id] = amount
		winnings[id] += amount
	}
}

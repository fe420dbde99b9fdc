package game

import "github.com/lox/pokertable/poker"

// View is a read-only snapshot of a round as one viewer may see it. It never
// shares memory with the round.
type View struct {
	ID           string        `json:"id"`
	Viewer       string        `json:"viewer,omitempty"`
	Rules        Rules         `json:"rules"`
	Progress     Progress      `json:"progress"`
	Community    poker.Cards   `json:"community"`
	DeckSize     int           `json:"deckSize"`
	Players      []PlayerView  `json:"players"`
	Acting       string        `json:"acting,omitempty"`
	Button       string        `json:"button"`
	Blinds       []BlindPost   `json:"blinds"`
	PotSize      int           `json:"potSize"`
	BetSize      int           `json:"betSize"`
	BetIncrement int           `json:"betIncrement"`
	LegalActions []LegalAction `json:"legalActions,omitempty"`
	Result       *Result       `json:"result,omitempty"`
}

// PlayerView is the public state of one player plus whatever cards the
// viewer is allowed to see.
type PlayerView struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Order      int           `json:"order"`
	Stack      int           `json:"stack"`
	Bet        int           `json:"bet"`
	StreetBet  int           `json:"streetBet"`
	Acted      bool          `json:"acted"`
	Folded     bool          `json:"folded"`
	Left       bool          `json:"left"`
	AllIn      bool          `json:"allIn"`
	LastAction *ActionRecord `json:"lastAction,omitempty"`
	Cards      poker.Cards   `json:"cards"`
}

// Player returns the view of one player.
func (v View) Player(id string) (PlayerView, bool) {
	for _, p := range v.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}

// Project builds the view of r for viewer. An empty viewer is the dealer:
// every card is shown and the acting player's legal actions are attached.
// Any other viewer sees their own cards; other players' cards are replaced
// by poker.Unknown until the round ends, when players still in it are shown.
// The undealt deck is never exposed.
func Project(r *Round, viewer string) View {
	v := View{
		ID:           r.id,
		Viewer:       viewer,
		Rules:        r.rules.clone(),
		Progress:     r.progress,
		Community:    r.community.Clone(),
		DeckSize:     r.deck.Len(),
		Button:       r.rules.Button,
		Blinds:       r.Blinds(),
		PotSize:      r.PotSize(),
		BetSize:      r.maxBet(),
		BetIncrement: r.betIncrement,
	}
	if v.Community == nil {
		v.Community = poker.Cards{}
	}
	if acting, ok := r.Acting(); ok {
		v.Acting = acting
	}

	for _, p := range r.players {
		v.Players = append(v.Players, PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			Order:      p.Order,
			Stack:      p.Stack,
			Bet:        p.Bet,
			StreetBet:  p.StreetBet(),
			Acted:      p.Acted,
			Folded:     p.Folded,
			Left:       p.Left,
			AllIn:      p.AllIn(),
			LastAction: RecordOf(p.LastAction),
			Cards:      r.visibleCards(p, viewer),
		})
	}

	switch {
	case viewer == "" && r.acting >= 0:
		v.LegalActions = r.legalActions(r.players[r.acting])
	case viewer != "":
		v.LegalActions = r.LegalActions(viewer)
	}

	if r.result != nil {
		v.Result = r.result.clone()
		if viewer != "" {
			for i, pr := range v.Result.Players {
				if pr.Folded && pr.ID != viewer {
					v.Result.Players[i].Hand = poker.Hand{}
				}
			}
		}
	}
	return v
}

func (r *Round) visibleCards(p *PlayerState, viewer string) poker.Cards {
	if viewer == "" || viewer == p.ID || (r.progress == Ended && p.Active()) {
		return p.Cards.Clone()
	}
	return make(poker.Cards, len(p.Cards))
}

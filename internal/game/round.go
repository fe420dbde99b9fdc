package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/gameid"
	"github.com/lox/pokertable/poker"
)

// maxRoundPlayers is the most players one deck can serve: two hole cards
// each plus five community cards.
const maxRoundPlayers = (52 - 5) / 2

// BlindPost records which player posted a rung of the blind ladder.
type BlindPost struct {
	Name   string `json:"name"`
	Player string `json:"player"`
	Amount int    `json:"amount"`
}

// Round is a single hand of Texas Hold'em from the deal to settlement.
//
// A Round has one owner. Act, Remove and End mutate it and must not run
// concurrently with each other or with reads; callers serialize access (the
// server routes every table through one goroutine).
type Round struct {
	id           string
	rules        Rules
	progress     Progress
	deck         *poker.Deck
	community    poker.Cards
	players      []*PlayerState
	acting       int
	betIncrement int
	blinds       []BlindPost
	events       []Event
	result       *Result
	logger       *log.Logger
}

// RoundOption configures a Round during creation.
type RoundOption func(*roundConfig)

type roundConfig struct {
	id     string
	deck   *poker.Deck
	rng    *rand.Rand
	logger *log.Logger
}

// WithID sets the round id instead of generating one.
func WithID(id string) RoundOption {
	return func(c *roundConfig) { c.id = id }
}

// WithDeck deals from the given deck instead of a fresh shuffled one.
func WithDeck(deck *poker.Deck) RoundOption {
	return func(c *roundConfig) { c.deck = deck }
}

// WithRNG shuffles the fresh deck with rng.
func WithRNG(rng *rand.Rand) RoundOption {
	return func(c *roundConfig) { c.rng = rng }
}

// WithLogger sets the logger. Rounds log at debug level only.
func WithLogger(logger *log.Logger) RoundOption {
	return func(c *roundConfig) { c.logger = logger }
}

func (c *roundConfig) roundLogger(id string) *log.Logger {
	logger := c.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return logger.WithPrefix("round").With("round", id)
}

// New creates a round, deals two cards to every player, posts the ante and
// the blind ladder and hands the turn to the first player to act.
//
// Example usage:
//
//	r, err := game.New([]game.Player{
//	    {ID: "alice", Stack: 1000},
//	    {ID: "bob", Stack: 1000},
//	}, game.DefaultRules(), game.WithRNG(randutil.New(42)))
//	acting, _ := r.Acting()
//	err = r.Act(acting, game.Call{Amount: r.BetSize()})
func New(players []Player, rules Rules, opts ...RoundOption) (*Round, error) {
	var cfg roundConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(players) == 0 {
		return nil, ErrNoPlayers
	}
	if len(players) > maxRoundPlayers {
		return nil, fmt.Errorf("%w: %d players, at most %d", ErrTooManyPlayers, len(players), maxRoundPlayers)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	states := make([]*PlayerState, len(players))
	seen := make(map[string]bool, len(players))
	for i, p := range players {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrUnknownPlayer)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = true
		if p.Stack <= 0 {
			return nil, fmt.Errorf("%w: %s has %d", ErrInvalidStack, p.ID, p.Stack)
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		states[i] = &PlayerState{Order: i, ID: p.ID, Name: name, Stack: p.Stack}
	}

	rules = rules.clone()
	if rules.Button == "" {
		rules.Button = players[0].ID
	} else if !seen[rules.Button] {
		return nil, fmt.Errorf("%w: %s", ErrButtonNotSeated, rules.Button)
	}

	deck := cfg.deck
	if deck == nil {
		deck = poker.NewDeck(cfg.rng)
	}
	if need := 2*len(players) + 5; deck.Len() < need {
		return nil, fmt.Errorf("%w: deck has %d cards, need %d", ErrTooManyPlayers, deck.Len(), need)
	}

	id := cfg.id
	if id == "" {
		id = gameid.New(gameid.KindRound)
	}

	r := &Round{
		id:       id,
		rules:    rules,
		progress: Starting,
		deck:     deck,
		players:  states,
		acting:   -1,
		logger:   cfg.roundLogger(id),
	}
	r.logger.Debug("Round created", "players", len(states), "button", rules.Button)

	r.deal()
	r.postAnte()
	from := r.postBlinds()
	r.advance(from)
	return r, nil
}

func (r *Round) deal() {
	start := r.index(r.rules.Button) + 1
	for range 2 {
		for k := range r.players {
			p := r.players[(start+k)%len(r.players)]
			p.Cards = append(p.Cards, r.deck.Draw())
		}
	}
	r.progress = Dealt
	for _, p := range r.players {
		r.record(Event{Kind: EventDeal, Player: p.ID, Amount: len(p.Cards)})
	}
}

func (r *Round) postAnte() {
	if r.rules.Ante == 0 {
		return
	}
	for _, p := range r.players {
		p.Bet = min(r.rules.Ante, p.Stack)
		r.record(Event{Kind: EventAnte, Player: p.ID, Amount: p.Bet})
	}
}

// postBlinds posts the ladder starting left of the button, the first rung as
// a bet and the rest as raises. It returns the index the turn search starts
// from.
func (r *Round) postBlinds() int {
	poster := r.rules.Button
	from := r.index(poster) + 1
	for i, b := range r.rules.Blinds {
		next, ok := r.NextPlayer(poster)
		if !ok {
			break
		}
		poster = next
		p := r.players[r.index(poster)]
		from = p.Order + 1

		prevMax := r.maxBet()
		target := min(r.rules.Ante+b.Value, p.Stack)
		if target <= p.Bet {
			continue
		}
		p.Bet = target

		var action Action
		switch {
		case p.AllIn():
			action = AllIn{Amount: p.Bet}
		case i == 0:
			action = Bet{Amount: p.Bet}
		default:
			action = Raise{Amount: p.Bet}
		}
		p.Acted = true
		p.LastAction = action
		r.raised(p, prevMax)

		r.blinds = append(r.blinds, BlindPost{Name: b.Name, Player: p.ID, Amount: p.Bet})
		r.record(Event{Kind: EventBlind, Player: p.ID, Blind: b.Name, Action: RecordOf(action), Amount: p.Bet})
	}
	return from
}

// Act applies one action for the acting player. The action is fully
// validated first; on error the round is unchanged.
func (r *Round) Act(playerID string, action Action) error {
	reject := func(err error) error {
		return &ActionError{Player: playerID, Action: action, Err: err}
	}
	if r.progress == Ended {
		return reject(ErrRoundEnded)
	}
	i := r.index(playerID)
	if i < 0 {
		return reject(ErrUnknownPlayer)
	}
	if i != r.acting {
		return reject(ErrNotYourTurn)
	}
	if action == nil {
		return reject(ErrUnknownAction)
	}
	p := r.players[i]
	if err := r.validate(p, action); err != nil {
		return reject(err)
	}

	r.apply(p, action)
	r.advance(i + 1)
	return nil
}

func (r *Round) validate(p *PlayerState, action Action) error {
	maxBet := r.maxBet()
	switch a := action.(type) {
	case Fold:
		return nil
	case Check:
		if !canCheck(p, maxBet) {
			return ErrCheckNotAllowed
		}
	case Bet:
		if !canBet(maxBet) {
			return ErrBetNotAllowed
		}
		if a.Amount <= 0 {
			return ErrInvalidAmount
		}
		if a.Amount > p.Stack {
			return fmt.Errorf("%w: stake is %d", ErrInsufficientChips, p.Stack)
		}
	case Raise:
		if !canRaise(maxBet) {
			return ErrRaiseNotAllowed
		}
		if a.Amount <= maxBet {
			return fmt.Errorf("%w of %d", ErrRaiseTooLow, maxBet)
		}
		if a.Amount > p.Stack {
			return fmt.Errorf("%w: stake is %d", ErrInsufficientChips, p.Stack)
		}
		if r.rules.RaiseMinimum && a.Amount < p.Stack && a.Amount-maxBet < r.betIncrement {
			return fmt.Errorf("%w: raise to at least %d", ErrRaiseTooSmall, maxBet+r.betIncrement)
		}
	case Call:
		if !canCall(p, maxBet) {
			return ErrCallNotAllowed
		}
		if a.Amount != maxBet {
			return fmt.Errorf("%w of %d", ErrCallAmount, maxBet)
		}
		if maxBet > p.Stack {
			return fmt.Errorf("%w: stake is %d, go all-in instead", ErrInsufficientChips, p.Stack)
		}
	case AllIn:
		if !canAllIn(p) {
			return ErrAllInNotAllowed
		}
		if a.Amount != p.Stack {
			return fmt.Errorf("%w of %d", ErrAllInAmount, p.Stack)
		}
	default:
		return ErrUnknownAction
	}
	return nil
}

func (r *Round) apply(p *PlayerState, action Action) {
	prevMax := r.maxBet()
	switch a := action.(type) {
	case Fold:
		p.Folded = true
	case Check:
	case Bet:
		p.Bet = a.Amount
	case Raise:
		p.Bet = a.Amount
	case Call:
		p.Bet = a.Amount
	case AllIn:
		p.Bet = a.Amount
	}
	p.Acted = true
	p.LastAction = action
	r.raised(p, prevMax)

	r.record(Event{Kind: EventAction, Player: p.ID, Action: RecordOf(action)})
	r.logger.Debug("Action applied", "player", p.ID, "action", describeAction(action), "bet", p.Bet)
}

// raised tracks the raise increment and reopens the action for everyone else
// when p pushed the bet above prevMax.
func (r *Round) raised(p *PlayerState, prevMax int) {
	if p.Bet <= prevMax {
		return
	}
	r.betIncrement = max(r.betIncrement, p.Bet-prevMax)
	for _, q := range r.players {
		if q != p && q.Active() {
			q.Acted = false
		}
	}
}

// Remove takes a player out of the round (leave or disconnect). Their chips
// stay in the pot. Removing the acting player passes the turn on; removing
// anyone may complete the street or end the round.
func (r *Round) Remove(playerID string) error {
	i := r.index(playerID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	p := r.players[i]
	if r.progress == Ended || p.Left {
		return nil
	}
	p.Left = true
	r.record(Event{Kind: EventRemove, Player: p.ID})
	r.logger.Debug("Player removed", "player", p.ID)

	from := r.acting
	if i == r.acting {
		from = i + 1
	}
	r.advance(from)
	return nil
}

// End forces the round to finish and settles it. Ending an ended round is a
// no-op.
func (r *Round) End() {
	r.end()
}

func (r *Round) end() {
	if r.progress == Ended {
		return
	}
	r.progress = Ended
	r.acting = -1
	r.result = r.settle()
	r.record(Event{Kind: EventEnd})
	r.logger.Debug("Round ended", "pot", r.PotSize(), "pots", len(r.result.Pots))
}

// advance moves the turn to the next player needing action, dealing further
// streets while nobody does, until someone must act or the round ends.
func (r *Round) advance(from int) {
	for {
		if r.progress == Ended {
			return
		}
		if r.activeCount() < 2 {
			r.end()
			return
		}
		r.autoCheck()
		if i := r.nextToAct(from); i >= 0 {
			r.acting = i
			return
		}
		r.nextStreet()
		from = r.index(r.rules.Button) + 1
	}
}

// autoCheck marks the last player able to bet as acted when they already
// match everyone else, who are all-in. There is nothing left to decide.
func (r *Round) autoCheck() {
	var lone *PlayerState
	count := 0
	for _, p := range r.players {
		if p.Active() && !p.AllIn() {
			lone = p
			count++
		}
	}
	if count != 1 || lone.Acted || lone.Bet < r.maxBet() {
		return
	}
	lone.Acted = true
	r.record(Event{Kind: EventAutoCheck, Player: lone.ID})
}

func (r *Round) nextStreet() {
	var count int
	var next Progress
	switch r.progress {
	case Dealt:
		count, next = 3, Flopped
	case Flopped:
		count, next = 1, Turned
	case Turned:
		count, next = 1, Rivered
	default:
		r.end()
		return
	}

	cards := r.deck.DrawN(count)
	r.community = append(r.community, cards...)
	r.progress = next
	r.acting = -1
	for _, p := range r.players {
		p.Acted = false
		p.StreetStart = p.Bet
	}
	r.record(Event{Kind: EventStreet, Cards: cards.Clone()})
	r.logger.Debug("Street dealt", "progress", next, "community", r.community.String())
}

func (r *Round) nextToAct(from int) int {
	n := len(r.players)
	from = ((from % n) + n) % n
	maxBet := r.maxBet()
	for k := range n {
		i := (from + k) % n
		if needsAction(r.players[i], maxBet) {
			return i
		}
	}
	return -1
}

func needsAction(p *PlayerState, maxBet int) bool {
	return p.Active() && !p.AllIn() && (!p.Acted || p.Bet != maxBet)
}

func (r *Round) record(e Event) {
	e.Progress = r.progress
	r.events = append(r.events, e)
}

func (r *Round) index(playerID string) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Round) activeCount() int {
	n := 0
	for _, p := range r.players {
		if p.Active() {
			n++
		}
	}
	return n
}

func (r *Round) maxBet() int {
	m := 0
	for _, p := range r.players {
		if p.Active() && p.Bet > m {
			m = p.Bet
		}
	}
	return m
}

// NextPlayer returns the first active player after playerID in turn order.
// It reports false when fewer than two players are active.
func (r *Round) NextPlayer(playerID string) (string, bool) {
	if r.activeCount() < 2 {
		return "", false
	}
	i := r.index(playerID)
	if i < 0 {
		return "", false
	}
	n := len(r.players)
	for k := 1; k <= n; k++ {
		if p := r.players[(i+k)%n]; p.Active() {
			return p.ID, true
		}
	}
	return "", false
}

// IsAwaitingAction reports whether some active player still has to act on
// the current street.
func (r *Round) IsAwaitingAction() bool {
	if r.progress == Ended {
		return false
	}
	maxBet := r.maxBet()
	for _, p := range r.players {
		if needsAction(p, maxBet) {
			return true
		}
	}
	return false
}

// ID returns the round id.
func (r *Round) ID() string { return r.id }

// Progress returns the lifecycle position.
func (r *Round) Progress() Progress { return r.progress }

// Ended reports whether the round is over.
func (r *Round) Ended() bool { return r.progress == Ended }

// Rules returns a copy of the rules, with the button resolved.
func (r *Round) Rules() Rules { return r.rules.clone() }

// Button returns the dealer button player id.
func (r *Round) Button() string { return r.rules.Button }

// Community returns a copy of the community cards.
func (r *Round) Community() poker.Cards { return r.community.Clone() }

// DeckSize returns how many cards remain undealt.
func (r *Round) DeckSize() int { return r.deck.Len() }

// BetSize is the highest total bet among active players.
func (r *Round) BetSize() int { return r.maxBet() }

// BetIncrement is the largest raise increment seen this round.
func (r *Round) BetIncrement() int { return r.betIncrement }

// PotSize is the sum of every player's bet, including folded players.
func (r *Round) PotSize() int {
	total := 0
	for _, p := range r.players {
		total += p.Bet
	}
	return total
}

// Acting returns the player whose turn it is.
func (r *Round) Acting() (string, bool) {
	if r.acting < 0 {
		return "", false
	}
	return r.players[r.acting].ID, true
}

// Players returns copies of every player's state in turn order.
func (r *Round) Players() []PlayerState {
	out := make([]PlayerState, len(r.players))
	for i, p := range r.players {
		out[i] = p.clone()
	}
	return out
}

// Player returns a copy of one player's state.
func (r *Round) Player(playerID string) (PlayerState, bool) {
	i := r.index(playerID)
	if i < 0 {
		return PlayerState{}, false
	}
	return r.players[i].clone(), true
}

// Blinds returns the blinds posted this round.
func (r *Round) Blinds() []BlindPost {
	return append([]BlindPost(nil), r.blinds...)
}

// Events returns the round history.
func (r *Round) Events() []Event {
	out := make([]Event, len(r.events))
	for i, e := range r.events {
		out[i] = e
		out[i].Cards = e.Cards.Clone()
	}
	return out
}

// Result returns the settlement, or nil before the round ends.
func (r *Round) Result() *Result {
	if r.result == nil {
		return nil
	}
	return r.result.clone()
}

package game

import (
	"encoding/json"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertable/internal/gameid"
	"github.com/lox/pokertable/internal/randutil"
)

// MaxPlayers is the default seat count of a table.
const MaxPlayers = 8

// Seat is a player's place at a table across rounds.
type Seat struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Stack    int       `json:"stack"`
	Left     bool      `json:"left"`
	JoinedAt time.Time `json:"joinedAt"`
}

// LogItem is one line of the table's human readable log.
type LogItem struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Table seats players and runs consecutive rounds, moving the dealer button
// between them and carrying chip stacks from one round to the next.
//
// Like Round, a Table has a single owner and no internal locking.
type Table struct {
	id         string
	rules      Rules
	maxPlayers int
	seats      []*Seat
	round      *Round
	settled    bool
	rounds     int
	log        []LogItem
	clock      quartz.Clock
	rng        *rand.Rand
	ids        *gameid.Generator
	logger     *log.Logger
}

// TableOption configures a Table during creation.
type TableOption func(*Table)

// WithTableID sets the table id instead of generating one.
func WithTableID(id string) TableOption {
	return func(t *Table) { t.id = id }
}

// WithClock sets the clock used for log timestamps and ids.
func WithClock(clock quartz.Clock) TableOption {
	return func(t *Table) { t.clock = clock }
}

// WithSeed makes every deck the table deals reproducible.
func WithSeed(seed int64) TableOption {
	return func(t *Table) { t.rng = randutil.New(seed) }
}

// WithMaxPlayers overrides the seat count.
func WithMaxPlayers(n int) TableOption {
	return func(t *Table) { t.maxPlayers = n }
}

// WithTableLogger sets the logger.
func WithTableLogger(logger *log.Logger) TableOption {
	return func(t *Table) { t.logger = logger }
}

// NewTable creates an empty table. The button in rules is ignored: the first
// player to join takes it.
func NewTable(rules Rules, opts ...TableOption) (*Table, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	t := &Table{
		rules:      rules.clone(),
		maxPlayers: MaxPlayers,
	}
	t.rules.Button = ""
	for _, opt := range opts {
		opt(t)
	}
	t.init()
	if t.id == "" {
		t.id = t.ids.New(gameid.KindTable)
	}
	if t.maxPlayers < 2 || t.maxPlayers > maxRoundPlayers {
		return nil, fmt.Errorf("%w: %d seats", ErrInvalidRules, t.maxPlayers)
	}
	t.logger = t.logger.With("table", t.id)
	return t, nil
}

func (t *Table) init() {
	if t.clock == nil {
		t.clock = quartz.NewReal()
	}
	if t.rng == nil {
		t.rng = randutil.New(randutil.Seed())
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	t.logger = t.logger.WithPrefix("table")
	t.ids = gameid.NewGenerator(t.clock, t.rng)
}

// ID returns the table id.
func (t *Table) ID() string { return t.id }

// Button returns the dealer button player id, empty when nobody is seated.
func (t *Table) Button() string { return t.rules.Button }

// Rounds returns the number of settled rounds.
func (t *Table) Rounds() int { return t.rounds }

// Round returns the current or last round, nil before the first.
func (t *Table) Round() *Round { return t.round }

// InRound reports whether a round is being played.
func (t *Table) InRound() bool { return t.round != nil && !t.round.Ended() }

// Seats returns copies of every seat.
func (t *Table) Seats() []Seat {
	out := make([]Seat, len(t.seats))
	for i, s := range t.seats {
		out[i] = *s
	}
	return out
}

// Seat returns a copy of one seat.
func (t *Table) Seat(id string) (Seat, bool) {
	if s := t.seat(id); s != nil {
		return *s, true
	}
	return Seat{}, false
}

// Log returns the table log.
func (t *Table) Log() []LogItem {
	return append([]LogItem(nil), t.log...)
}

func (t *Table) seat(id string) *Seat {
	for _, s := range t.seats {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (t *Table) addLog(format string, args ...any) {
	t.log = append(t.log, LogItem{Time: t.clock.Now(), Message: fmt.Sprintf(format, args...)})
}

// Join seats a player. A player who left earlier rejoins with their stack.
func (t *Table) Join(id, name string, stack int) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownPlayer)
	}
	if name == "" {
		name = id
	}
	seated := 0
	for _, s := range t.seats {
		if !s.Left {
			seated++
		}
	}

	s := t.seat(id)
	switch {
	case s != nil && !s.Left:
		return nil
	case seated >= t.maxPlayers:
		return fmt.Errorf("%w: %d seats", ErrTableFull, t.maxPlayers)
	case s != nil:
		s.Left = false
		s.Name = name
	default:
		if stack <= 0 {
			return fmt.Errorf("%w: %s has %d", ErrInvalidStack, id, stack)
		}
		s = &Seat{ID: id, Name: name, Stack: stack, JoinedAt: t.clock.Now()}
		t.seats = append(t.seats, s)
	}

	if t.rules.Button == "" {
		t.rules.Button = id
	}
	t.addLog("%s joined the table with %d chips", name, s.Stack)
	t.logger.Info("Player joined", "player", id, "stack", s.Stack)
	return nil
}

// Leave unseats a player, folding them out of any round in play and passing
// the button on if they held it.
func (t *Table) Leave(id string) error {
	s := t.seat(id)
	if s == nil || s.Left {
		return fmt.Errorf("%w: %s", ErrNotSeated, id)
	}
	s.Left = true

	if t.rules.Button == id {
		t.rules.Button = t.nextSeat(id, func(s *Seat) bool { return !s.Left })
	}
	if t.InRound() {
		if _, ok := t.round.Player(id); ok {
			if err := t.round.Remove(id); err != nil {
				return err
			}
		}
		t.settle()
	}
	t.addLog("%s left the table", s.Name)
	t.logger.Info("Player left", "player", id)
	return nil
}

// nextSeat returns the first seat after id, wrapping around, that matches
// keep. It returns "" when none does.
func (t *Table) nextSeat(id string, keep func(*Seat) bool) string {
	start := -1
	for i, s := range t.seats {
		if s.ID == id {
			start = i
		}
	}
	n := len(t.seats)
	for k := 1; k <= n; k++ {
		s := t.seats[((start+k)%n+n)%n]
		if keep(s) {
			return s.ID
		}
	}
	return ""
}

// StartRound deals a new round to every seated player with chips. The
// button moves one seat on from the previous round.
func (t *Table) StartRound() (*Round, error) {
	if t.InRound() {
		return nil, ErrRoundInProgress
	}
	eligible := func(s *Seat) bool { return !s.Left && s.Stack > 0 }

	var players []Player
	for _, s := range t.seats {
		if eligible(s) {
			players = append(players, Player{ID: s.ID, Name: s.Name, Stack: s.Stack})
		}
	}
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: %d with chips", ErrNotEnoughPlayers, len(players))
	}

	button := t.rules.Button
	if t.rounds > 0 || button == "" {
		button = t.nextSeat(button, eligible)
	} else if s := t.seat(button); s == nil || !eligible(s) {
		button = t.nextSeat(button, eligible)
	}
	t.rules.Button = button

	round, err := New(players, t.rules,
		WithID(t.ids.New(gameid.KindRound)),
		WithRNG(t.rng),
		WithLogger(t.logger),
	)
	if err != nil {
		return nil, err
	}
	t.round = round
	t.settled = false

	t.addLog("Round %d started, %s has the button", t.rounds+1, t.nameOf(button))
	t.logger.Info("Round started", "round", round.ID(), "players", len(players), "button", button)
	t.settle()
	return round, nil
}

// Act applies an action in the current round.
func (t *Table) Act(playerID string, action Action) error {
	if t.round == nil {
		return ErrNoRound
	}
	if err := t.round.Act(playerID, action); err != nil {
		return err
	}
	t.addLog("%s: %s", t.nameOf(playerID), describeAction(action))
	t.settle()
	return nil
}

// EndRound forces the current round to finish.
func (t *Table) EndRound() error {
	if t.round == nil {
		return ErrNoRound
	}
	t.round.End()
	t.settle()
	return nil
}

// settle pays out an ended round into the seat stacks, once.
func (t *Table) settle() {
	if t.round == nil || !t.round.Ended() || t.settled {
		return
	}
	t.settled = true
	t.rounds++

	res := t.round.result
	for _, pr := range res.Players {
		if s := t.seat(pr.ID); s != nil {
			s.Stack += pr.Net
		}
		if pr.Winnings > 0 {
			if pr.Folded {
				t.addLog("%s wins %d", t.nameOf(pr.ID), pr.Winnings)
			} else {
				t.addLog("%s wins %d with %s", t.nameOf(pr.ID), pr.Winnings, pr.Hand.Category)
			}
		}
	}
	t.logger.Info("Round settled", "round", t.round.ID(), "pot", res.Total(), "pots", len(res.Pots))
}

func (t *Table) nameOf(id string) string {
	if s := t.seat(id); s != nil {
		return s.Name
	}
	return id
}

// TableView is a table as one viewer sees it.
type TableView struct {
	ID     string    `json:"id"`
	Seats  []Seat    `json:"seats"`
	Button string    `json:"button"`
	Rounds int       `json:"rounds"`
	Round  *View     `json:"round,omitempty"`
	Log    []LogItem `json:"log"`
}

// View projects the table for viewer; see Project.
func (t *Table) View(viewer string) TableView {
	v := TableView{
		ID:     t.id,
		Seats:  t.Seats(),
		Button: t.rules.Button,
		Rounds: t.rounds,
		Log:    t.Log(),
	}
	if t.round != nil {
		rv := Project(t.round, viewer)
		v.Round = &rv
	}
	return v
}

type tableSnapshot struct {
	ID         string    `json:"id"`
	Rules      Rules     `json:"rules"`
	MaxPlayers int       `json:"maxPlayers"`
	Seats      []Seat    `json:"seats"`
	Round      *Round    `json:"round,omitempty"`
	Settled    bool      `json:"settled"`
	Rounds     int       `json:"rounds"`
	Log        []LogItem `json:"log"`
}

// MarshalJSON implements json.Marshaler.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableSnapshot{
		ID:         t.id,
		Rules:      t.rules,
		MaxPlayers: t.maxPlayers,
		Seats:      t.Seats(),
		Round:      t.round,
		Settled:    t.settled,
		Rounds:     t.rounds,
		Log:        t.log,
	})
}

// UnmarshalTable restores a table written with json.Marshal. Options supply
// the runtime collaborators (clock, seed, logger) that are not persisted.
func UnmarshalTable(data []byte, opts ...TableOption) (*Table, error) {
	var s tableSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	t := &Table{
		id:         s.ID,
		rules:      s.Rules,
		maxPlayers: s.MaxPlayers,
		round:      s.Round,
		settled:    s.Settled,
		rounds:     s.Rounds,
		log:        s.Log,
	}
	for i := range s.Seats {
		seat := s.Seats[i]
		t.seats = append(t.seats, &seat)
	}
	for _, opt := range opts {
		opt(t)
	}
	t.init()
	t.logger = t.logger.With("table", t.id)
	if t.round != nil {
		t.round.logger = t.logger.WithPrefix("round").With("round", t.round.id)
	}
	// A round that ended before the snapshot was taken but was not yet paid
	// out is settled now.
	t.settle()
	return t, nil
}

package tui

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/game"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newModel(t *testing.T) *Model {
	t.Helper()
	table, err := game.NewTable(game.DefaultRules(), game.WithSeed(1), game.WithTableLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, table.Join("alice", "Alice", 1000))
	require.NoError(t, table.Join("bob", "Bob", 1000))
	return New(table, quietLogger())
}

func typeLine(m *Model, line string) {
	if line != "" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestParseCommand(t *testing.T) {
	t.Parallel()
	v := &game.View{
		Acting:  "bob",
		BetSize: 50,
		Players: []game.PlayerView{{ID: "alice", Stack: 1000}, {ID: "bob", Stack: 700}},
	}
	tests := []struct {
		input string
		want  Command
	}{
		{"", Command{Next: true}},
		{"next", Command{Next: true}},
		{"quit", Command{Quit: true}},
		{"fold", Command{Action: game.Fold{}}},
		{"  CHECK ", Command{Action: game.Check{}}},
		{"call", Command{Action: game.Call{Amount: 50}}},
		{"c", Command{Action: game.Call{Amount: 50}}},
		{"bet 100", Command{Action: game.Bet{Amount: 100}}},
		{"raise 200", Command{Action: game.Raise{Amount: 200}}},
		{"r 120", Command{Action: game.Raise{Amount: 120}}},
		{"allin", Command{Action: game.AllIn{Amount: 700}}},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.input, v)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, bad := range []string{"dance", "raise", "raise lots", "bet -5", "bet 1 2"} {
		_, err := ParseCommand(bad, v)
		assert.ErrorIs(t, err, ErrInvalidCommand, bad)
	}

	_, err := ParseCommand("call", nil)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestNewDealsFirstRound(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	require.True(t, m.Table().InRound())
	v := m.actingView()
	require.NotNil(t, v)
	assert.Equal(t, "bob", v.Acting)
	assert.Equal(t, "bob", v.Viewer, "the prompt shows the acting player's projection")
}

func TestHotSeatPlay(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})

	typeLine(m, "call")
	require.False(t, m.statusErr, m.status)
	assert.Equal(t, game.Flopped, m.Table().Round().Progress())

	typeLine(m, "raise 10")
	assert.True(t, m.statusErr, "raise below the bet is rejected")

	typeLine(m, "check")
	typeLine(m, "check")
	assert.Equal(t, game.Turned, m.Table().Round().Progress())

	typeLine(m, "bet 100")
	assert.True(t, m.statusErr, "bets accumulate over the round, so the turn needs a raise")
	typeLine(m, "raise 150")
	require.False(t, m.statusErr, m.status)
	typeLine(m, "fold")
	assert.False(t, m.Table().InRound())
	assert.Nil(t, m.actingView())
	assert.Contains(t, m.View(), "Round complete")

	typeLine(m, "")
	assert.True(t, m.Table().InRound(), "enter deals the next round")
	assert.Equal(t, 1, m.Table().Rounds())
}

func TestEnterDuringRoundIsRejected(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	id := m.Table().Round().ID()

	typeLine(m, "")
	assert.True(t, m.statusErr)
	assert.Equal(t, "bob to act", m.status)
	assert.Equal(t, id, m.Table().Round().ID())
}

func TestQuit(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("quit")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestViewBeforeSize(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	out := m.View()
	assert.Contains(t, out, "bob to act")
	assert.Contains(t, out, "Round 1 started")
}

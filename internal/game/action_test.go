package game

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionKind(t *testing.T) {
	t.Parallel()
	tests := map[string]ActionKind{
		"fold":   KindFold,
		"CHECK":  KindCheck,
		" bet ":  KindBet,
		"raise":  KindRaise,
		"call":   KindCall,
		"allin":  KindAllIn,
		"all-in": KindAllIn,
		"ALL_IN": KindAllIn,
	}
	for input, want := range tests {
		got, err := ParseActionKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseActionKind("shove")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestNewAction(t *testing.T) {
	t.Parallel()
	a, err := NewAction(KindRaise, 120)
	require.NoError(t, err)
	assert.Equal(t, Raise{Amount: 120}, a)
	assert.Equal(t, 120, ActionAmount(a))

	a, err = NewAction(KindFold, 99)
	require.NoError(t, err)
	assert.Equal(t, Fold{}, a)
	assert.Equal(t, 0, ActionAmount(a))

	_, err = NewAction(NoAction, 0)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestActionRecordJSON(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(RecordOf(AllIn{Amount: 300}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"ALL_IN","amount":300}`, string(data))

	var rec ActionRecord
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"call","amount":40}`), &rec))
	a, err := rec.Action()
	require.NoError(t, err)
	assert.Equal(t, Call{Amount: 40}, a)

	assert.Nil(t, RecordOf(nil))
}

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want ErrorClass
	}{
		{&ActionError{Player: "bob", Action: Check{}, Err: ErrNotYourTurn}, ProtocolViolation},
		{&ActionError{Player: "bob", Action: Call{Amount: 10}, Err: fmt.Errorf("%w of 40", ErrCallAmount)}, RuleViolation},
		{ErrRoundEnded, PreconditionViolation},
		{fmt.Errorf("wrapped: %w", ErrTableFull), PreconditionViolation},
		{ErrInvalidSnapshot, Unclassified},
		{nil, Unclassified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "%v", tt.err)
	}
}

func TestActionErrorMessage(t *testing.T) {
	t.Parallel()
	err := &ActionError{Player: "bob", Action: Call{Amount: 10}, Err: ErrCallAmount}
	assert.Contains(t, err.Error(), "bob")
	assert.Contains(t, err.Error(), "call 10")
	assert.ErrorIs(t, err, ErrCallAmount)
}

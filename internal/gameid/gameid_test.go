package gameid

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/randutil"
)

func TestNew(t *testing.T) {
	t.Parallel()
	id := New(KindRound)

	require.True(t, strings.HasPrefix(id, "round_"))
	assert.Len(t, id, len("round_")+26)

	kind, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, KindRound, kind)
}

func TestNewUnique(t *testing.T) {
	t.Parallel()
	ids := make(map[string]bool)
	for range 100 {
		id := New(KindTable)
		assert.False(t, ids[id], "duplicate ID generated: %s", id)
		ids[id] = true
	}
}

func TestTimeSorted(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	gen := NewGenerator(clock, randutil.New(1))

	var ids []string
	for range 10 {
		ids = append(ids, gen.New(KindRound))
		clock.Advance(time.Millisecond).MustWait(ctx)
	}
	for i := 1; i < len(ids); i++ {
		assert.Negative(t, strings.Compare(ids[i-1], ids[i]), "IDs not sorted: %s >= %s", ids[i-1], ids[i])
	}
}

func TestDeterministicWithRandSource(t *testing.T) {
	t.Parallel()
	clock := quartz.NewMock(t)
	a := NewGenerator(clock, randutil.New(42)).New(KindTable)
	b := NewGenerator(clock, randutil.New(42)).New(KindTable)
	assert.Equal(t, a, b)
}

func TestEncodeBase32(t *testing.T) {
	t.Parallel()
	var zero [16]byte
	assert.Equal(t, strings.Repeat("0", 26), encodeBase32(zero))

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xff
	}
	assert.Equal(t, "7"+strings.Repeat("z", 25), encodeBase32(ones))
}

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "round_01h5n0et5q6mt3v7ms1234abcd", false},
		{"no prefix", "01h5n0et5q6mt3v7ms1234abcd", true},
		{"empty prefix", "_01h5n0et5q6mt3v7ms1234abcd", true},
		{"too short", "round_01h5n0et5q6mt3v7ms123", true},
		{"too long", "round_01h5n0et5q6mt3v7ms1234abcdef", true},
		{"first char too high", "round_81h5n0et5q6mt3v7ms1234abcd", true},
		{"invalid character", "round_01h5n0et5q6mt3v7ms1234abci", true},
		{"uppercase not allowed", "round_01H5N0ET5Q6MT3V7MS1234ABCD", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

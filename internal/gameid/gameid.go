// Package gameid generates sortable identifiers for tables and rounds.
//
// An identifier is a kind prefix followed by a UUIDv7 encoded as 26
// characters of Crockford base32, e.g. "round_01j9z3k4m5n6p7q8r9s0t1v2w3".
// Identifiers from one generator sort by creation time.
package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/coder/quartz"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const encodedLen = 26

// Kind is the prefix that says what an identifier names.
type Kind string

const (
	KindTable Kind = "table"
	KindRound Kind = "round"
)

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator creates identifiers from a clock and a random source.
type Generator struct {
	clock      quartz.Clock
	randSource RandSource
}

// NewGenerator creates a generator. A nil clock uses the real clock and a nil
// RandSource uses crypto/rand.
func NewGenerator(clock quartz.Clock, randSource RandSource) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{clock: clock, randSource: randSource}
}

var defaultGenerator = NewGenerator(nil, nil)

// New creates an identifier of the given kind with the default generator.
func New(kind Kind) string {
	return defaultGenerator.New(kind)
}

// New creates an identifier of the given kind.
func (g *Generator) New(kind Kind) string {
	return string(kind) + "_" + encodeBase32(g.uuidV7())
}

func (g *Generator) uuidV7() [16]byte {
	var uuid [16]byte

	// 48-bit millisecond timestamp, then random bits with version and variant.
	now := g.clock.Now().UnixMilli()
	for i := range 6 {
		uuid[i] = byte(now >> (40 - 8*i))
	}

	if g.randSource != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.randSource.IntN(256))
		}
	} else if _, err := rand.Read(uuid[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return uuid
}

// encodeBase32 encodes 128 bits as 26 characters, padding two zero bits in
// front so the first character is always 0-7.
func encodeBase32(data [16]byte) string {
	var out [encodedLen]byte
	var acc uint32
	bits := 2 // leading pad bits
	pos := 0
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = alphabet[(acc>>bits)&0x1f]
			pos++
		}
	}
	return string(out[:])
}

// Parse splits an identifier into its kind and validates the encoded part.
func Parse(id string) (Kind, error) {
	kind, encoded, ok := strings.Cut(id, "_")
	if !ok || kind == "" {
		return "", fmt.Errorf("identifier %q has no kind prefix", id)
	}
	if len(encoded) != encodedLen {
		return "", fmt.Errorf("identifier must have %d encoded characters, got %d", encodedLen, len(encoded))
	}
	if encoded[0] > '7' {
		return "", fmt.Errorf("identifier first character must be 0-7, got %c", encoded[0])
	}
	for i, char := range encoded {
		if !strings.ContainsRune(alphabet, char) {
			return "", fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return Kind(kind), nil
}

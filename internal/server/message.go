package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokertable/internal/game"
)

// Message is the envelope of every WebSocket message in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type JoinData struct {
	Table  string `json:"table"`
	Player string `json:"player"`
	Name   string `json:"name,omitempty"`
}

type ActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Server → Client Messages

// Error codes sent alongside game.Classify's classes.
const (
	CodeInvalidMessage = "invalid_message"
	CodeUnknownType    = "unknown_message_type"
	CodeNotJoined      = "not_joined"
	CodeTableNotFound  = "table_not_found"
	CodeSeatTaken      = "seat_taken"
	CodeInternal       = "internal_error"
)

type ErrorData struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type JoinedData struct {
	Table  string `json:"table"`
	Player string `json:"player"`
}

type LeftData struct {
	Table string `json:"table"`
}

type TableInfo struct {
	Name    string `json:"name"`
	Players int    `json:"players"`
	BuyIn   int    `json:"buyIn"`
	InRound bool   `json:"inRound"`
	Rounds  int    `json:"rounds"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

// ViewData is the table projected for the receiving connection's player.
type ViewData = game.TableView

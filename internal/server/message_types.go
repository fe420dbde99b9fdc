package server

// MessageType represents a WebSocket message type.
type MessageType string

const (
	// Client to server messages
	MessageTypeJoin   MessageType = "join"
	MessageTypeLeave  MessageType = "leave"
	MessageTypeStart  MessageType = "start"
	MessageTypeAction MessageType = "action"
	MessageTypeTables MessageType = "tables"

	// Server to client messages
	MessageTypeView      MessageType = "view"
	MessageTypeError     MessageType = "error"
	MessageTypeJoined    MessageType = "joined"
	MessageTypeLeft      MessageType = "left"
	MessageTypeTableList MessageType = "table_list"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

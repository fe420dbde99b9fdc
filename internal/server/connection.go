package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokertable/internal/game"
)

// Connection represents a WebSocket connection to a client. A connection
// joins at most one table as one player.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	playerID  string
	runner    *Runner
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		server: server,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client without blocking. A client
// that stops reading is disconnected once its buffer fills.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection", "player", c.Player())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Viewer implements Subscriber.
func (c *Connection) Viewer() string {
	return c.Player()
}

// SendView implements Subscriber.
func (c *Connection) SendView(v game.TableView) {
	msg, err := NewMessage(MessageTypeView, ViewData(v))
	if err != nil {
		c.logger.Error("Failed to create view message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// Player returns the player this connection joined as.
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

func (c *Connection) seat() (string, *Runner) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID, c.runner
}

func (c *Connection) setSeat(playerID string, runner *Runner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.runner = runner
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Time allowed for a runner to answer a command
	commandWait = 5 * time.Second
)

var ErrConnectionClosed = errors.New("connection closed")

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Player())

	ctx, cancel := context.WithTimeout(c.ctx, commandWait)
	defer cancel()

	switch msg.Type {
	case MessageTypeJoin:
		var data JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, CodeInvalidMessage, "Failed to parse join data")
			return
		}
		c.handleJoin(ctx, msg, data)

	case MessageTypeLeave:
		c.handleLeave(ctx, msg)

	case MessageTypeStart:
		playerID, runner := c.seat()
		if runner == nil {
			c.sendError(msg, CodeNotJoined, "Join a table first")
			return
		}
		c.logger.Info("Start round request", "player", playerID, "table", runner.Name())
		if err := runner.Start(ctx); err != nil {
			c.sendGameError(msg, err)
		}

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, CodeInvalidMessage, "Failed to parse action data")
			return
		}
		c.handleAction(ctx, msg, data)

	case MessageTypeTables:
		c.handleTables(ctx, msg)

	default:
		c.sendError(msg, CodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleJoin(ctx context.Context, msg *Message, data JoinData) {
	c.logger.Info("Join request", "table", data.Table, "player", data.Player)

	if data.Player == "" {
		c.sendError(msg, CodeInvalidMessage, "Player id required")
		return
	}
	if _, current := c.seat(); current != nil {
		c.sendError(msg, CodeInvalidMessage, "Already joined "+current.Name())
		return
	}
	runner, ok := c.server.Runner(data.Table)
	if !ok {
		c.sendError(msg, CodeTableNotFound, "Unknown table: "+data.Table)
		return
	}
	if !c.server.claimSeat(runner.Name(), data.Player, c) {
		c.sendError(msg, CodeSeatTaken, "Player "+data.Player+" is already connected")
		return
	}
	if err := runner.Join(ctx, data.Player, data.Name); err != nil {
		c.server.releaseSeat(runner.Name(), data.Player, c)
		c.sendGameError(msg, err)
		return
	}
	c.setSeat(data.Player, runner)

	c.reply(msg, MessageTypeJoined, JoinedData{Table: runner.Name(), Player: data.Player})
	if err := runner.Subscribe(ctx, c); err != nil {
		c.logger.Error("Failed to subscribe", "error", err)
	}
}

func (c *Connection) handleLeave(ctx context.Context, msg *Message) {
	playerID, runner := c.seat()
	if runner == nil {
		c.sendError(msg, CodeNotJoined, "Join a table first")
		return
	}
	c.logger.Info("Leave request", "table", runner.Name(), "player", playerID)

	_ = runner.Unsubscribe(ctx, c)
	if err := runner.Leave(ctx, playerID); err != nil {
		c.sendGameError(msg, err)
		return
	}
	c.server.releaseSeat(runner.Name(), playerID, c)
	c.setSeat("", nil)
	c.reply(msg, MessageTypeLeft, LeftData{Table: runner.Name()})
}

func (c *Connection) handleAction(ctx context.Context, msg *Message, data ActionData) {
	playerID, runner := c.seat()
	if runner == nil {
		c.sendError(msg, CodeNotJoined, "Join a table first")
		return
	}
	c.logger.Info("Player action", "player", playerID, "action", data.Action, "amount", data.Amount)

	kind, err := game.ParseActionKind(data.Action)
	if err != nil {
		c.sendGameError(msg, err)
		return
	}
	action, err := game.NewAction(kind, data.Amount)
	if err != nil {
		c.sendGameError(msg, err)
		return
	}
	// Success is visible in the view every subscriber receives.
	if err := runner.Act(ctx, playerID, action); err != nil {
		c.sendGameError(msg, err)
	}
}

func (c *Connection) handleTables(ctx context.Context, msg *Message) {
	var tables []TableInfo
	for _, runner := range c.server.Runners() {
		info, err := runner.Info(ctx)
		if err != nil {
			c.sendError(msg, CodeInternal, err.Error())
			return
		}
		tables = append(tables, info)
	}
	c.reply(msg, MessageTypeTableList, TableListData{Tables: tables})
}

// disconnect removes the player from their table when the socket closes,
// provided this connection still holds the player's seat.
func (c *Connection) disconnect() {
	playerID, runner := c.seat()
	if runner == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandWait)
	defer cancel()

	_ = runner.Unsubscribe(ctx, c)
	if !c.server.releaseSeat(runner.Name(), playerID, c) {
		c.setSeat("", nil)
		return
	}
	if err := runner.Leave(ctx, playerID); err != nil && !errors.Is(err, game.ErrNotSeated) && !errors.Is(err, ErrRunnerStopped) {
		c.logger.Warn("Failed to remove disconnected player", "player", playerID, "error", err)
	}
	c.setSeat("", nil)
}

func (c *Connection) reply(req *Message, typ MessageType, data any) {
	msg, err := NewMessage(typ, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", typ, "error", err)
		return
	}
	msg.RequestID = req.RequestID
	_ = c.SendMessage(msg)
}

// sendGameError reports a rejection from the game, coded by its class.
func (c *Connection) sendGameError(req *Message, err error) {
	code := CodeInternal
	if class := game.Classify(err); class != game.Unclassified {
		code = class.String()
	}
	c.sendError(req, code, err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(req *Message, code, message string) {
	c.reply(req, MessageTypeError, ErrorData{Code: code, Message: message, RequestID: req.RequestID})
}

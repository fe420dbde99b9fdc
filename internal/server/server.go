package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Server serves the configured tables over WebSocket.
type Server struct {
	config      *Config
	upgrader    websocket.Upgrader
	runners     []*Runner
	byName      map[string]*Runner
	connections map[*Connection]bool
	seats       map[seatKey]*Connection
	logger      *log.Logger
	mu          sync.RWMutex
}

// Option configures a Server.
type Option func(*options)

type options struct {
	clock quartz.Clock
	store *store.Store
	seed  *int64
}

// WithClock sets the clock every table runner uses.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithStore persists every table to s.
func WithStore(s *store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithSeed derives reproducible decks for every table from seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = &seed }
}

// NewServer creates a server with one runner per configured table.
func NewServer(config *Config, logger *log.Logger, opts ...Option) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	o := options{clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		byName:      make(map[string]*Runner),
		connections: make(map[*Connection]bool),
		seats:       make(map[seatKey]*Connection),
		logger:      logger.WithPrefix("server"),
	}

	for i, tc := range config.Tables {
		runnerOpts := []RunnerOption{WithRunnerClock(o.clock), WithRunnerLogger(logger)}
		if o.store != nil {
			runnerOpts = append(runnerOpts, WithRunnerStore(o.store))
		}
		if o.seed != nil {
			runnerOpts = append(runnerOpts, WithRunnerSeed(*o.seed+int64(i)))
		}
		runner, err := NewRunner(tc, runnerOpts...)
		if err != nil {
			return nil, err
		}
		s.runners = append(s.runners, runner)
		s.byName[tc.Name] = runner
	}
	return s, nil
}

// Runner returns the runner for a table name.
func (s *Server) Runner(name string) (*Runner, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// Runners returns every runner in configuration order.
func (s *Server) Runners() []*Runner {
	return s.runners
}

// Handler returns the HTTP routes: /ws, /health and /tables.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tables", s.handleTables)
	return mux
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs every table runner and serves HTTP on ln until ctx is
// cancelled or one of them fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, r := range s.runners {
		g.Go(func() error {
			return r.Run(ctx)
		})
	}

	httpServer := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String(), "tables", len(s.runners))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down")
		s.closeConnections()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	client.Start()

	go func() {
		<-client.Done()
		client.disconnect()

		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleTables lists the tables as JSON.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables := make([]TableInfo, 0, len(s.runners))
	for _, runner := range s.runners {
		info, err := runner.Info(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		tables = append(tables, info)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TableListData{Tables: tables})
}

type seatKey struct {
	table  string
	player string
}

// claimSeat binds a player id at a table to conn. It fails while another
// connection holds the id.
func (s *Server) claimSeat(table, player string, conn *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := seatKey{table: table, player: player}
	if owner, ok := s.seats[key]; ok && owner != conn {
		return false
	}
	s.seats[key] = conn
	return true
}

// releaseSeat drops conn's claim on a player id and reports whether conn
// held it.
func (s *Server) releaseSeat(table, player string, conn *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := seatKey{table: table, player: player}
	if s.seats[key] != conn {
		return false
	}
	delete(s.seats, key)
	return true
}

// ConnectedPlayers returns the ids of players joined over a connection.
func (s *Server) ConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if id := conn.Player(); id != "" {
			players = append(players, id)
		}
	}
	return players
}

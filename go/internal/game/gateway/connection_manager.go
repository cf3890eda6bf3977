package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/mcdev12/gooseclicker/go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// allRounds is the pool key for clients that did not pick a round.
var allRounds = uuid.Nil

// ConnectionManager fans events out to websocket clients, grouped by round.
type ConnectionManager struct {
	pools map[uuid.UUID]map[*Connection]struct{}
	mu    sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	metrics  metrics.Collector

	broadcastCh chan events.Envelope

	// recently broadcast event ids; only touched by Run
	seen     map[string]struct{}
	seenRing []string
	seenNext int
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	RoundID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time

	mu     sync.Mutex
	closed bool
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	BroadcastBuffer int
	DedupWindow     int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		BroadcastBuffer: 4096,
		DedupWindow:     8192,
		// CORS is enforced on the API; the socket is read-only
		CheckOrigin: func(r *http.Request) bool { return true },
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, m metrics.Collector) *ConnectionManager {
	if m == nil {
		m = metrics.NoOp{}
	}
	return &ConnectionManager{
		pools: make(map[uuid.UUID]map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		metrics:     m,
		broadcastCh: make(chan events.Envelope, config.BroadcastBuffer),
		seen:        make(map[string]struct{}, config.DedupWindow),
		seenRing:    make([]string, config.DedupWindow),
	}
}

// Deliver queues env for broadcast. It never blocks the caller; when the
// queue is full the event is dropped.
func (cm *ConnectionManager) Deliver(env events.Envelope) {
	select {
	case cm.broadcastCh <- env:
	default:
		cm.metrics.RecordEventDropped(string(env.EventType))
		log.Warn().
			Str("round_id", env.RoundID.String()).
			Str("event_id", env.EventID).
			Msg("Broadcast channel full, dropping event")
	}
}

// Run broadcasts queued events until ctx is done, then closes every
// connection.
func (cm *ConnectionManager) Run(ctx context.Context) error {
	log.Info().Msg("Connection manager started")

	for {
		select {
		case <-ctx.Done():
			cm.closeAll()
			log.Info().Msg("Connection manager shutting down")
			return nil
		case env := <-cm.broadcastCh:
			cm.handleBroadcast(env)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket. A nil roundID
// subscribes to every round.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, roundID uuid.UUID) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.NewString(),
		RoundID:     roundID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBuffer),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Debug().
		Str("connection_id", connection.ID).
		Str("round_id", roundID.String()).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	if cm.pools[conn.RoundID] == nil {
		cm.pools[conn.RoundID] = make(map[*Connection]struct{})
	}
	cm.pools[conn.RoundID][conn] = struct{}{}
	total := cm.countLocked()
	cm.mu.Unlock()

	cm.metrics.SetConnections(total)
}

// unregisterConnection is safe to call more than once per connection.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	removed := false
	if pool, ok := cm.pools[conn.RoundID]; ok {
		if _, ok := pool[conn]; ok {
			delete(pool, conn)
			removed = true
			if len(pool) == 0 {
				delete(cm.pools, conn.RoundID)
			}
		}
	}
	total := cm.countLocked()
	cm.mu.Unlock()

	if removed {
		conn.close()
		cm.metrics.SetConnections(total)
		log.Debug().Str("connection_id", conn.ID).Msg("Connection unregistered")
	}
}

// duplicate reports whether id was broadcast recently and remembers it.
func (cm *ConnectionManager) duplicate(id string) bool {
	if len(cm.seenRing) == 0 {
		return false
	}
	if _, ok := cm.seen[id]; ok {
		return true
	}
	if old := cm.seenRing[cm.seenNext]; old != "" {
		delete(cm.seen, old)
	}
	cm.seenRing[cm.seenNext] = id
	cm.seenNext = (cm.seenNext + 1) % len(cm.seenRing)
	cm.seen[id] = struct{}{}
	return false
}

func (cm *ConnectionManager) handleBroadcast(env events.Envelope) {
	if cm.duplicate(env.EventID) {
		return
	}

	msg, err := ToMessage(env)
	if err != nil {
		log.Error().Err(err).Str("event_id", env.EventID).Msg("Failed to convert event for broadcast")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event for broadcast")
		return
	}

	// snapshot targets so the lock is not held while sending
	cm.mu.RLock()
	targets := make([]*Connection, 0, len(cm.pools[env.RoundID])+len(cm.pools[allRounds]))
	for conn := range cm.pools[env.RoundID] {
		targets = append(targets, conn)
	}
	if env.RoundID != allRounds {
		for conn := range cm.pools[allRounds] {
			targets = append(targets, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		if !conn.trySend(data) {
			log.Warn().Str("connection_id", conn.ID).Msg("Connection send buffer full, closing connection")
			cm.unregisterConnection(conn)
		}
	}
}

// ConnectionCount returns the number of open connections.
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.countLocked()
}

// Stats reports open connections per subscribed round.
func (cm *ConnectionManager) Stats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{Rounds: make(map[string]int, len(cm.pools))}
	for roundID, pool := range cm.pools {
		stats.TotalConnections += len(pool)
		key := roundID.String()
		if roundID == allRounds {
			key = "all"
		}
		stats.Rounds[key] = len(pool)
	}
	return stats
}

type ConnectionStats struct {
	TotalConnections int            `json:"totalConnections"`
	Rounds           map[string]int `json:"rounds"`
}

func (cm *ConnectionManager) countLocked() int {
	n := 0
	for _, pool := range cm.pools {
		n += len(pool)
	}
	return n
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.Lock()
	var all []*Connection
	for _, pool := range cm.pools {
		for conn := range pool {
			all = append(all, conn)
		}
	}
	cm.pools = make(map[uuid.UUID]map[*Connection]struct{})
	cm.mu.Unlock()

	for _, conn := range all {
		conn.close()
	}
	cm.metrics.SetConnections(0)
}

// trySend queues data without blocking. It reports false only when the
// buffer is full; a closed connection silently discards.
func (c *Connection) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// close stops the write pump, which sends a close frame and closes the socket.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("Failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("Failed to send ping")
				return
			}
		}
	}
}

// readPump only services control frames; clients have nothing to say.
func (c *Connection) readPump() {
	defer c.Manager.unregisterConnection(c)

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("connection_id", c.ID).Msg("Unexpected WebSocket close error")
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

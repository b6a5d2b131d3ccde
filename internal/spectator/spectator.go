// Package spectator broadcasts race events over WebSocket to observer
// clients. It wraps engine.Engine's OnEventProcessed hook around each
// Conn's send channel: a read pump and a write pump per connection, a
// buffered outbound channel, ping/pong keepalive, and a context that
// tears the connection down cleanly.
package spectator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/racesim/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
)

// Frame is one broadcast unit: the dispatched event's phase and type plus
// eng.Standings(). It carries no racer positions or event payload, and
// Standing stays empty until the race has ended.
type Frame struct {
	Phase    string `json:"phase"`
	Event    string `json:"event"`
	Standing []engine.StandingEntry `json:"standing,omitempty"`
}

// Conn wraps one spectator's WebSocket connection.
type Conn struct {
	conn   *websocket.Conn
	send   chan Frame
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewConn wraps conn for broadcast, deriving its lifetime from ctx.
func NewConn(ctx context.Context, conn *websocket.Conn, logger *log.Logger) *Conn {
	cctx, cancel := context.WithCancel(ctx)
	return &Conn{
		conn:   conn,
		send:   make(chan Frame, sendBuffer),
		logger: logger.WithPrefix("spectator"),
		ctx:    cctx,
		cancel: cancel,
	}
}

// Close tears down the connection exactly once.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Publish enqueues a frame for delivery, dropping the connection instead
// of blocking if its outbound buffer is full.
func (c *Conn) Publish(f Frame) {
	select {
	case c.send <- f:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("spectator send buffer full, closing connection")
		_ = c.Close()
	}
}

// Run drives the connection's read and write pumps until ctx is
// cancelled or the peer disconnects.
func (c *Conn) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.writePump() })
	g.Go(func() error { return c.readPump(gctx) })
	err := g.Wait()
	_ = c.Close()
	return err
}

func (c *Conn) readPump(ctx context.Context) error {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return nil
		default:
		}
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func (c *Conn) writePump() error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}
			b, err := json.Marshal(frame)
			if err != nil {
				c.logger.Error("failed to marshal spectator frame", "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return err
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-c.ctx.Done():
			return nil
		}
	}
}

// Broadcaster fans every processed engine event out to every connected
// spectator, wired in as engine.Engine's OnEventProcessed hook.
type Broadcaster struct {
	mu    sync.RWMutex
	conns map[*Conn]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{conns: make(map[*Conn]struct{})}
}

// Add registers a spectator connection.
func (b *Broadcaster) Add(c *Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[c] = struct{}{}
}

// Remove unregisters a spectator connection.
func (b *Broadcaster) Remove(c *Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conns, c)
}

// Hook returns an engine.Engine.OnEventProcessed-compatible callback that
// broadcasts every dispatched event to all connected spectators.
func (b *Broadcaster) Hook() func(eng *engine.Engine, se engine.ScheduledEvent) {
	return func(eng *engine.Engine, se engine.ScheduledEvent) {
		frame := Frame{
			Phase:    se.Phase.String(),
			Event:    string(se.Event.Type()),
			Standing: eng.Standings(),
		}
		b.mu.RLock()
		defer b.mu.RUnlock()
		for c := range b.conns {
			c.Publish(frame)
		}
	}
}

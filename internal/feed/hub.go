// Package feed streams mission notifications and marker operations to
// WebSocket viewers.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/signalsfoundry/chronomesh/internal/logging"
	sim "github.com/signalsfoundry/chronomesh/internal/sim/state"
)

// Marker message types. Mission event types use state.EventType names.
const (
	TypeHello         = "hello"
	TypeMarkerCreate  = "marker_create"
	TypeMarkerDispose = "marker_dispose"
	TypeFrame         = "frame"
)

// ErrHubClosed is returned by Publish after Close.
var ErrHubClosed = errors.New("feed hub closed")

// Message is the wire envelope.
type Message struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// HelloPayload is the first message every viewer receives.
type HelloPayload struct {
	Session string `json:"session"`
}

type client struct {
	id   string
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans messages out to connected viewers. A viewer that falls behind
// by more than its buffer is disconnected.
type Hub struct {
	log          logging.Logger
	buffer       int
	writeTimeout time.Duration
	tickEvery    time.Duration

	mu       sync.RWMutex
	clients  map[string]*client
	closed   bool
	lastTick time.Time
	greeter  func() []Message
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithBuffer sets the per-viewer queue length.
func WithBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithTickInterval thins tick events to at most one per d of display time.
// Zero forwards every tick.
func WithTickInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.tickEvery = d }
}

// WithWriteTimeout bounds each socket write.
func WithWriteTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// NewHub constructs an empty hub.
func NewHub(log logging.Logger, opts ...HubOption) *Hub {
	if log == nil {
		log = logging.Noop()
	}
	h := &Hub{
		log:          log,
		buffer:       256,
		writeTimeout: 5 * time.Second,
		tickEvery:    250 * time.Millisecond,
		clients:      make(map[string]*client),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetGreeter installs a function whose messages every new viewer receives
// right after hello, typically the live marker set.
func (h *Hub) SetGreeter(fn func() []Message) {
	h.mu.Lock()
	h.greeter = fn
	h.mu.Unlock()
}

// Clients is the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Open reports whether the hub still accepts messages.
func (h *Hub) Open() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.closed
}

// Publish queues msg for every viewer.
func (h *Hub) Publish(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	var slow []*client
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn(context.Background(), "feed viewer too slow; disconnecting", logging.String("session", c.id))
		h.remove(c)
	}
	return nil
}

// PublishEvent forwards a mission event. It matches the state.Subscribe
// callback signature.
func (h *Hub) PublishEvent(ev sim.Event) {
	if ev.Type == sim.EventTick && h.tickEvery > 0 {
		h.mu.Lock()
		if !h.lastTick.IsZero() && ev.At.Sub(h.lastTick) < h.tickEvery {
			h.mu.Unlock()
			return
		}
		h.lastTick = ev.At
		h.mu.Unlock()
	}
	if err := h.Publish(Message{Type: string(ev.Type), At: ev.At, Payload: ev.Payload}); err != nil && !errors.Is(err, ErrHubClosed) {
		h.log.Warn(context.Background(), "feed publish failed", logging.String("type", string(ev.Type)), logging.Err(err))
	}
}

// Close disconnects every viewer and rejects further messages.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) add() (*client, []Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, nil, ErrHubClosed
	}
	c := &client{id: uuid.NewString(), send: make(chan []byte, h.buffer), done: make(chan struct{})}
	h.clients[c.id] = c
	var greeting []Message
	if h.greeter != nil {
		greeting = h.greeter()
	}
	return c, greeting, nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
}

// ServeHTTP upgrades the request to a WebSocket and streams messages until
// the viewer disconnects or the hub closes. Inbound messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn(r.Context(), "feed accept failed", logging.Err(err))
		return
	}
	defer conn.CloseNow()

	c, greeting, err := h.add()
	if err != nil {
		_ = conn.Close(websocket.StatusGoingAway, "feed closed")
		return
	}
	defer h.remove(c)

	ctx := conn.CloseRead(r.Context())
	log := h.log.With(logging.String("session", c.id))
	log.Debug(ctx, "feed viewer connected")

	first := append([]Message{{Type: TypeHello, At: time.Now().UTC(), Payload: HelloPayload{Session: c.id}}}, greeting...)
	for _, msg := range first {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := h.write(ctx, conn, data); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug(context.Background(), "feed viewer disconnected")
			return
		case <-c.done:
			_ = conn.Close(websocket.StatusGoingAway, "feed closed")
			return
		case data := <-c.send:
			if err := h.write(ctx, conn, data); err != nil {
				log.Debug(context.Background(), "feed write failed", logging.Err(err))
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

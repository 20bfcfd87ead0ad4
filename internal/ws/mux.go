// Package ws multiplexes server push topics over a single STOMP
// session carried on one WebSocket connection. Subscribers register a
// callback per topic; the mux owns connecting, the handshake, replaying
// subscriptions after a reconnect, and decoding payloads.
package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orgforge/orgforge/internal/log"
)

// DefaultRetryDelay is the fixed pause between reconnect attempts.
// Deliberately not exponential: there is one logical connection per
// process and the server treats reconnects as cheap.
const DefaultRetryDelay = 5 * time.Second

// Status is the connection lifecycle state.
type Status int32

const (
	// Disconnected means no connection exists and none is wanted.
	Disconnected Status = iota
	// Connecting means a dial or reconnect is in progress.
	Connecting
	// Connected means the session handshake completed.
	Connected
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Handler receives one decoded message. The payload is the decoded
// JSON value when the body parses, otherwise the raw body string.
type Handler func(payload any)

// Config carries the mux construction parameters.
type Config struct {
	// URL is the full WebSocket endpoint, e.g. ws://host:8080/ws.
	URL string
	// Token supplies the bearer credential at dial time, so a token
	// refreshed between reconnects is picked up automatically.
	Token func() string
	// RetryDelay overrides DefaultRetryDelay; zero keeps the default.
	RetryDelay time.Duration
	Dialer     *websocket.Dialer
	Logger     *log.Logger
}

type subscription struct {
	id      string
	handler Handler
}

// Mux is the topic multiplexer. One callback is retained per topic; a
// second Subscribe on the same topic replaces the first silently.
type Mux struct {
	url        string
	token      func() string
	retryDelay time.Duration
	dialer     *websocket.Dialer
	logger     *log.Logger

	// wmu serializes frame writes; the transport allows one writer.
	wmu sync.Mutex

	mu      sync.Mutex
	status  Status
	subs    map[string]*subscription
	conn    *websocket.Conn
	gen     int
	nextSub int
}

// NewMux creates a disconnected multiplexer. The first Subscribe call
// triggers the connection.
func NewMux(cfg Config) *Mux {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.Logger == nil {
		cfg.Logger = log.DefaultLogger()
	}
	if cfg.Token == nil {
		cfg.Token = func() string { return "" }
	}
	return &Mux{
		url:        cfg.URL,
		token:      cfg.Token,
		retryDelay: cfg.RetryDelay,
		dialer:     cfg.Dialer,
		logger:     cfg.Logger.WithGroup("ws"),
		subs:       map[string]*subscription{},
	}
}

// Status returns the current connection state.
func (m *Mux) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Subscribe records the topic callback and makes sure a connection is
// on its way. While disconnected the subscription is deferred; it is
// replayed the moment the session comes up.
func (m *Mux) Subscribe(topic string, h Handler) {
	m.mu.Lock()
	sub, exists := m.subs[topic]
	if exists {
		sub.handler = h
		m.mu.Unlock()
		return
	}

	m.nextSub++
	sub = &subscription{id: "sub-" + strconv.Itoa(m.nextSub), handler: h}
	m.subs[topic] = sub

	conn := m.conn
	connected := m.status == Connected
	shouldConnect := m.status == Disconnected
	if shouldConnect {
		m.status = Connecting
	}
	gen := m.gen
	m.mu.Unlock()

	if connected && conn != nil {
		m.sendSubscribe(conn, topic, sub.id)
		return
	}
	if shouldConnect {
		go m.run(gen)
	}
}

// Unsubscribe drops the local record. The server-side subscription is
// left to die with the connection; the broker tolerates that.
func (m *Mux) Unsubscribe(topic string) {
	m.mu.Lock()
	delete(m.subs, topic)
	m.mu.Unlock()
}

// Disconnect tears the session down and forgets every subscription.
// A later Subscribe starts from a clean slate and reconnects.
func (m *Mux) Disconnect() {
	m.mu.Lock()
	m.gen++
	m.status = Disconnected
	m.subs = map[string]*subscription{}
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		m.writeFrame(conn, newFrame(cmdDisconnect, nil))
		conn.Close()
	}
}

// run owns one connection lifetime including retries. It exits when
// the generation it was started for is invalidated by Disconnect.
func (m *Mux) run(gen int) {
	for {
		if m.stale(gen) {
			return
		}

		conn, err := m.dial()
		if err != nil {
			m.logger.Debug("connect failed, retrying", "error", err, "delay", m.retryDelay)
			time.Sleep(m.retryDelay)
			continue
		}

		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			conn.Close()
			return
		}
		m.conn = conn
		m.status = Connected
		replay := make(map[string]string, len(m.subs))
		for topic, sub := range m.subs {
			replay[topic] = sub.id
		}
		m.mu.Unlock()

		m.logger.Info("connected", "topics", len(replay))
		for topic, id := range replay {
			m.sendSubscribe(conn, topic, id)
		}

		err = m.readLoop(conn)

		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			return
		}
		m.status = Connecting
		m.conn = nil
		m.mu.Unlock()

		conn.Close()
		m.logger.Debug("connection dropped, retrying", "error", err, "delay", m.retryDelay)
		time.Sleep(m.retryDelay)
	}
}

func (m *Mux) stale(gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen != m.gen
}

// dial opens the transport and completes the session handshake.
func (m *Mux) dial() (*websocket.Conn, error) {
	header := http.Header{}
	if tok := m.token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}

	conn, _, err := m.dialer.Dial(m.url, header)
	if err != nil {
		return nil, err
	}

	connect := newFrame(cmdConnect, map[string]string{
		"accept-version": "1.1,1.2",
		"heart-beat":     "0,0",
	})
	if tok := m.token(); tok != "" {
		connect.Headers["Authorization"] = "Bearer " + tok
	}
	if err := m.writeFrame(conn, connect); err != nil {
		conn.Close()
		return nil, err
	}

	f, err := m.readFrame(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if f.Command != cmdConnected {
		conn.Close()
		return nil, fmt.Errorf("handshake rejected: %s %s", f.Command, f.Headers["message"])
	}
	return conn, nil
}

// readLoop dispatches MESSAGE frames until the connection fails.
// Messages on one topic arrive in order because there is exactly one
// reader per connection.
func (m *Mux) readLoop(conn *websocket.Conn) error {
	for {
		f, err := m.readFrame(conn)
		if err != nil {
			return err
		}

		switch f.Command {
		case cmdMessage:
			m.dispatch(f.Headers["destination"], f.Body)
		case cmdError:
			m.logger.Warn("server error frame", "message", f.Headers["message"])
		}
	}
}

func (m *Mux) dispatch(topic, body string) {
	// Subscribe swaps the handler in place, so it must be read under
	// the same lock to keep the swap visible to the read loop.
	m.mu.Lock()
	var h Handler
	if sub := m.subs[topic]; sub != nil {
		h = sub.handler
	}
	m.mu.Unlock()
	if h == nil {
		return
	}

	var payload any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		payload = body
	}
	h(payload)
}

func (m *Mux) sendSubscribe(conn *websocket.Conn, topic, id string) {
	f := newFrame(cmdSubscribe, map[string]string{
		"id":          id,
		"destination": topic,
		"ack":         "auto",
	})
	if err := m.writeFrame(conn, f); err != nil {
		m.logger.Debug("subscribe send failed", "topic", topic, "error", err)
	}
}

func (m *Mux) writeFrame(conn *websocket.Conn, f frame) error {
	m.wmu.Lock()
	defer m.wmu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, f.encode())
}

func (m *Mux) readFrame(conn *websocket.Conn) (frame, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return frame{}, err
		}
		f, ok, err := parseFrame(data)
		if err != nil {
			m.logger.Debug("dropping malformed frame", "error", err)
			continue
		}
		if !ok {
			continue
		}
		return f, nil
	}
}

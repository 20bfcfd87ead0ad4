package ws

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stompServer is a minimal broker: it answers CONNECT, tracks
// subscriptions, and lets tests push MESSAGE frames to a topic.
type stompServer struct {
	t        *testing.T
	upgrader websocket.Upgrader
	srv      *httptest.Server

	mu       sync.Mutex
	conn     *websocket.Conn
	subs     map[string]string // topic -> subscription id
	auth     []string
	connects int
	dropNext bool
}

func newStompServer(t *testing.T) *stompServer {
	s := &stompServer{t: t, subs: map[string]string{}}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stompServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *stompServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.connects++
	drop := s.dropNext
	s.dropNext = false
	s.conn = conn
	s.mu.Unlock()

	if drop {
		conn.Close()
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		f, ok, err := parseFrame(data)
		if err != nil || !ok {
			continue
		}

		switch f.Command {
		case cmdConnect:
			reply := newFrame(cmdConnected, map[string]string{"version": "1.2"})
			conn.WriteMessage(websocket.TextMessage, reply.encode())
		case cmdSubscribe:
			s.mu.Lock()
			s.subs[f.Headers["destination"]] = f.Headers["id"]
			s.mu.Unlock()
		case cmdDisconnect:
			return
		}
	}
}

// push sends a MESSAGE frame for a topic on the live connection.
func (s *stompServer) push(topic, body string) {
	s.mu.Lock()
	conn := s.conn
	id := s.subs[topic]
	s.mu.Unlock()
	require.NotNil(s.t, conn)

	f := newFrame(cmdMessage, map[string]string{
		"destination":  topic,
		"subscription": id,
		"message-id":   "m1",
	})
	f.Body = body
	require.NoError(s.t, conn.WriteMessage(websocket.TextMessage, f.encode()))
}

func (s *stompServer) subscribedTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, 0, len(s.subs))
	for topic := range s.subs {
		topics = append(topics, topic)
	}
	return topics
}

func (s *stompServer) kill() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func newTestMux(srv *stompServer, token string) *Mux {
	return NewMux(Config{
		URL:        srv.url(),
		Token:      func() string { return token },
		RetryDelay: 20 * time.Millisecond,
	})
}

func TestMux_SubscribeConnectsAndDelivers(t *testing.T) {
	srv := newStompServer(t)
	m := newTestMux(srv, "tok-123")
	defer m.Disconnect()

	var mu sync.Mutex
	var got []any
	m.Subscribe("/topic/test-progress", func(payload any) {
		mu.Lock()
		got = append(got, payload)
		mu.Unlock()
	})

	waitFor(t, func() bool { return m.Status() == Connected }, "connect")
	waitFor(t, func() bool { return len(srv.subscribedTopics()) == 1 }, "subscription")

	srv.push("/topic/test-progress", `{"runId":"r1","completed":3}`)
	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return len(got) == 1 }, "delivery")

	mu.Lock()
	defer mu.Unlock()
	payload, ok := got[0].(map[string]any)
	require.True(t, ok, "valid JSON arrives decoded")
	assert.Equal(t, "r1", payload["runId"])
	assert.Equal(t, float64(3), payload["completed"])

	srv.mu.Lock()
	auth := srv.auth[0]
	srv.mu.Unlock()
	assert.Equal(t, "Bearer tok-123", auth)
}

func TestMux_MalformedJSONPassedThroughRaw(t *testing.T) {
	srv := newStompServer(t)
	m := newTestMux(srv, "")
	defer m.Disconnect()

	var mu sync.Mutex
	var got []any
	m.Subscribe("/topic/logs", func(payload any) {
		mu.Lock()
		got = append(got, payload)
		mu.Unlock()
	})
	waitFor(t, func() bool { return len(srv.subscribedTopics()) == 1 }, "subscription")

	srv.push("/topic/logs", "plain text, not json")
	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return len(got) == 1 }, "delivery")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "plain text, not json", got[0])
}

func TestMux_SecondSubscribeReplacesHandler(t *testing.T) {
	srv := newStompServer(t)
	m := newTestMux(srv, "")
	defer m.Disconnect()

	var mu sync.Mutex
	var first, second int
	m.Subscribe("/topic/a", func(any) { mu.Lock(); first++; mu.Unlock() })
	waitFor(t, func() bool { return len(srv.subscribedTopics()) == 1 }, "subscription")

	m.Subscribe("/topic/a", func(any) { mu.Lock(); second++; mu.Unlock() })

	srv.push("/topic/a", "{}")
	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return second == 1 }, "replacement delivery")

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, first, "replaced handler no longer fires")
}

func TestMux_HandlerReplacementDuringDeliveryIsSafe(t *testing.T) {
	srv := newStompServer(t)
	m := newTestMux(srv, "")
	defer m.Disconnect()

	var delivered int64
	count := func(any) { atomic.AddInt64(&delivered, 1) }

	m.Subscribe("/topic/test-progress", count)
	waitFor(t, func() bool { return len(srv.subscribedTopics()) == 1 }, "subscription")

	// Swap the handler continuously while frames stream in; the read
	// loop must only ever observe a fully installed handler.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			m.Subscribe("/topic/test-progress", count)
		}
	}()
	for i := 0; i < 200; i++ {
		srv.push("/topic/test-progress", `{"seq":`+strconv.Itoa(i)+`}`)
	}
	<-done

	waitFor(t, func() bool { return atomic.LoadInt64(&delivered) >= 200 }, "all deliveries")
}

func TestMux_UnsubscribeStopsDelivery(t *testing.T) {
	srv := newStompServer(t)
	m := newTestMux(srv, "")
	defer m.Disconnect()

	var mu sync.Mutex
	var calls int
	m.Subscribe("/topic/a", func(any) { mu.Lock(); calls++; mu.Unlock() })
	waitFor(t, func() bool { return len(srv.subscribedTopics()) == 1 }, "subscription")

	m.Unsubscribe("/topic/a")
	srv.push("/topic/a", "{}")

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestMux_ReconnectReplaysTopics(t *testing.T) {
	srv := newStompServer(t)
	m := newTestMux(srv, "")
	defer m.Disconnect()

	var mu sync.Mutex
	var got []any
	m.Subscribe("/topic/test-progress", func(payload any) {
		mu.Lock()
		got = append(got, payload)
		mu.Unlock()
	})
	waitFor(t, func() bool { return m.Status() == Connected }, "initial connect")

	connectsBefore := func() int { srv.mu.Lock(); defer srv.mu.Unlock(); return srv.connects }()
	srv.kill()

	waitFor(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return srv.connects > connectsBefore
	}, "reconnect")
	waitFor(t, func() bool { return m.Status() == Connected }, "reconnected status")
	waitFor(t, func() bool { return len(srv.subscribedTopics()) == 1 }, "replayed subscription")

	srv.push("/topic/test-progress", `{"runId":"r2"}`)
	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return len(got) == 1 }, "post-reconnect delivery")
}

func TestMux_DisconnectClearsSubscriptionsAndResubscribeReconnects(t *testing.T) {
	srv := newStompServer(t)
	m := newTestMux(srv, "")

	m.Subscribe("/topic/a", func(any) {})
	waitFor(t, func() bool { return m.Status() == Connected }, "connect")

	m.Disconnect()
	assert.Equal(t, Disconnected, m.Status())

	// A fresh subscribe transparently reconnects.
	m.Subscribe("/topic/b", func(any) {})
	defer m.Disconnect()
	waitFor(t, func() bool { return m.Status() == Connected }, "reconnect after disconnect")
	waitFor(t, func() bool {
		for _, topic := range srv.subscribedTopics() {
			if topic == "/topic/b" {
				return true
			}
		}
		return false
	}, "new subscription")
}

func TestMux_DialFailureRetries(t *testing.T) {
	srv := newStompServer(t)
	srv.mu.Lock()
	srv.dropNext = true
	srv.mu.Unlock()

	m := newTestMux(srv, "")
	defer m.Disconnect()

	m.Subscribe("/topic/a", func(any) {})

	// First attempt is dropped before the handshake; the fixed-delay
	// retry must land the second one.
	waitFor(t, func() bool { return m.Status() == Connected }, "retry connect")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
}

package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"risk_monitor/internal/domain/entity"
	"risk_monitor/internal/infrastructure/configloader"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{}

// wsServer runs the given script against every incoming connection.
func wsServer(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestChannel(url string, intervalMs int64, maxAttempts int) *Channel {
	return NewChannel(configloader.ChannelConfig{
		URL:                  url,
		ReconnectIntervalMs:  intervalMs,
		MaxReconnectAttempts: maxAttempts,
		HandshakeTimeoutMs:   1000,
	}, zap.NewNop())
}

type messageRecorder struct {
	mu       sync.Mutex
	messages []entity.ChannelMessage
}

func (r *messageRecorder) handle(msg entity.ChannelMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *messageRecorder) snapshot() []entity.ChannelMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.ChannelMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

type stateRecorder struct {
	mu     sync.Mutex
	states []entity.ChannelState
	last   int
}

func (r *stateRecorder) handle(state entity.ChannelState, attempt int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	r.last = attempt
}

func (r *stateRecorder) saw(want entity.ChannelState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s == want {
			return true
		}
	}
	return false
}

func (r *stateRecorder) lastAttempt() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func TestDeliveryPreservesOrder(t *testing.T) {
	frames := []string{
		`{"type":"rate_update","data":{"from":"CELO","to":"cUSD","rate":0.5}}`,
		`{"type":"rate_update","data":{"from":"CELO","to":"cUSD","rate":0.51}}`,
		`{"type":"notification","data":{"title":"t1"}}`,
		`{"type":"rate_update","data":{"from":"CELO","to":"cUSD","rate":0.52}}`,
		`{"type":"notification","data":{"title":"t2"}}`,
	}

	done := make(chan struct{})
	srv := wsServer(t, func(conn *websocket.Conn) {
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		<-done
	})
	defer close(done)

	recorder := &messageRecorder{}
	channel := newTestChannel(wsURL(srv), 10, 3)
	channel.Subscribe(recorder.handle)
	require.NoError(t, channel.Connect())
	defer channel.Close()

	require.Eventually(t, func() bool {
		return len(recorder.snapshot()) == len(frames)
	}, 2*time.Second, 10*time.Millisecond)

	got := recorder.snapshot()
	wantTypes := []string{"rate_update", "rate_update", "notification", "rate_update", "notification"}
	for i, msg := range got {
		assert.Equal(t, wantTypes[i], msg.Type, "index %d", i)
	}
}

func TestMalformedFrameIsDroppedWithoutTeardown(t *testing.T) {
	done := make(chan struct{})
	srv := wsServer(t, func(conn *websocket.Conn) {
		frames := []string{
			`{"type":"notification","data":{"title":"before"}}`,
			`this is not json`,
			`{"missing":"type field"}`,
			`{"type":"notification","data":{"title":"after"}}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		<-done
	})
	defer close(done)

	recorder := &messageRecorder{}
	channel := newTestChannel(wsURL(srv), 10, 3)
	channel.Subscribe(recorder.handle)
	require.NoError(t, channel.Connect())
	defer channel.Close()

	require.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	got := recorder.snapshot()
	assert.Equal(t, "notification", got[0].Type)
	assert.Equal(t, "notification", got[1].Type)
	assert.Equal(t, entity.ChannelOpen, channel.State(), "bad frames never tear the channel down")
}

func TestReconnectExhaustionIsTerminal(t *testing.T) {
	// A server that is already gone: every dial fails immediately.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := wsURL(srv)
	srv.Close()

	const maxAttempts = 3
	states := &stateRecorder{}
	channel := newTestChannel(url, 10, maxAttempts)
	channel.OnStateChange(states.handle)
	require.NoError(t, channel.Connect())

	require.Eventually(t, func() bool {
		return channel.State() == entity.ChannelFailed
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, maxAttempts, states.lastAttempt(), "failure reports the attempt cap")
	assert.True(t, states.saw(entity.ChannelConnecting))

	// Terminal: the state stays Failed, nothing keeps retrying.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, entity.ChannelFailed, channel.State())
}

func TestReconnectAfterDrop(t *testing.T) {
	var connCount int
	var mu sync.Mutex
	done := make(chan struct{})

	srv := wsServer(t, func(conn *websocket.Conn) {
		mu.Lock()
		connCount++
		first := connCount == 1
		mu.Unlock()
		if first {
			// Drop the first connection right away to force a reconnect.
			return
		}
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"notification","data":{"title":"back"}}`))
		<-done
	})
	defer close(done)

	recorder := &messageRecorder{}
	channel := newTestChannel(wsURL(srv), 10, 5)
	channel.Subscribe(recorder.handle)
	require.NoError(t, channel.Connect())
	defer channel.Close()

	require.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, entity.ChannelOpen, channel.State())
	assert.GreaterOrEqual(t, channel.Generation(), int64(2), "each successful open bumps the generation")
}

func TestSendIsNoOpWhenNotOpen(t *testing.T) {
	channel := newTestChannel("ws://127.0.0.1:1/never", 10, 1)

	err := channel.Send(map[string]string{"type": "ping"})
	assert.NoError(t, err, "sending on an idle channel is a warned no-op")
}

func TestSendRoundTrip(t *testing.T) {
	received := make(chan []byte, 1)
	done := make(chan struct{})
	srv := wsServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- data
		}
		<-done
	})
	defer close(done)

	channel := newTestChannel(wsURL(srv), 10, 3)
	require.NoError(t, channel.Connect())
	defer channel.Close()

	require.Eventually(t, func() bool {
		return channel.State() == entity.ChannelOpen
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, channel.Send(map[string]string{"type": "subscribe", "topic": "rates"}))

	select {
	case data := <-received:
		assert.Contains(t, string(data), `"topic":"rates"`)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the outbound message")
	}
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := wsURL(srv)
	srv.Close()

	states := &stateRecorder{}
	channel := newTestChannel(url, 50, 100)
	channel.OnStateChange(states.handle)
	require.NoError(t, channel.Connect())

	// Teardown while the reconnect timer is pending.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, channel.Close())

	assert.Equal(t, entity.ChannelClosed, channel.State())

	// The cancelled timer must not fire another attempt or a Failed transition.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, entity.ChannelClosed, channel.State())
	assert.False(t, states.saw(entity.ChannelFailed))
}

func TestConnectAfterCloseFails(t *testing.T) {
	channel := newTestChannel("ws://127.0.0.1:1/never", 10, 1)
	require.NoError(t, channel.Close())

	err := channel.Connect()
	assert.ErrorIs(t, err, entity.ErrTransportError)
}

package realtime

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"
	"risk_monitor/internal/infrastructure/configloader"
	"risk_monitor/internal/pkg/metrics"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Channel implements port.RealtimeChannel over a websocket transport.
//
// Reconnection uses a fixed interval between attempts, capped at a maximum
// attempt count; exhausting the cap moves the channel to the terminal Failed
// state instead of retrying silently forever. Messages are dispatched to
// subscribers synchronously from the read loop, so within one transport
// session delivery order equals arrival order. Across a reconnect no ordering
// guarantee holds; Generation lets consumers detect the gap.
type Channel struct {
	url               string
	reconnectInterval time.Duration
	maxAttempts       int
	handshakeTimeout  time.Duration
	logger            *zap.Logger

	conn    *websocket.Conn
	connMu  sync.RWMutex
	writeMu sync.Mutex

	state      int32 // entity.ChannelState
	attempts   int32
	generation int64

	closeChan chan struct{}
	closeOnce sync.Once

	handlers      []port.MessageHandler
	stateHandlers []port.StateHandler
}

// NewChannel creates a channel for the given configuration. Subscribe and
// OnStateChange must be called before Connect.
func NewChannel(cfg configloader.ChannelConfig, logger *zap.Logger) *Channel {
	return &Channel{
		url:               cfg.URL,
		reconnectInterval: time.Duration(cfg.ReconnectIntervalMs) * time.Millisecond,
		maxAttempts:       cfg.MaxReconnectAttempts,
		handshakeTimeout:  time.Duration(cfg.HandshakeTimeoutMs) * time.Millisecond,
		logger:            logger.Named("RealtimeChannel"),
		closeChan:         make(chan struct{}),
	}
}

// Subscribe registers a handler for inbound messages.
func (c *Channel) Subscribe(h port.MessageHandler) {
	c.handlers = append(c.handlers, h)
}

// OnStateChange registers a state transition listener.
func (c *Channel) OnStateChange(h port.StateHandler) {
	c.stateHandlers = append(c.stateHandlers, h)
}

// State returns the current channel state.
func (c *Channel) State() entity.ChannelState {
	return entity.ChannelState(atomic.LoadInt32(&c.state))
}

// Generation returns the number of successful opens. A consumer that cached
// the value before a reconnect can compare it to detect a potential gap and
// request a fresh snapshot from the data source.
func (c *Channel) Generation() int64 {
	return atomic.LoadInt64(&c.generation)
}

func (c *Channel) setState(s entity.ChannelState) {
	atomic.StoreInt32(&c.state, int32(s))
	metrics.ChannelState.Set(float64(s))
	attempt := int(atomic.LoadInt32(&c.attempts))
	for _, h := range c.stateHandlers {
		h(s, attempt)
	}
}

// Connect establishes the transport. A failed first dial is handled the same
// way as a dropped connection: the reconnect loop takes over and the outcome
// is surfaced through the state listener, so Connect only errors when the
// channel was already closed.
func (c *Channel) Connect() error {
	select {
	case <-c.closeChan:
		return fmt.Errorf("%w: channel is closed", entity.ErrTransportError)
	default:
	}

	c.setState(entity.ChannelConnecting)

	if err := c.dial(); err != nil {
		c.logger.Warn("Initial connect failed, scheduling reconnect",
			zap.String("url", c.url), zap.Error(err))
		go c.reconnectLoop()
		return nil
	}

	c.markOpen()
	return nil
}

func (c *Channel) dial() error {
	dialer := websocket.Dialer{HandshakeTimeout: c.handshakeTimeout}
	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

func (c *Channel) markOpen() {
	atomic.StoreInt32(&c.attempts, 0)
	atomic.AddInt64(&c.generation, 1)
	c.setState(entity.ChannelOpen)

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	go c.readPump(conn)
	c.logger.Info("Channel open", zap.String("url", c.url),
		zap.Int64("generation", c.Generation()))
}

// readPump delivers messages in arrival order until the transport drops.
func (c *Channel) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(err)
			return
		}
		c.dispatch(data)
	}
}

// dispatch parses one frame and hands it to every subscriber. A frame that
// fails to parse is dropped with an observable error; it never interrupts the
// stream or tears the channel down.
func (c *Channel) dispatch(data []byte) {
	var msg entity.ChannelMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		metrics.ChannelMalformedTotal.Inc()
		c.logger.Warn("Dropping malformed channel message",
			zap.ByteString("frame", data), zap.Error(err))
		return
	}

	metrics.ChannelMessagesTotal.Inc()
	for _, h := range c.handlers {
		h(msg)
	}
}

func (c *Channel) handleClose(err error) {
	select {
	case <-c.closeChan:
		// Deliberate teardown; Close already owns the shutdown.
		return
	default:
	}

	c.logger.Warn("Channel transport dropped", zap.Error(err))
	c.closeConn()
	c.setState(entity.ChannelConnecting)
	go c.reconnectLoop()
}

// reconnectLoop retries with a fixed interval until a dial succeeds, the
// attempt cap is hit, or the channel is closed. The pending timer is always
// cancelled by teardown via closeChan.
func (c *Channel) reconnectLoop() {
	for {
		attempt := int(atomic.AddInt32(&c.attempts, 1))
		if attempt > c.maxAttempts {
			atomic.StoreInt32(&c.attempts, int32(c.maxAttempts))
			c.logger.Error("Reconnect attempts exhausted",
				zap.Int("maxAttempts", c.maxAttempts))
			c.setState(entity.ChannelFailed)
			return
		}

		metrics.ChannelReconnectsTotal.Inc()
		c.logger.Info("Reconnecting",
			zap.Duration("interval", c.reconnectInterval),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", c.maxAttempts))

		timer := time.NewTimer(c.reconnectInterval)
		select {
		case <-c.closeChan:
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := c.dial(); err != nil {
			c.logger.Warn("Reconnect attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		c.markOpen()
		return
	}
}

// Send writes an outbound message while the channel is open. When it is not,
// the message is discarded with a warning: nothing is queued for later
// delivery across reconnects.
func (c *Channel) Send(v interface{}) error {
	if c.State() != entity.ChannelOpen {
		c.logger.Warn("Send skipped, channel not open",
			zap.String("state", c.State().String()))
		return nil
	}

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil {
		c.logger.Warn("Send skipped, no active transport")
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: write: %v", entity.ErrTransportError, err)
	}
	return nil
}

// Close tears the channel down. closeChan is closed first so a pending
// reconnect timer cannot resurrect the session after the transport is gone.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeChan)
	})
	c.setState(entity.ChannelClosed)
	c.closeConn()
	return nil
}

func (c *Channel) closeConn() {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

var _ port.RealtimeChannel = (*Channel)(nil)

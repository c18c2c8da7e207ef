package port

import "risk_monitor/internal/domain/entity"

// MessageHandler receives channel messages in arrival order. Handlers run on
// the channel's read loop, so they must not block.
type MessageHandler func(msg entity.ChannelMessage)

// StateHandler is notified on every channel state transition.
type StateHandler func(state entity.ChannelState, attempt int)

// RealtimeChannel defines the reconnecting duplex message channel consumed by
// the subscription facades and the API layer.
type RealtimeChannel interface {
	// Connect establishes the transport and starts delivering messages.
	Connect() error

	// Send writes an outbound message while the channel is open. When the
	// channel is not open it logs a warning and returns nil: messages are
	// never queued across reconnects.
	Send(v interface{}) error

	// Subscribe registers a handler for inbound messages. All registrations
	// must happen before Connect.
	Subscribe(h MessageHandler)

	// OnStateChange registers a state transition listener. Must be called
	// before Connect.
	OnStateChange(h StateHandler)

	// State returns the current channel state.
	State() entity.ChannelState

	// Close tears the channel down, cancelling any pending reconnect timer
	// before closing the active transport.
	Close() error
}

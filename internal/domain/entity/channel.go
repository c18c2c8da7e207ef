package entity

// ChannelState describes the lifecycle state of the realtime channel.
type ChannelState int32

const (
	ChannelIdle ChannelState = iota
	ChannelConnecting
	ChannelOpen
	ChannelClosed
	// ChannelFailed is terminal: the reconnect attempt cap was exhausted and
	// the channel will not retry on its own.
	ChannelFailed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelIdle:
		return "idle"
	case ChannelConnecting:
		return "connecting"
	case ChannelOpen:
		return "open"
	case ChannelClosed:
		return "closed"
	case ChannelFailed:
		return "failed"
	default:
		return "unknown"
	}
}

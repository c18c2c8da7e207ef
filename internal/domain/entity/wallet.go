package entity

// SessionState describes the lifecycle state of a wallet session.
type SessionState int

const (
	// SessionDisconnected means no signer is attached.
	SessionDisconnected SessionState = iota
	// SessionConnecting means an access request to the provider is in flight.
	SessionConnecting
	// SessionConnected means a signer is attached and an address is known.
	SessionConnected
	// SessionError means the last connect attempt failed; no connection is retained.
	SessionError
)

func (s SessionState) String() string {
	switch s {
	case SessionDisconnected:
		return "disconnected"
	case SessionConnecting:
		return "connecting"
	case SessionConnected:
		return "connected"
	case SessionError:
		return "error"
	default:
		return "unknown"
	}
}

// WalletIdentity represents who is connected and with which address.
// Address is empty whenever Connected is false; invalid addresses are never stored.
type WalletIdentity struct {
	Address   string `json:"address,omitempty"`
	Connected bool   `json:"connected"`
}

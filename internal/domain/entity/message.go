package entity

import "encoding/json"

// ChannelMessage is a single typed frame received from the realtime channel.
// Data is kept opaque here; facades decode it into the payload they expect.
type ChannelMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// Known message types pushed by the data source. Unknown types are ignored by
// subscribers so the source can add new ones without breaking old clients.
const (
	MessageTypeAggregateStats = "aggregate_stats"
	MessageTypePositionUpdate = "position_update"
	MessageTypeRateUpdate     = "rate_update"
	MessageTypeNewTransaction = "new_transaction"
	MessageTypeNotification   = "notification"
)

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors for the synchronization layer. Registered once from main via
// MustRegisterMetrics; infrastructure packages update them directly.
var (
	ChannelMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channel_messages_total",
		Help: "Number of well-formed messages delivered by the realtime channel.",
	})

	ChannelMalformedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channel_malformed_messages_total",
		Help: "Number of inbound frames dropped because they failed to parse.",
	})

	ChannelReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channel_reconnect_attempts_total",
		Help: "Number of reconnect attempts made by the realtime channel.",
	})

	ChannelState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "channel_state",
		Help: "Current channel state (0=idle 1=connecting 2=open 3=closed 4=failed).",
	})

	WalletPollErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wallet_poll_errors_total",
		Help: "Number of failed wallet account poll ticks.",
	})

	WalletConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wallet_connected",
		Help: "Whether a wallet session is currently connected (0 or 1).",
	})
)

// MustRegisterMetrics registers all collectors with the default registry.
// Panics on duplicate registration, which indicates a wiring bug.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		ChannelMessagesTotal,
		ChannelMalformedTotal,
		ChannelReconnectsTotal,
		ChannelState,
		WalletPollErrorsTotal,
		WalletConnected,
	)
}

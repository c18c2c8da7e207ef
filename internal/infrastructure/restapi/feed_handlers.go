package restapi

import (
	"net/http"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIVaultFeedResponse is the response envelope for the vault feed endpoint.
type APIVaultFeedResponse struct {
	Data struct {
		Stats        *entity.AggregateStats    `json:"stats,omitempty"`
		Transactions []entity.TransactionEvent `json:"transactions"`
		ChannelState string                    `json:"channelState"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// APINotificationsResponse is the response envelope for notifications.
type APINotificationsResponse struct {
	Data struct {
		Notifications []entity.Notification `json:"notifications"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// FeedHandler handles HTTP requests for the subscription facades.
type FeedHandler struct {
	vault   port.VaultFeed
	notes   port.NotificationFeed
	channel port.RealtimeChannel
	logger  port.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(vault port.VaultFeed, notes port.NotificationFeed, channel port.RealtimeChannel, logger port.Logger) *FeedHandler {
	return &FeedHandler{
		vault:   vault,
		notes:   notes,
		channel: channel,
		logger:  logger,
	}
}

// GetVaultFeedHandler returns the latest aggregate stats and recent
// transactions together with the channel state, so the client can tell live
// data from a channel that has failed and stopped retrying.
func (h *FeedHandler) GetVaultFeedHandler(c *gin.Context) {
	var response APIVaultFeedResponse
	response.Data.ChannelState = h.channel.State().String()
	response.Data.Transactions = h.vault.RecentTransactions()

	if stats, ok := h.vault.LatestStats(); ok {
		response.Data.Stats = &stats
	}

	if h.channel.State() == entity.ChannelFailed {
		response.StatusMessage = "Realtime channel failed; data may be outdated. Reconnect required."
	} else {
		response.StatusMessage = "Vault feed retrieved successfully."
	}

	c.JSON(http.StatusOK, response)
}

// GetNotificationsHandler returns buffered notifications, most recent first.
func (h *FeedHandler) GetNotificationsHandler(c *gin.Context) {
	var response APINotificationsResponse
	response.Data.Notifications = h.notes.Recent()
	response.StatusMessage = "Notifications retrieved successfully."

	c.JSON(http.StatusOK, response)
}

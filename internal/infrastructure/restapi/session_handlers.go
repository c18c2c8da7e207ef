package restapi

import (
	"net/http"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"
	"risk_monitor/internal/infrastructure/configloader"

	"github.com/gin-gonic/gin"
)

// APISessionResponse is the response envelope for session endpoints.
type APISessionResponse struct {
	Data struct {
		State    string                `json:"state"`
		Identity entity.WalletIdentity `json:"identity"`
		Error    string                `json:"error,omitempty"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// SessionHandler handles HTTP requests for the wallet session.
type SessionHandler struct {
	session port.WalletSession
	cfg     *configloader.Config
	logger  port.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(session port.WalletSession, cfg *configloader.Config, logger port.Logger) *SessionHandler {
	return &SessionHandler{
		session: session,
		cfg:     cfg,
		logger:  logger,
	}
}

// GetSessionHandler returns the current session state and identity.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	state, lastErr := h.session.State()

	var response APISessionResponse
	response.Data.State = state.String()
	response.Data.Identity = h.session.Identity()
	response.Data.Error = lastErr
	response.StatusMessage = "Session state retrieved."

	c.JSON(http.StatusOK, response)
}

// ConnectHandler requests wallet access through the provider.
func (h *SessionHandler) ConnectHandler(c *gin.Context) {
	err := h.session.Connect(c.Request.Context())

	var response APISessionResponse
	state, lastErr := h.session.State()
	response.Data.State = state.String()
	response.Data.Identity = h.session.Identity()
	response.Data.Error = lastErr

	if err != nil {
		// Connection errors keep a retry affordance on the client side; the
		// envelope carries the reason instead of a bare 5xx.
		response.StatusMessage = "Wallet connection failed. Retry is possible."
		c.JSON(http.StatusBadGateway, response)
		return
	}

	response.StatusMessage = "Wallet connected."
	c.JSON(http.StatusOK, response)
}

// DisconnectHandler tears the session down locally.
func (h *SessionHandler) DisconnectHandler(c *gin.Context) {
	h.session.Disconnect()

	var response APISessionResponse
	state, _ := h.session.State()
	response.Data.State = state.String()
	response.Data.Identity = h.session.Identity()
	response.StatusMessage = "Wallet disconnected."

	c.JSON(http.StatusOK, response)
}

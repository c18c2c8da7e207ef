package restapi

import (
	"net/http"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"
	"risk_monitor/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// APIRiskResponse is the response envelope for risk endpoints. Available is
// false when no wallet is connected or no data exists yet: the display must
// degrade to an explicit "unavailable" state, never to a default number that
// could be mistaken for current risk.
type APIRiskResponse struct {
	Data struct {
		Available     bool                  `json:"available"`
		Address       string                `json:"address,omitempty"`
		WorstTier     string                `json:"worstTier,omitempty"`
		Positions     []entity.PositionRisk `json:"positions,omitempty"`
		HealthDisplay string                `json:"healthDisplay,omitempty"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// RiskHandler handles HTTP requests for position risk.
type RiskHandler struct {
	session port.WalletSession
	risk    port.RiskView
	logger  port.Logger
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(session port.WalletSession, risk port.RiskView, logger port.Logger) *RiskHandler {
	return &RiskHandler{
		session: session,
		risk:    risk,
		logger:  logger,
	}
}

// GetPositionsHandler returns the derived risk for every position of the
// connected address.
func (h *RiskHandler) GetPositionsHandler(c *gin.Context) {
	identity := h.session.Identity()

	var response APIRiskResponse
	if !identity.Connected {
		response.StatusMessage = "No wallet connected. Position risk is unavailable."
		c.JSON(http.StatusOK, response)
		return
	}

	positions := h.risk.PositionsFor(identity.Address)
	response.Data.Available = true
	response.Data.Address = identity.Address
	response.Data.Positions = positions
	if len(positions) == 0 {
		response.StatusMessage = "No positions found for the connected address."
	} else {
		response.StatusMessage = "Positions retrieved successfully."
	}

	c.JSON(http.StatusOK, response)
}

// GetSummaryHandler returns the worst tier across the connected address's
// positions plus the per-position breakdown.
func (h *RiskHandler) GetSummaryHandler(c *gin.Context) {
	identity := h.session.Identity()

	var response APIRiskResponse
	if !identity.Connected {
		response.StatusMessage = "No wallet connected. Risk summary is unavailable."
		c.JSON(http.StatusOK, response)
		return
	}

	worst, positions := h.risk.SummaryFor(identity.Address)
	response.Data.Available = true
	response.Data.Address = identity.Address
	response.Data.WorstTier = worst.String()
	response.Data.Positions = positions

	if len(positions) > 0 {
		// Surface the weakest position's health prominently for the header bar.
		weakest := positions[0]
		for _, p := range positions[1:] {
			if p.Tier.Rank() > weakest.Tier.Rank() {
				weakest = p
			}
		}
		response.Data.HealthDisplay = utils.FormatHealthFactor(weakest.HealthFactor)
	}

	response.StatusMessage = "Risk summary retrieved successfully."
	c.JSON(http.StatusOK, response)
}

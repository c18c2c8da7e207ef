package restapi

import (
	"net/http"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIRegistryResponse is the response envelope for registry endpoints.
type APIRegistryResponse struct {
	Data struct {
		Currencies []entity.CurrencyInfo      `json:"currencies,omitempty"`
		Pairs      []entity.LendingPairConfig `json:"pairs,omitempty"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// RegistryHandler handles HTTP requests for the static currency registry.
type RegistryHandler struct {
	registry port.CurrencyRegistry
	logger   port.Logger
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(registry port.CurrencyRegistry, logger port.Logger) *RegistryHandler {
	return &RegistryHandler{
		registry: registry,
		logger:   logger,
	}
}

// GetCurrenciesHandler returns every known currency.
func (h *RegistryHandler) GetCurrenciesHandler(c *gin.Context) {
	var response APIRegistryResponse
	response.Data.Currencies = h.registry.Currencies()
	response.StatusMessage = "Currencies retrieved successfully."

	c.JSON(http.StatusOK, response)
}

// GetPairsHandler returns every configured lending pair.
func (h *RegistryHandler) GetPairsHandler(c *gin.Context) {
	var response APIRegistryResponse
	response.Data.Pairs = h.registry.Pairs()
	response.StatusMessage = "Lending pairs retrieved successfully."

	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freightdesk/quote/internal/pricing"
	"freightdesk/quote/internal/services"
)

// RestConfigHandler handles requests for the /offer-configuration REST endpoint.
type RestConfigHandler struct {
	configService services.IOfferConfigService
}

// NewRestConfigHandler creates a new RestConfigHandler.
func NewRestConfigHandler(configService services.IOfferConfigService) *RestConfigHandler {
	return &RestConfigHandler{configService: configService}
}

// GetConfiguration returns the pricing configuration and kill switch.
// Handles GET /v1/offer-configuration
func (h *RestConfigHandler) GetConfiguration(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve configuration"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfiguration applies a partial update.
// Handles PUT /v1/offer-configuration
func (h *RestConfigHandler) UpdateConfiguration(c *gin.Context) {
	var patch services.OfferConfigurationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if patch.IsEnabled == nil && patch.Rate == nil && patch.ProfitMargin == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	cfg, err := h.configService.Update(c.Request.Context(), patch)
	if err != nil {
		if errors.Is(err, pricing.ErrMalformedPercentage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update configuration"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

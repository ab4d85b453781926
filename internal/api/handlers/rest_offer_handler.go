package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"freightdesk/quote/internal/services"
)

// RestOfferHandler serves read access to offers.
type RestOfferHandler struct {
	offerService services.IOfferService
}

// NewRestOfferHandler creates a new RestOfferHandler.
func NewRestOfferHandler(offerService services.IOfferService) *RestOfferHandler {
	return &RestOfferHandler{offerService: offerService}
}

// GetOffer returns one offer by its current or previous offer number.
// Handles GET /v1/offers/:offerNo
func (h *RestOfferHandler) GetOffer(c *gin.Context) {
	offerNo := strings.ToUpper(strings.TrimSpace(c.Param("offerNo")))
	offer, err := h.offerService.FindByOfferNo(c.Request.Context(), offerNo)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve offer"})
		return
	}
	c.JSON(http.StatusOK, offer)
}

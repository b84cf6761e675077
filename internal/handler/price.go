package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPrices godoc
// @Summary      Get current prices for all tracked assets
// @Description  Returns the latest quote per symbol; unavailable quotes carry a placeholder price
// @Tags         prices
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/prices [get]
func (h *Handler) GetPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-prices")
	defer span.End()

	quotes := h.prices.GetQuotes(ctx)
	c.JSON(http.StatusOK, gin.H{"prices": quotes})
}

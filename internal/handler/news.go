package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetNews godoc
// @Summary      Get aggregated crypto news
// @Description  Returns up to 20 items from the last 24 hours, newest first
// @Tags         news
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	items := h.news.Aggregate(ctx)
	span.SetAttributes(attribute.Int("news.count", len(items)))

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// PreviewDigest godoc
// @Summary      Preview the scheduled digest
// @Description  Renders the digest the scheduler would send right now; empty when outside the send window or nothing is fresh enough
// @Tags         news
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/digest/preview [get]
func (h *Handler) PreviewDigest(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.preview-digest")
	defer span.End()

	text := h.digest.Compose(ctx)
	c.JSON(http.StatusOK, gin.H{
		"would_send": text != "",
		"text":       text,
	})
}

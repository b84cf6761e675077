package handler

import (
	"context"

	"crypto-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// PriceReader supplies the current quote snapshot.
type PriceReader interface {
	GetQuotes(ctx context.Context) map[string]*domain.PriceQuote
}

// NewsReader supplies the aggregated headline list.
type NewsReader interface {
	Aggregate(ctx context.Context) []domain.NewsItem
}

// DigestComposer renders the scheduled digest text without sending it.
type DigestComposer interface {
	Compose(ctx context.Context) string
}

type Handler struct {
	tracer trace.Tracer
	prices PriceReader
	news   NewsReader
	digest DigestComposer
}

func New(tracer trace.Tracer, prices PriceReader, news NewsReader, digest DigestComposer) *Handler {
	return &Handler{
		tracer: tracer,
		prices: prices,
		news:   news,
		digest: digest,
	}
}

// RegisterRoutes wires the public health probe and the key-protected
// API group. An empty apiKey disables auth.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/prices", h.GetPrices)
	api.GET("/news", h.GetNews)
	api.GET("/digest/preview", h.PreviewDigest)
}

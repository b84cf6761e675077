package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"crypto-pulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const priceCacheTTL = 90 * time.Second

// PriceProvider is the market-data boundary.
type PriceProvider interface {
	FetchPrices(ctx context.Context) (map[string]*domain.PriceQuote, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// PriceService wraps the provider with an optional short-lived cache and
// an all-placeholder degradation path. It never returns an error: any
// provider failure is logged and converted into unavailable quotes, so
// callers always get a complete symbol mapping.
type PriceService struct {
	tracer   trace.Tracer
	provider PriceProvider
	redis    RedisClient
}

func NewPriceService(tracer trace.Tracer, provider PriceProvider, redisClient RedisClient) *PriceService {
	return &PriceService{
		tracer:   tracer,
		provider: provider,
		redis:    redisClient,
	}
}

// GetQuotes returns the current quote for every supported symbol.
// Served from cache when every symbol is fresh; otherwise one provider
// call refreshes all of them. Symbols the provider could not price come
// back as unavailable placeholders.
func (s *PriceService) GetQuotes(ctx context.Context) map[string]*domain.PriceQuote {
	_, span := s.tracer.Start(ctx, "price-service.get-quotes")
	defer span.End()

	if cached := s.allCached(ctx); cached != nil {
		return cached
	}

	fetched, err := s.provider.FetchPrices(ctx)
	if err != nil {
		log.Printf("price fetch failed, serving placeholders: %v", truncateErr(err))
		return domain.UnavailableQuotes()
	}

	quotes := domain.UnavailableQuotes()
	for sym, q := range fetched {
		quotes[sym] = q
		if s.redis != nil {
			if err := s.setQuoteCache(ctx, q); err != nil {
				log.Printf("redis cache write error for %s: %v", sym, err)
			}
		}
	}
	return quotes
}

func (s *PriceService) allCached(ctx context.Context) map[string]*domain.PriceQuote {
	if s.redis == nil {
		return nil
	}
	quotes := make(map[string]*domain.PriceQuote, len(domain.SupportedSymbols))
	for _, sym := range domain.SupportedSymbols {
		q, err := s.getQuoteCache(ctx, sym)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
			return nil
		}
		if q == nil {
			return nil
		}
		quotes[sym] = q
	}
	return quotes
}

func (s *PriceService) setQuoteCache(ctx context.Context, quote *domain.PriceQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, "quote:"+quote.Symbol, data, priceCacheTTL).Err()
}

func (s *PriceService) getQuoteCache(ctx context.Context, symbol string) (*domain.PriceQuote, error) {
	data, err := s.redis.Get(ctx, "quote:"+symbol).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quote domain.PriceQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// truncateErr keeps upstream error bodies out of the logs past a point.
func truncateErr(err error) string {
	msg := err.Error()
	if len(msg) > 200 {
		return msg[:200]
	}
	return msg
}

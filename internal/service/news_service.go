package service

import (
	"context"
	"log"
	"sync"
	"time"

	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// FeedSource is one named RSS feed to aggregate.
type FeedSource struct {
	Name string
	URL  string
}

// AggregatorReader is the CryptoPanic boundary.
type AggregatorReader interface {
	FetchHot(ctx context.Context, cutoff time.Time) ([]domain.NewsItem, error)
}

// FeedReader is the RSS boundary.
type FeedReader interface {
	FetchFeed(ctx context.Context, sourceName, feedURL string, cutoff time.Time) ([]domain.NewsItem, error)
}

// NewsService merges the aggregator API and the configured RSS feeds into
// one recency-filtered, sorted, bounded headline list. Each source is its
// own failure boundary: a failing source contributes zero items and is
// logged, never propagated.
type NewsService struct {
	tracer     trace.Tracer
	aggregator AggregatorReader
	rss        FeedReader
	feeds      []FeedSource
}

func NewNewsService(tracer trace.Tracer, aggregator AggregatorReader, rss FeedReader, feeds []FeedSource) *NewsService {
	return &NewsService{
		tracer:     tracer,
		aggregator: aggregator,
		rss:        rss,
		feeds:      feeds,
	}
}

// Aggregate fetches all sources, filters to the 24h window, sorts
// newest-first and truncates to MaxDigestItems. Returns an empty list if
// every source fails.
func (s *NewsService) Aggregate(ctx context.Context) []domain.NewsItem {
	_, span := s.tracer.Start(ctx, "news-service.aggregate")
	defer span.End()

	now := time.Now().UTC()
	cutoff := now.Add(-domain.AggregationWindow)

	type sourceResult struct {
		name  string
		items []domain.NewsItem
		err   error
	}

	results := make(chan sourceResult)
	var wg sync.WaitGroup

	if s.aggregator != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := s.aggregator.FetchHot(ctx, cutoff)
			results <- sourceResult{name: "CryptoPanic", items: items, err: err}
		}()
	}
	if s.rss != nil {
		for _, feed := range s.feeds {
			wg.Add(1)
			go func(feed FeedSource) {
				defer wg.Done()
				items, err := s.rss.FetchFeed(ctx, feed.Name, feed.URL, cutoff)
				results <- sourceResult{name: feed.Name, items: items, err: err}
			}(feed)
		}
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var merged []domain.NewsItem
	for res := range results {
		if res.err != nil {
			log.Printf("news source %s failed: %v", res.name, truncateErr(res.err))
			continue
		}
		for _, item := range res.items {
			// Providers already filter, but the window invariant is
			// enforced here regardless of source behavior.
			if item.PublishedAt.Before(cutoff) {
				continue
			}
			merged = append(merged, item)
		}
	}

	domain.SortNewsDesc(merged)
	if len(merged) > domain.MaxDigestItems {
		merged = merged[:domain.MaxDigestItems]
	}
	return merged
}

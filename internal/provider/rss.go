package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crypto-pulse/internal/domain"

	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/otel/trace"
)

// RSSProvider fetches and parses a single RSS/Atom feed.
type RSSProvider struct {
	client *http.Client
	parser *gofeed.Parser
	tracer trace.Tracer
}

func NewRSSProvider(tracer trace.Tracer) *RSSProvider {
	return &RSSProvider{
		client: &http.Client{Timeout: 10 * time.Second},
		parser: gofeed.NewParser(),
		tracer: tracer,
	}
}

// FetchFeed returns entries from the feed published after the cutoff,
// labeled with the given source name. Entries without a parsable publish
// date are excluded rather than assumed recent.
func (p *RSSProvider) FetchFeed(ctx context.Context, sourceName, feedURL string, cutoff time.Time) ([]domain.NewsItem, error) {
	_, span := p.tracer.Start(ctx, "rss.fetch-feed")
	defer span.End()

	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("feed url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rss fetch error %d: %s", resp.StatusCode, string(body))
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", sourceName, err)
	}

	items := make([]domain.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil || entry.PublishedParsed == nil {
			continue
		}
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		publishedAt := entry.PublishedParsed.UTC()
		if publishedAt.Before(cutoff) {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			Link:        strings.TrimSpace(entry.Link),
			Source:      sourceName,
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}

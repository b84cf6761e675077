package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const cryptoPanicBaseURL = "https://cryptopanic.com/api/v1"

// CryptoPanicProvider fetches hot posts from the CryptoPanic aggregator API.
type CryptoPanicProvider struct {
	client  *http.Client
	baseURL string
	token   string
	tracer  trace.Tracer
}

func NewCryptoPanicProvider(tracer trace.Tracer, token string) *CryptoPanicProvider {
	return &CryptoPanicProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: cryptoPanicBaseURL,
		token:   token,
		tracer:  tracer,
	}
}

// FetchHot returns hot posts published after the cutoff. Posts missing a
// title, URL, or parsable timestamp are skipped without failing the batch.
func (p *CryptoPanicProvider) FetchHot(ctx context.Context, cutoff time.Time) ([]domain.NewsItem, error) {
	_, span := p.tracer.Start(ctx, "cryptopanic.fetch-hot")
	defer span.End()

	if strings.TrimSpace(p.token) == "" {
		return nil, fmt.Errorf("cryptopanic auth token is required")
	}

	u := fmt.Sprintf("%s/posts/?auth_token=%s&filter=hot",
		strings.TrimRight(p.baseURL, "/"), url.QueryEscape(p.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cryptopanic API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Results []struct {
			Title       string         `json:"title"`
			URL         string         `json:"url"`
			PublishedAt string         `json:"published_at"`
			Votes       map[string]int `json:"votes"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cryptopanic response: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(payload.Results))
	for _, row := range payload.Results {
		title := strings.TrimSpace(row.Title)
		link := strings.TrimSpace(row.URL)
		if title == "" || link == "" {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(row.PublishedAt))
		if err != nil {
			continue
		}
		publishedAt = publishedAt.UTC()
		if publishedAt.Before(cutoff) {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			Link:        link,
			Source:      "CryptoPanic",
			PublishedAt: publishedAt,
			Votes:       row.Votes,
		})
	}

	return items, nil
}

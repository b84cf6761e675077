package provider

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCryptoPanicFetchHot(t *testing.T) {
	now := time.Now().UTC()
	fresh := now.Add(-2 * time.Hour).Format(time.RFC3339)
	stale := now.Add(-30 * time.Hour).Format(time.RFC3339)

	p := NewCryptoPanicProvider(noopTracer(), "secret-token")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.RawQuery, "auth_token=secret-token") {
			t.Errorf("missing auth token: %s", req.URL.RawQuery)
		}
		if !strings.Contains(req.URL.RawQuery, "filter=hot") {
			t.Errorf("missing hot filter: %s", req.URL.RawQuery)
		}
		body := `{"results": [
			{"title": "BTC breaks range", "url": "https://news.example/1", "published_at": "` + fresh + `", "votes": {"positive": 12, "negative": 1}},
			{"title": "Old story", "url": "https://news.example/2", "published_at": "` + stale + `"},
			{"title": "", "url": "https://news.example/3", "published_at": "` + fresh + `"},
			{"title": "No date", "url": "https://news.example/4", "published_at": "garbage"}
		]}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	items, err := p.FetchHot(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	item := items[0]
	if item.Title != "BTC breaks range" || item.Source != "CryptoPanic" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Votes["positive"] != 12 {
		t.Errorf("votes not carried: %+v", item.Votes)
	}
}

func TestCryptoPanicFetchHotNon200(t *testing.T) {
	p := NewCryptoPanicProvider(noopTracer(), "tok")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusForbidden, `{"detail":"invalid token"}`), nil
	})}

	if _, err := p.FetchHot(context.Background(), time.Now().Add(-24*time.Hour)); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestCryptoPanicRequiresToken(t *testing.T) {
	p := NewCryptoPanicProvider(noopTracer(), "  ")
	if _, err := p.FetchHot(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error without token")
	}
}

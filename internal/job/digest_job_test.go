package job

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubNews struct {
	items []domain.NewsItem
}

func (s *stubNews) Aggregate(ctx context.Context) []domain.NewsItem {
	return s.items
}

type stubPrices struct{}

func (s *stubPrices) GetQuotes(ctx context.Context) map[string]*domain.PriceQuote {
	return map[string]*domain.PriceQuote{
		"BTC": {Symbol: "BTC", PriceUSD: 97000.12, Change24hPct: 2.3, Available: true},
		"ETH": {Symbol: "ETH", PriceUSD: 3200.5, Change24hPct: -1.1, Available: true},
		"SOL": {Symbol: "SOL", PriceUSD: 187.6, Change24hPct: 0.4, Available: true},
	}
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (r *recordingNotifier) SendDigest(text string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, text)
	return nil
}

func fixedClock(utcHour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 10, utcHour, 15, 0, 0, time.UTC)
	}
}

func newTestJob(news *stubNews, notifier *recordingNotifier, utcHour int) *DigestJob {
	j := NewDigestJob(testTracer, news, &stubPrices{}, notifier,
		2*time.Hour, 2*time.Hour,
		domain.ScheduleWindow{StartHour: 7, EndHour: 21, UTCOffset: time.Hour})
	j.now = fixedClock(utcHour)
	return j
}

func hotItem(title string, age time.Duration, at func() time.Time) domain.NewsItem {
	return domain.NewsItem{
		Title:       title,
		Link:        "https://news.example/" + title,
		Source:      "CoinDesk",
		PublishedAt: at().UTC().Add(-age),
	}
}

func TestDigestTickInsideWindow(t *testing.T) {
	clock := fixedClock(9) // 10:15 local
	news := &stubNews{}
	for i, age := range []time.Duration{10 * time.Minute, 40 * time.Minute, 70 * time.Minute, 100 * time.Minute} {
		news.items = append(news.items, hotItem(string(rune('a'+i)), age, clock))
	}
	notifier := &recordingNotifier{}
	j := newTestJob(news, notifier, 9)

	j.runOnce(context.Background())

	if len(notifier.sent) != 1 {
		t.Fatalf("expected exactly one message, got %d", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if !strings.Contains(msg, "🔥 *Fresh news from the last 2 hours:*") {
		t.Errorf("header missing:\n%s", msg)
	}
	// Only three items despite four being hot.
	if !strings.Contains(msg, "3. [c]") || strings.Contains(msg, "4. [d]") {
		t.Errorf("item cap not applied:\n%s", msg)
	}
	if !strings.Contains(msg, "10m ago") {
		t.Errorf("minute age label missing:\n%s", msg)
	}
	if !strings.Contains(msg, "💰 *Current prices:*") {
		t.Errorf("price block missing:\n%s", msg)
	}
}

func TestDigestTickOutsideWindowIsSilent(t *testing.T) {
	clock := fixedClock(21) // 22:15 local, outside 07-21
	news := &stubNews{items: []domain.NewsItem{hotItem("x", 5*time.Minute, clock)}}
	notifier := &recordingNotifier{}
	j := newTestJob(news, notifier, 21)

	j.runOnce(context.Background())

	if len(notifier.sent) != 0 {
		t.Fatalf("tick outside window must send nothing, got %d", len(notifier.sent))
	}
}

func TestDigestTickNoHotItemsIsSilent(t *testing.T) {
	clock := fixedClock(9)
	// Aggregated but older than the 2h hot window.
	news := &stubNews{items: []domain.NewsItem{hotItem("stale", 3*time.Hour, clock)}}
	notifier := &recordingNotifier{}
	j := newTestJob(news, notifier, 9)

	j.runOnce(context.Background())

	if len(notifier.sent) != 0 {
		t.Fatalf("tick without hot items must send nothing, got %d", len(notifier.sent))
	}
}

func TestDigestSendFailureDoesNotPanic(t *testing.T) {
	clock := fixedClock(9)
	news := &stubNews{items: []domain.NewsItem{hotItem("x", 5*time.Minute, clock)}}
	notifier := &recordingNotifier{err: errors.New("chat not found")}
	j := newTestJob(news, notifier, 9)

	// Must only log; a failing tick never takes down the loop.
	j.runOnce(context.Background())
}

func TestDigestStartStopsOnCancel(t *testing.T) {
	news := &stubNews{}
	notifier := &recordingNotifier{}
	j := newTestJob(news, notifier, 9)
	j.initialDelay = time.Millisecond
	j.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

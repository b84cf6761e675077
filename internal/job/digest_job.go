package job

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"crypto-pulse/internal/advisor"
	"crypto-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const digestItemLimit = 3

// NewsReader provides the aggregated headline list.
type NewsReader interface {
	Aggregate(ctx context.Context) []domain.NewsItem
}

// PriceReader provides current quotes for the digest's price block.
type PriceReader interface {
	GetQuotes(ctx context.Context) map[string]*domain.PriceQuote
}

// Notifier delivers the assembled digest to the broadcast destination.
type Notifier interface {
	SendDigest(text string) error
}

// DigestJob periodically pushes a short news+price digest to a fixed
// chat. Ticks outside the permitted local-time window, or with no items
// inside the hot window, are silent no-ops. A failing tick is logged and
// never stops the ticker.
type DigestJob struct {
	tracer   trace.Tracer
	news     NewsReader
	prices   PriceReader
	notifier Notifier

	interval  time.Duration
	hotWindow time.Duration
	window    domain.ScheduleWindow

	initialDelay time.Duration
	now          func() time.Time
}

func NewDigestJob(
	tracer trace.Tracer,
	news NewsReader,
	prices PriceReader,
	notifier Notifier,
	interval time.Duration,
	hotWindow time.Duration,
	window domain.ScheduleWindow,
) *DigestJob {
	if interval <= 0 {
		interval = 2 * time.Hour
	}
	if hotWindow <= 0 {
		hotWindow = 2 * time.Hour
	}
	return &DigestJob{
		tracer:       tracer,
		news:         news,
		prices:       prices,
		notifier:     notifier,
		interval:     interval,
		hotWindow:    hotWindow,
		window:       window,
		initialDelay: 10 * time.Second,
		now:          time.Now,
	}
}

// Start blocks until ctx is cancelled, ticking every interval after a
// short startup delay.
func (j *DigestJob) Start(ctx context.Context) {
	if j.notifier == nil {
		log.Println("Digest job disabled: no broadcast destination")
		<-ctx.Done()
		return
	}

	log.Printf("Digest job starting: every %s, hot window %s, hours %02d-%02d",
		j.interval, j.hotWindow, j.window.StartHour, j.window.EndHour)

	select {
	case <-ctx.Done():
		return
	case <-time.After(j.initialDelay):
	}

	j.runOnce(ctx)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Digest job stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *DigestJob) runOnce(ctx context.Context) {
	_, span := j.tracer.Start(ctx, "digest-job.run-once")
	defer span.End()

	msg := j.Compose(ctx)
	if msg == "" {
		return
	}
	if err := j.notifier.SendDigest(msg); err != nil {
		log.Printf("digest send error: %v", err)
		return
	}
	log.Println("Digest broadcast sent")
}

// Compose assembles the digest message a tick would send right now.
// Returns "" when the tick should be suppressed (outside the window or
// nothing hot enough). Also serves the ops API preview endpoint.
func (j *DigestJob) Compose(ctx context.Context) string {
	now := j.now().UTC()
	if !j.window.Contains(now) {
		return ""
	}

	hot := filterNewer(j.news.Aggregate(ctx), now.Add(-j.hotWindow))
	if len(hot) == 0 {
		return ""
	}

	quotes := j.prices.GetQuotes(ctx)
	return BuildDigestMessage(hot, quotes, j.hotWindow, now)
}

// BuildDigestMessage renders up to three headlines with minute-level age
// labels, followed by the price block.
func BuildDigestMessage(items []domain.NewsItem, quotes map[string]*domain.PriceQuote, hotWindow time.Duration, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔥 *Fresh news from the last %d hours:*\n\n", int(hotWindow.Hours())))
	for i, item := range items {
		if i >= digestItemLimit {
			break
		}
		sb.WriteString(fmt.Sprintf("%d. [%s](%s) \n⌚ %s | %s\n\n",
			i+1, item.Title, item.Link, advisor.FormatMinuteAge(item.PublishedAt, now), item.Source))
	}
	sb.WriteString("\n")
	sb.WriteString(advisor.FormatPriceBlock(quotes))
	return sb.String()
}

func filterNewer(items []domain.NewsItem, cutoff time.Time) []domain.NewsItem {
	var out []domain.NewsItem
	for _, item := range items {
		if item.PublishedAt.After(cutoff) {
			out = append(out, item)
		}
	}
	return out
}

package advisor

import (
	"fmt"
	"strings"
	"time"

	"crypto-pulse/internal/domain"
)

const promptNewsLimit = 10

// FormatPriceBlock renders the user-visible price summary prepended to
// every report and digest.
func FormatPriceBlock(quotes map[string]*domain.PriceQuote) string {
	var sb strings.Builder
	sb.WriteString("💰 *Current prices:*\n")
	for _, sym := range domain.SupportedSymbols {
		q := quotes[sym]
		if q == nil || !q.Available {
			sb.WriteString(fmt.Sprintf("- %s: N/A\n", sym))
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: $%.2f %s\n", sym, q.PriceUSD, formatChange(q.Change24hPct)))
	}
	return sb.String()
}

func formatChange(change float64) string {
	icon := "📈"
	if change < 0 {
		icon = "📉"
	}
	if change < 0 {
		change = -change
	}
	return fmt.Sprintf("%s %.2f%%", icon, change)
}

// FormatRelativeAge renders how long ago ts was, at hour granularity
// below 24h and as an absolute date beyond that.
func FormatRelativeAge(ts, now time.Time) string {
	elapsed := now.Sub(ts)
	if elapsed < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	}
	return ts.Format("02.01.2006")
}

// FormatMinuteAge renders ts at minute granularity, used by the
// scheduled digest and the top-news listing.
func FormatMinuteAge(ts, now time.Time) string {
	elapsed := now.Sub(ts)
	hours := int(elapsed.Hours())
	minutes := int(elapsed.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm ago", hours, minutes)
	}
	return fmt.Sprintf("%dm ago", minutes)
}

// FormatSourceList renders the "Sources" footer of the coin report from
// the first limit item links.
func FormatSourceList(items []domain.NewsItem, limit int) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) > limit {
		items = items[:limit]
	}
	var sb strings.Builder
	sb.WriteString("\n\n🔗 *Sources:*\n")
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Link))
	}
	return sb.String()
}

func promptPriceLines(quotes map[string]*domain.PriceQuote) string {
	var sb strings.Builder
	for _, sym := range domain.SupportedSymbols {
		q := quotes[sym]
		if q == nil || !q.Available {
			sb.WriteString(fmt.Sprintf("- %s: N/A (change: 0.00%%)\n", sym))
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: $%.2f (change: %.2f%%)\n", sym, q.PriceUSD, q.Change24hPct))
	}
	return sb.String()
}

func promptNewsDigest(items []domain.NewsItem, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("📰 *Fresh headlines from the last 24 hours:*\n\n")
	for i, item := range items {
		if i >= promptNewsLimit {
			break
		}
		sb.WriteString(fmt.Sprintf("%d. %s (%s - %s)\n",
			i+1, item.Title, item.Source, FormatRelativeAge(item.PublishedAt, now)))
	}
	return sb.String()
}

// BuildDailyPrompt renders the deterministic prompt for the 24h report.
func BuildDailyPrompt(quotes map[string]*domain.PriceQuote, items []domain.NewsItem, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("You are a professional crypto market analyst. Today is ")
	sb.WriteString(now.Format("02 January 2006"))
	sb.WriteString(".\nCurrent prices of the tracked assets:\n")
	sb.WriteString(promptPriceLines(quotes))
	sb.WriteString("\nAnalyze ONLY the freshest news and produce a short report based on the last 24 hours:\n\n")
	sb.WriteString(promptNewsDigest(items, now))
	sb.WriteString("\nReport structure (300 words max):\n")
	sb.WriteString("1. Key market trends (based on the latest headlines)\n")
	sb.WriteString("2. Impact on BTC, ETH, SOL (using the real prices above)\n")
	sb.WriteString("3. Outlook for the next 24 hours\n")
	sb.WriteString("4. Trading suggestions (practical advice)\n\n")
	sb.WriteString("Use professional terminology. Be concise and informative. ")
	sb.WriteString("Do NOT use outdated data or historical examples. ")
	sb.WriteString("All prices and forecasts must reflect the current market situation.")
	return sb.String()
}

// BuildWeeklyPrompt renders the deterministic prompt for the 7-day forecast.
func BuildWeeklyPrompt(quotes map[string]*domain.PriceQuote, items []domain.NewsItem, now time.Time) string {
	nextWeek := now.AddDate(0, 0, 7)
	var sb strings.Builder
	sb.WriteString("You are a professional crypto market analyst. Today is ")
	sb.WriteString(now.Format("02 January 2006"))
	sb.WriteString(".\nCurrent prices of the tracked assets:\n")
	sb.WriteString(promptPriceLines(quotes))
	sb.WriteString("\nRecent headlines for context:\n\n")
	sb.WriteString(promptNewsDigest(items, now))
	sb.WriteString(fmt.Sprintf("\nForecast the crypto market for the coming week (%s - %s) ",
		now.Format("02 January 2006"), nextWeek.Format("02 January 2006")))
	sb.WriteString("based ONLY on the latest news and current market conditions.\n\n")
	sb.WriteString("Forecast structure (400 words max):\n")
	sb.WriteString("1. Overview of current market trends (from FRESH data)\n")
	sb.WriteString("2. Forecast for BTC, ETH, SOL (with price ranges)\n")
	sb.WriteString("3. Key support/resistance levels (current)\n")
	sb.WriteString("4. Practical recommendations for traders\n\n")
	sb.WriteString("Be specific and informative. Consider ONLY events from the last 48 hours. ")
	sb.WriteString("Do NOT use outdated data or historical examples. ")
	sb.WriteString("All forecasts must be grounded in the current prices and market conditions.")
	return sb.String()
}

// BuildCoinPrompt narrows the daily report to a single symbol; items are
// expected to be pre-filtered to headlines mentioning the coin.
func BuildCoinPrompt(symbol string, quotes map[string]*domain.PriceQuote, items []domain.NewsItem, now time.Time) string {
	name := domain.AssetName[symbol]
	if name == "" {
		name = symbol
	}
	var sb strings.Builder
	sb.WriteString("You are a professional crypto market analyst. Today is ")
	sb.WriteString(now.Format("02 January 2006"))
	sb.WriteString(".\nCurrent prices of the tracked assets:\n")
	sb.WriteString(promptPriceLines(quotes))
	sb.WriteString(fmt.Sprintf("\nAnalyze ONLY the freshest %s (%s) news and produce a short report based on the last 24 hours:\n\n",
		name, symbol))
	sb.WriteString(promptNewsDigest(items, now))
	sb.WriteString("\nReport structure (300 words max):\n")
	sb.WriteString(fmt.Sprintf("1. Key developments around %s\n", name))
	sb.WriteString(fmt.Sprintf("2. Impact on the %s price (using the real price above)\n", symbol))
	sb.WriteString("3. Outlook for the next 24 hours\n")
	sb.WriteString("4. Trading suggestions (practical advice)\n\n")
	sb.WriteString("Use professional terminology. Be concise and informative. ")
	sb.WriteString("Do NOT use outdated data or historical examples.")
	return sb.String()
}

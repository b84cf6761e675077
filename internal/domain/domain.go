package domain

import (
	"sort"
	"time"
)

// PriceQuote represents the latest price data for a tracked asset.
// Available is false when the market-data call failed and the quote
// is a placeholder.
type PriceQuote struct {
	Symbol       string  `json:"symbol"`
	PriceUSD     float64 `json:"price_usd"`
	Change24hPct float64 `json:"change_24h_pct"`
	Available    bool    `json:"available"`
}

// NewsItem is a single normalized headline from any configured source.
type NewsItem struct {
	Title       string         `json:"title"`
	Link        string         `json:"link"`
	Source      string         `json:"source"`
	PublishedAt time.Time      `json:"published_at"`
	Votes       map[string]int `json:"votes,omitempty"`
}

// AggregationWindow is how far back the news aggregator looks.
const AggregationWindow = 24 * time.Hour

// MaxDigestItems caps the assembled news list.
const MaxDigestItems = 20

// SortNewsDesc orders items newest-first. Ties are broken by source then
// title so the order is deterministic for equal timestamps.
func SortNewsDesc(items []NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PublishedAt.Equal(items[j].PublishedAt) {
			return items[i].PublishedAt.After(items[j].PublishedAt)
		}
		if items[i].Source != items[j].Source {
			return items[i].Source < items[j].Source
		}
		return items[i].Title < items[j].Title
	})
}

// CoinGeckoID maps internal symbols to CoinGecko API identifiers.
var CoinGeckoID = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
}

// CoinGeckoIDToSymbol is the reverse mapping.
var CoinGeckoIDToSymbol map[string]string

func init() {
	CoinGeckoIDToSymbol = make(map[string]string, len(CoinGeckoID))
	for sym, id := range CoinGeckoID {
		CoinGeckoIDToSymbol[id] = sym
	}
}

// SupportedSymbols lists all tracked crypto symbols in display order.
var SupportedSymbols = []string{"BTC", "ETH", "SOL"}

// AssetName maps symbols to full asset names, used when matching
// headlines against a specific coin.
var AssetName = map[string]string{
	"BTC": "Bitcoin",
	"ETH": "Ethereum",
	"SOL": "Solana",
}

// ScheduleWindow is the local-time range inside which the digest
// broadcaster is allowed to post. Read-only after startup.
type ScheduleWindow struct {
	StartHour int
	EndHour   int
	UTCOffset time.Duration
}

// Contains reports whether t falls inside the permitted window.
func (w ScheduleWindow) Contains(t time.Time) bool {
	h := t.UTC().Add(w.UTCOffset).Hour()
	return h >= w.StartHour && h <= w.EndHour
}

// UnavailableQuotes returns a placeholder quote for every supported
// symbol. Used as the degraded result when the market-data call fails.
func UnavailableQuotes() map[string]*PriceQuote {
	quotes := make(map[string]*PriceQuote, len(SupportedSymbols))
	for _, sym := range SupportedSymbols {
		quotes[sym] = &PriceQuote{Symbol: sym, Available: false}
	}
	return quotes
}

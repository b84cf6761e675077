package advisor

import (
	"strings"

	"crypto-pulse/internal/domain"
)

// FilterBySymbol keeps items whose title mentions the symbol or the
// asset's full name, case-insensitively. Order is preserved.
func FilterBySymbol(items []domain.NewsItem, symbol string) []domain.NewsItem {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil
	}
	name := strings.ToLower(domain.AssetName[symbol])

	var out []domain.NewsItem
	for _, item := range items {
		title := strings.ToLower(item.Title)
		if strings.Contains(title, strings.ToLower(symbol)) || (name != "" && strings.Contains(title, name)) {
			out = append(out, item)
		}
	}
	return out
}

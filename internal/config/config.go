package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Feed is one named RSS source.
type Feed struct {
	Name string
	URL  string
}

type Config struct {
	TelegramBotToken string
	DigestChatID     int64
	RedisURL         string

	CryptoPanicAPIKey string
	NewsFeeds         []Feed

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	DigestIntervalSecs  int
	DigestHotWindowSecs int
	DigestUTCOffsetHrs  int
	DigestStartHour     int
	DigestEndHour       int

	HTTPPort  int
	OpsAPIKey string

	SSHPort        int
	SSHHostKeyPath string
}

// DefaultNewsFeeds are the trusted RSS sources queried when NEWS_FEEDS
// is not set.
var DefaultNewsFeeds = []Feed{
	{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/?outputType=xml"},
	{Name: "CoinTelegraph", URL: "https://cointelegraph.com/rss"},
	{Name: "Decrypt", URL: "https://decrypt.co/rss"},
	{Name: "Binance", URL: "https://www.binance.com/en/rss/news"},
	{Name: "Coinbase", URL: "https://blog.coinbase.com/feed"},
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:          os.Getenv("REDIS_URL"),
		CryptoPanicAPIKey: os.Getenv("CRYPTOPANIC_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.CryptoPanicAPIKey == "" {
		log.Println("Warning: CRYPTOPANIC_API_KEY not set, aggregator source will be skipped")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, narrative generation will be disabled")
	}

	if v := strings.TrimSpace(os.Getenv("DIGEST_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.DigestChatID = n
		} else {
			log.Printf("Warning: invalid DIGEST_CHAT_ID %q, digest broadcast disabled", v)
		}
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.NewsFeeds = parseFeeds(os.Getenv("NEWS_FEEDS"))
	if len(cfg.NewsFeeds) == 0 {
		cfg.NewsFeeds = DefaultNewsFeeds
	}

	cfg.DigestIntervalSecs = envInt("DIGEST_INTERVAL_SECS", 7200)
	cfg.DigestHotWindowSecs = envInt("DIGEST_HOT_WINDOW_SECS", 7200)
	cfg.DigestUTCOffsetHrs = envIntAllowZero("DIGEST_UTC_OFFSET_HOURS", 1)
	cfg.DigestStartHour = envIntAllowZero("DIGEST_START_HOUR", 7)
	cfg.DigestEndHour = envIntAllowZero("DIGEST_END_HOUR", 21)

	cfg.HTTPPort = envInt("HTTP_PORT", 8080)
	cfg.OpsAPIKey = strings.TrimSpace(os.Getenv("OPS_API_KEY"))

	cfg.SSHPort = envInt("SSH_PORT", 2222)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/crypto_pulse_ed25519"
	}

	return cfg
}

// parseFeeds reads a comma-separated list of Name=URL pairs.
// Malformed entries are skipped with a warning.
func parseFeeds(raw string) []Feed {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var feeds []Feed
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, url, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			log.Printf("Warning: skipping malformed NEWS_FEEDS entry %q", part)
			continue
		}
		feeds = append(feeds, Feed{Name: name, URL: url})
	}
	return feeds
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envIntAllowZero(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

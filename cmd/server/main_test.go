package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"crypto-pulse/internal/advisor"
	"crypto-pulse/internal/bot"
	"crypto-pulse/internal/config"
	"crypto-pulse/internal/domain"
	"crypto-pulse/internal/job"
	"crypto-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/openai/openai-go"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewCoinGecko := newCoinGeckoProviderFunc
	origNewCryptoPanic := newCryptoPanicProviderFunc
	origNewRSS := newRSSProviderFunc
	origNewOpenAI := newOpenAIClientFunc
	origStartDigest := startDigestJobFunc
	origNewBot := newTelegramBotFunc
	origStartBot := startBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			RedisURL:            "",
			TelegramBotToken:    "",
			OpenAIModel:         "gpt-4o-mini",
			NewsFeeds:           config.DefaultNewsFeeds,
			DigestIntervalSecs:  7200,
			DigestHotWindowSecs: 7200,
			DigestStartHour:     7,
			DigestEndHour:       21,
			HTTPPort:            8080,
		}
	}
	initRedisFunc = func(context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newCoinGeckoProviderFunc = func(trace.Tracer) service.PriceProvider { return stubPriceProvider{} }
	newCryptoPanicProviderFunc = func(trace.Tracer, string) service.AggregatorReader { return stubAggregator{} }
	newRSSProviderFunc = func(trace.Tracer) service.FeedReader { return stubFeedReader{} }
	newOpenAIClientFunc = func(string, string) advisor.LLMClient { return stubLLM{} }
	startDigestJobFunc = func(*job.DigestJob, context.Context) {}
	newTelegramBotFunc = func(string, bot.Narrator, bot.NewsReader, int64) (*bot.Bot, error) {
		return nil, nil
	}
	startBotFunc = func(*bot.Bot) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newCoinGeckoProviderFunc = origNewCoinGecko
		newCryptoPanicProviderFunc = origNewCryptoPanic
		newRSSProviderFunc = origNewRSS
		newOpenAIClientFunc = origNewOpenAI
		startDigestJobFunc = origStartDigest
		newTelegramBotFunc = origNewBot
		startBotFunc = origStartBot
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubPriceProvider struct{}

func (stubPriceProvider) FetchPrices(ctx context.Context) (map[string]*domain.PriceQuote, error) {
	return map[string]*domain.PriceQuote{
		"BTC": {Symbol: "BTC", PriceUSD: 1, Available: true},
	}, nil
}

type stubAggregator struct{}

func (stubAggregator) FetchHot(ctx context.Context, cutoff time.Time) ([]domain.NewsItem, error) {
	return nil, nil
}

type stubFeedReader struct{}

func (stubFeedReader) FetchFeed(ctx context.Context, sourceName, feedURL string, cutoff time.Time) ([]domain.NewsItem, error) {
	return nil, nil
}

type stubLLM struct{}

func (stubLLM) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return &openai.ChatCompletion{}, nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-pulse/internal/advisor"
	"crypto-pulse/internal/bot"
	"crypto-pulse/internal/cache"
	"crypto-pulse/internal/config"
	"crypto-pulse/internal/domain"
	"crypto-pulse/internal/handler"
	"crypto-pulse/internal/job"
	"crypto-pulse/internal/provider"
	"crypto-pulse/internal/service"
	"crypto-pulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "crypto-pulse/docs"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) service.PriceProvider {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newCryptoPanicProviderFunc = func(tracer trace.Tracer, token string) service.AggregatorReader {
		return provider.NewCryptoPanicProvider(tracer, token)
	}
	newRSSProviderFunc = func(tracer trace.Tracer) service.FeedReader {
		return provider.NewRSSProvider(tracer)
	}
	newPriceServiceFunc = service.NewPriceService
	newNewsServiceFunc  = service.NewNewsService
	newOpenAIClientFunc = advisor.NewOpenAIClient
	newNarrativeFunc    = advisor.NewNarrativeService
	newDigestJobFunc    = job.NewDigestJob
	startDigestJobFunc  = func(j *job.DigestJob, ctx context.Context) { go j.Start(ctx) }
	newTelegramBotFunc  = bot.New
	startBotFunc        = func(b *bot.Bot) { go b.Start() }
	newRouterFunc       = gin.Default
	setupSignalNotify   = signal.Notify
	waitForSignalFunc   = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto Pulse API
// @version         1.0
// @description     Ops API for the crypto news digest bot.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Providers and services
	cgProvider := newCoinGeckoProviderFunc(tracer)
	priceService := newPriceServiceFunc(tracer, cgProvider, cache.Client)

	cpProvider := newCryptoPanicProviderFunc(tracer, cfg.CryptoPanicAPIKey)
	rssProvider := newRSSProviderFunc(tracer)
	newsService := newNewsServiceFunc(tracer, cpProvider, rssProvider, feedSources(cfg.NewsFeeds))

	llmClient := newOpenAIClientFunc(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	narrative := newNarrativeFunc(tracer, llmClient, priceService, newsService, cfg.OpenAIModel)

	// Telegram bot (optional; the ops API still runs without it)
	var tgBot *bot.Bot
	if cfg.TelegramBotToken != "" {
		tgBot, err = newTelegramBotFunc(cfg.TelegramBotToken, narrative, newsService, cfg.DigestChatID)
		if err != nil {
			log.Fatalf("failed to create Telegram bot: %v", err)
		}
		startBotFunc(tgBot)
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
	}

	// Scheduled digest (background goroutine, stopped by ctx cancel)
	var notifier job.Notifier
	if tgBot != nil && cfg.DigestChatID != 0 {
		notifier = tgBot
	}
	digestJob := newDigestJobFunc(tracer, newsService, priceService, notifier,
		time.Duration(cfg.DigestIntervalSecs)*time.Second,
		time.Duration(cfg.DigestHotWindowSecs)*time.Second,
		domain.ScheduleWindow{
			StartHour: cfg.DigestStartHour,
			EndHour:   cfg.DigestEndHour,
			UTCOffset: time.Duration(cfg.DigestUTCOffsetHrs) * time.Hour,
		})
	startDigestJobFunc(digestJob, ctx)

	// HTTP ops API
	h := handler.New(tracer, priceService, newsService, digestJob)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-pulse"))

	h.RegisterRoutes(r, cfg.OpsAPIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()
	if tgBot != nil {
		tgBot.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func feedSources(feeds []config.Feed) []service.FeedSource {
	out := make([]service.FeedSource, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, service.FeedSource{Name: f.Name, URL: f.URL})
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"crypto-pulse/internal/cache"
	"crypto-pulse/internal/config"
	"crypto-pulse/internal/provider"
	"crypto-pulse/internal/service"
	"crypto-pulse/internal/tui"
	"crypto-pulse/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initRedisFunc  = cache.InitRedis
	initTracerFunc = tracing.InitTracer

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
	newWishServerFunc   = wish.NewServer
	setupSignalNotify   = ossignal.Notify
	waitForSignalFunc   = func(quit <-chan os.Signal) { <-quit }
)

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

	cgProvider := newCoinGeckoProviderFunc(tracer)
	priceService := newPriceServiceFunc(tracer, cgProvider, cache.Client)

	cpProvider := newCryptoPanicProviderFunc(tracer, cfg.CryptoPanicAPIKey)
	rssProvider := newRSSProviderFunc(tracer)
	newsService := newNewsServiceFunc(tracer, cpProvider, rssProvider, feedSources(cfg.NewsFeeds))

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		// Read-only dashboard: any key gets in, the fingerprint is
		// logged for the session audit trail.
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			log.Printf("SSH session: user=%s fingerprint=%s", ctx.User(), gossh.FingerprintSHA256(key))
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewModel(tui.Services{
					Prices: priceService,
					News:   newsService,
					User:   s.User(),
				})
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}

func feedSources(feeds []config.Feed) []service.FeedSource {
	out := make([]service.FeedSource, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, service.FeedSource{Name: f.Name, URL: f.URL})
	}
	return out
}

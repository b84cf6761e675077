package bot

import (
	"strings"
	"testing"
	"time"

	"crypto-pulse/internal/domain"

	tele "gopkg.in/telebot.v3"
)

func newOfflineBot(t *testing.T, digestChatID int64) *Bot {
	t.Helper()
	tb, err := tele.NewBot(tele.Settings{Token: "test-token", Offline: true})
	if err != nil {
		t.Fatalf("offline bot: %v", err)
	}
	b := &Bot{
		tb:           tb,
		digestChatID: digestChatID,
		sessions:     newSessionStore(),
		now:          time.Now,
	}
	b.registerHandlers()
	return b
}

func TestSendDigestRequiresChatID(t *testing.T) {
	b := newOfflineBot(t, 0)
	if err := b.SendDigest("hello"); err == nil {
		t.Fatal("expected error when digest chat id is unset")
	}
}

func TestMainMarkupHasFourActions(t *testing.T) {
	b := newOfflineBot(t, 0)
	m := b.mainMarkup()
	if got := len(m.InlineKeyboard); got != 4 {
		t.Fatalf("main menu rows = %d, want 4", got)
	}
}

func TestCoinMarkupCoversSupportedSymbols(t *testing.T) {
	b := newOfflineBot(t, 0)
	m := b.coinMarkup()
	// One row per symbol plus the back button.
	if got := len(m.InlineKeyboard); got != len(domain.SupportedSymbols)+1 {
		t.Fatalf("coin menu rows = %d, want %d", got, len(domain.SupportedSymbols)+1)
	}
}

func TestBuildNewsMessage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var items []domain.NewsItem
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		items = append(items, domain.NewsItem{
			Title:       title,
			Link:        "https://news.example/" + title,
			Source:      "CoinDesk",
			PublishedAt: now.Add(-30 * time.Minute),
		})
	}

	msg := BuildNewsMessage(items, now)

	if !strings.Contains(msg, "5. [e]") {
		t.Errorf("fifth headline missing:\n%s", msg)
	}
	if strings.Contains(msg, "6. [f]") {
		t.Errorf("more than five headlines rendered:\n%s", msg)
	}
	if !strings.Contains(msg, "30m ago") {
		t.Errorf("age label missing:\n%s", msg)
	}
}

func TestBuildNewsMessageEmpty(t *testing.T) {
	msg := BuildNewsMessage(nil, time.Now())
	if !strings.Contains(msg, "No fresh news") {
		t.Errorf("empty list message = %q", msg)
	}
}

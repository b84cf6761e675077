package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"crypto-pulse/internal/advisor"
	"crypto-pulse/internal/domain"

	tele "gopkg.in/telebot.v3"
)

const newsListLimit = 5

// Narrator produces the chat-facing analysis texts.
type Narrator interface {
	DailyReport(ctx context.Context) string
	WeeklyForecast(ctx context.Context) string
	CoinReport(ctx context.Context, symbol string) string
}

// NewsReader supplies the aggregated headline list.
type NewsReader interface {
	Aggregate(ctx context.Context) []domain.NewsItem
}

// Bot drives the Telegram chat UI: a main menu, a coin-selection
// submenu, and the scheduled digest destination.
type Bot struct {
	tb           *tele.Bot
	narrator     Narrator
	news         NewsReader
	digestChatID int64
	sessions     *sessionStore
	now          func() time.Time
}

func New(token string, narrator Narrator, news NewsReader, digestChatID int64) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b := &Bot{
		tb:           tb,
		narrator:     narrator,
		news:         news,
		digestChatID: digestChatID,
		sessions:     newSessionStore(),
		now:          time.Now,
	}
	b.registerHandlers()
	return b, nil
}

// Start blocks on the long poller until Stop is called.
func (b *Bot) Start() {
	log.Println("Telegram bot started")
	b.tb.Start()
}

func (b *Bot) Stop() {
	b.tb.Stop()
}

// SendDigest pushes one scheduled digest message to the configured chat.
func (b *Bot) SendDigest(text string) error {
	if b.digestChatID == 0 {
		return fmt.Errorf("digest chat id not configured")
	}
	_, err := b.tb.Send(tele.ChatID(b.digestChatID), text, tele.ModeMarkdown, tele.NoPreview)
	return err
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/start", b.onStart)
	b.tb.Handle(btn(ActionDaily), b.onDaily)
	b.tb.Handle(btn(ActionWeekly), b.onWeekly)
	b.tb.Handle(btn(ActionNews), b.onNews)
	b.tb.Handle(btn(ActionSelectCoin), b.onSelectCoin)
	b.tb.Handle(btn(ActionCoin), b.onCoin)
	b.tb.Handle(btn(ActionBack), b.onBack)
	b.tb.Handle(btn(ActionCancel), b.onCancel)
}

func btn(a Action) *tele.Btn {
	return &tele.Btn{Unique: a.callbackUnique()}
}

func (b *Bot) onStart(c tele.Context) error {
	b.sessions.Reset(c.Chat().ID)
	text := fmt.Sprintf(
		"💰 *Your personal crypto analyst is ready.*\nData as of %s\n\nChoose an action:",
		b.now().Format("02.01.2006 15:04"),
	)
	return c.Send(text, b.mainMarkup(), tele.ModeMarkdown)
}

func (b *Bot) onDaily(c tele.Context) error {
	return b.startGeneration(c, StateGeneratingAnalysis,
		"⏳ *Collecting fresh news and analysing the market...*\nUsing data from the last 24 hours only.",
		"📊 *24-HOUR CRYPTO REPORT:*",
		b.narrator.DailyReport)
}

func (b *Bot) onWeekly(c tele.Context) error {
	return b.startGeneration(c, StateGeneratingForecast,
		"⏳ *Analysing current trends and drafting the forecast...*\nUsing the freshest data available.",
		"🔮 *WEEKLY FORECAST:*",
		b.narrator.WeeklyForecast)
}

// onNews is a stateless side action: it does not change the session state.
func (b *Bot) onNews(c tele.Context) error {
	items := b.news.Aggregate(context.Background())
	msg := BuildNewsMessage(items, b.now().UTC())
	return c.Edit(msg, b.mainMarkup(), tele.ModeMarkdown, tele.NoPreview)
}

func (b *Bot) onSelectCoin(c tele.Context) error {
	b.sessions.Set(c.Chat().ID, StateSelectingCoin)
	return c.Edit("🪙 *Which asset should I look at?*", b.coinMarkup(), tele.ModeMarkdown)
}

func (b *Bot) onCoin(c tele.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Data()))
	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		log.Printf("coin callback with unknown symbol %q from chat %d", symbol, c.Chat().ID)
		b.sessions.Set(c.Chat().ID, StateIdle)
		return c.Edit("Choose an action:", b.mainMarkup())
	}
	return b.startGeneration(c, StateGeneratingAnalysis,
		fmt.Sprintf("⏳ *Collecting the latest %s news and data...*", symbol),
		fmt.Sprintf("📊 *%s REPORT:*", symbol),
		func(ctx context.Context) string { return b.narrator.CoinReport(ctx, symbol) })
}

func (b *Bot) onBack(c tele.Context) error {
	b.sessions.Set(c.Chat().ID, StateIdle)
	return c.Edit("Choose an action:", b.mainMarkup())
}

func (b *Bot) onCancel(c tele.Context) error {
	b.sessions.Reset(c.Chat().ID)
	return c.Edit("Operation cancelled. Choose an action:", b.mainMarkup())
}

// startGeneration renders an immediate placeholder, runs produce in the
// background, and renders the result only if the session was not
// cancelled or restarted in the meantime.
func (b *Bot) startGeneration(c tele.Context, state State, placeholder, header string, produce func(context.Context) string) error {
	chatID := c.Chat().ID
	msg := c.Message()
	token := b.sessions.Begin(chatID, state)

	if err := c.Edit(placeholder, b.cancelMarkup(), tele.ModeMarkdown); err != nil {
		log.Printf("render placeholder for chat %d: %v", chatID, err)
	}

	go func() {
		text := produce(context.Background())
		if !b.sessions.Complete(chatID, token) {
			return
		}
		body := fmt.Sprintf("%s\n\n🔄 Updated: %s\n\n%s", header, b.now().Format("02.01.2006 15:04"), text)
		if _, err := b.tb.Edit(msg, body, b.mainMarkup(), tele.ModeMarkdown, tele.NoPreview); err != nil {
			log.Printf("render result for chat %d: %v", chatID, err)
		}
	}()
	return nil
}

// Markups are rebuilt per render so button state never goes stale.

func (b *Bot) mainMarkup() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(m.Data("📈 24h analysis", ActionDaily.callbackUnique())),
		m.Row(m.Data("🔮 Weekly forecast", ActionWeekly.callbackUnique())),
		m.Row(m.Data("📰 Top 5 news", ActionNews.callbackUnique())),
		m.Row(m.Data("🪙 Specific coin", ActionSelectCoin.callbackUnique())),
	)
	return m
}

func (b *Bot) coinMarkup() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(domain.SupportedSymbols)+1)
	for _, symbol := range domain.SupportedSymbols {
		label := fmt.Sprintf("%s (%s)", domain.AssetName[symbol], symbol)
		rows = append(rows, m.Row(m.Data(label, ActionCoin.callbackUnique(), symbol)))
	}
	rows = append(rows, m.Row(m.Data("⬅️ Back", ActionBack.callbackUnique())))
	m.Inline(rows...)
	return m
}

func (b *Bot) cancelMarkup() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(m.Data("❌ Cancel", ActionCancel.callbackUnique())))
	return m
}

// BuildNewsMessage renders up to five headlines with age labels.
func BuildNewsMessage(items []domain.NewsItem, now time.Time) string {
	if len(items) == 0 {
		return "📰 No fresh news in the last 24 hours."
	}
	var sb strings.Builder
	sb.WriteString("📰 *LATEST HEADLINES:*\n\n")
	for i, item := range items {
		if i >= newsListLimit {
			break
		}
		sb.WriteString(fmt.Sprintf("%d. [%s](%s) \n⌚ %s | %s\n\n",
			i+1, item.Title, item.Link, advisor.FormatMinuteAge(item.PublishedAt, now), item.Source))
	}
	return sb.String()
}

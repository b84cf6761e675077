// Package tui renders the SSH market dashboard: current quotes plus the
// freshest headlines, refreshed on a timer.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"crypto-pulse/internal/advisor"
	"crypto-pulse/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	refreshEvery      = time.Minute
	headlineListLimit = 10
)

type PriceReader interface {
	GetQuotes(ctx context.Context) map[string]*domain.PriceQuote
}

type NewsReader interface {
	Aggregate(ctx context.Context) []domain.NewsItem
}

// Services carries the dependencies a dashboard session needs.
type Services struct {
	Prices PriceReader
	News   NewsReader
	User   string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	upStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

type snapshotMsg struct {
	quotes map[string]*domain.PriceQuote
	items  []domain.NewsItem
	taken  time.Time
}

type tickMsg time.Time

// Model is the bubbletea model behind one dashboard session.
type Model struct {
	svc     Services
	quotes  map[string]*domain.PriceQuote
	items   []domain.NewsItem
	taken   time.Time
	width   int
	height  int
	loading bool
}

func NewModel(svc Services) Model {
	return Model{svc: svc, loading: true}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.fetch()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case snapshotMsg:
		m.quotes = msg.quotes
		m.items = msg.items
		m.taken = msg.taken
		m.loading = false
	case tickMsg:
		m.loading = true
		return m, tea.Batch(m.fetch(), tick())
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("CRYPTO PULSE"))
	if m.svc.User != "" {
		sb.WriteString(dimStyle.Render("  " + m.svc.User))
	}
	sb.WriteString("\n\n")

	sb.WriteString(headerStyle.Render("Prices"))
	sb.WriteString("\n")
	if m.loading && m.quotes == nil {
		sb.WriteString(dimStyle.Render("loading...\n"))
	} else {
		sb.WriteString(renderQuotes(m.quotes))
	}

	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render("Headlines (24h)"))
	sb.WriteString("\n")
	if m.loading && m.items == nil {
		sb.WriteString(dimStyle.Render("loading...\n"))
	} else if len(m.items) == 0 {
		sb.WriteString(dimStyle.Render("no fresh news\n"))
	} else {
		now := time.Now().UTC()
		for i, item := range m.items {
			if i >= headlineListLimit {
				break
			}
			sb.WriteString(headlineStyle.Render(fmt.Sprintf("%2d. %s", i+1, item.Title)))
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  %s | %s", advisor.FormatMinuteAge(item.PublishedAt, now), item.Source)))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if !m.taken.IsZero() {
		sb.WriteString(dimStyle.Render("updated " + m.taken.Format("15:04:05") + "  "))
	}
	sb.WriteString(dimStyle.Render("r refresh · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func renderQuotes(quotes map[string]*domain.PriceQuote) string {
	symbols := make([]string, 0, len(quotes))
	for symbol := range quotes {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var sb strings.Builder
	for _, symbol := range symbols {
		q := quotes[symbol]
		if q == nil || !q.Available {
			sb.WriteString(fmt.Sprintf("  %-4s %s\n", symbol, dimStyle.Render("N/A")))
			continue
		}
		change := fmt.Sprintf("%+.2f%%", q.Change24hPct)
		if q.Change24hPct >= 0 {
			change = upStyle.Render(change)
		} else {
			change = downStyle.Render(change)
		}
		sb.WriteString(fmt.Sprintf("  %-4s $%-12.2f %s\n", symbol, q.PriceUSD, change))
	}
	return sb.String()
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		msg := snapshotMsg{taken: time.Now()}
		if m.svc.Prices != nil {
			msg.quotes = m.svc.Prices.GetQuotes(ctx)
		}
		if m.svc.News != nil {
			msg.items = m.svc.News.Aggregate(ctx)
		}
		return msg
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

package advisor

import (
	"context"
	"fmt"
	"log"
	"time"

	"crypto-pulse/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GenerationFailedText is the single user-facing string returned when
// narrative generation fails for any reason.
const GenerationFailedText = "⚠️ Analysis generation failed. Please try again later."

const (
	llmTemperature = 0.7
	llmMaxTokens   = 2000
	llmTimeout     = 60 * time.Second
)

// LLMClient abstracts the chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// PriceReader provides the freshest quotes at generation time.
type PriceReader interface {
	GetQuotes(ctx context.Context) map[string]*domain.PriceQuote
}

// NewsReader provides the freshest aggregated headlines at generation time.
type NewsReader interface {
	Aggregate(ctx context.Context) []domain.NewsItem
}

// NarrativeService builds prompts from a fresh price/news snapshot and
// returns the model's text. Every report re-gathers data; nothing is
// cached between invocations. Failures never escape as errors: the
// rendered text degrades to GenerationFailedText.
type NarrativeService struct {
	tracer trace.Tracer
	llm    LLMClient
	prices PriceReader
	news   NewsReader
	model  string
}

func NewNarrativeService(tracer trace.Tracer, llm LLMClient, prices PriceReader, news NewsReader, model string) *NarrativeService {
	return &NarrativeService{
		tracer: tracer,
		llm:    llm,
		prices: prices,
		news:   news,
		model:  model,
	}
}

// DailyReport produces the 24h market analysis: a price block followed
// by the model's narrative.
func (s *NarrativeService) DailyReport(ctx context.Context) string {
	ctx, span := s.tracer.Start(ctx, "advisor.daily-report")
	defer span.End()

	quotes := s.prices.GetQuotes(ctx)
	items := s.news.Aggregate(ctx)
	now := time.Now().UTC()

	prompt := BuildDailyPrompt(quotes, items, now)
	narrative := s.generate(ctx, prompt)
	return FormatPriceBlock(quotes) + "\n" + narrative
}

// WeeklyForecast produces the 7-day outlook.
func (s *NarrativeService) WeeklyForecast(ctx context.Context) string {
	ctx, span := s.tracer.Start(ctx, "advisor.weekly-forecast")
	defer span.End()

	quotes := s.prices.GetQuotes(ctx)
	items := s.news.Aggregate(ctx)
	now := time.Now().UTC()

	prompt := BuildWeeklyPrompt(quotes, items, now)
	narrative := s.generate(ctx, prompt)
	return FormatPriceBlock(quotes) + "\n" + narrative
}

// CoinReport narrows the daily analysis to one symbol. Headlines are
// filtered to those mentioning the coin, and the links used are listed
// after the narrative.
func (s *NarrativeService) CoinReport(ctx context.Context, symbol string) string {
	ctx, span := s.tracer.Start(ctx, "advisor.coin-report")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	quotes := s.prices.GetQuotes(ctx)
	items := FilterBySymbol(s.news.Aggregate(ctx), symbol)
	now := time.Now().UTC()

	prompt := BuildCoinPrompt(symbol, quotes, items, now)
	narrative := s.generate(ctx, prompt)
	return FormatPriceBlock(quotes) + "\n" + narrative + FormatSourceList(items, 5)
}

func (s *NarrativeService) generate(ctx context.Context, prompt string) string {
	text, err := s.callLLM(ctx, prompt)
	if err != nil {
		log.Printf("narrative generation failed: %v", err)
		return GenerationFailedText
	}
	return text
}

func (s *NarrativeService) callLLM(ctx context.Context, prompt string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.model),
		attribute.Int("llm.prompt_length", len(prompt)),
	)

	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(llmTemperature),
		MaxTokens:   openai.Int(llmMaxTokens),
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

// NewOpenAIClient builds an LLMClient. baseURL may point at any
// OpenAI-compatible endpoint; empty means the default API.
func NewOpenAIClient(apiKey, baseURL string) LLMClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

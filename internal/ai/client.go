package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Evaluation is the typed result of a vacancy evaluation.
type Evaluation struct {
	Score            int      `json:"score"`
	Recommendation   string   `json:"recommendation"`
	Priority         int      `json:"priority"`
	MatchReasons     []string `json:"match_reasons"`
	Concerns         []string `json:"concerns"`
	SalaryAssessment string   `json:"salary_assessment"`
}

// MessageAnalysis is the typed result of an incoming chat message analysis.
type MessageAnalysis struct {
	Sentiment            string `json:"sentiment"`
	Intent               string `json:"intent"`
	IsBot                bool   `json:"is_bot"`
	ShouldInviteTelegram bool   `json:"should_invite_telegram"`
}

// EvaluateInput collects the vacancy fields fed to the evaluation prompt.
type EvaluateInput struct {
	Title       string
	Description string
	Company     string
	SalaryFrom  *int
	SalaryTo    *int
	ResumeText  string
}

type searchTagsReply struct {
	SuggestedQueries []string `json:"suggested_queries"`
}

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// Client wraps an OpenAI-compatible chat-completion endpoint (OpenRouter).
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}
	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

func (c *Client) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// stripFences removes markdown code fences from an LLM reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// GenerateSearchTags suggests search queries from the resume text.
func (c *Client) GenerateSearchTags(ctx context.Context, resumeText string) ([]string, error) {
	raw, err := c.complete(ctx, fmt.Sprintf(searchTagsPrompt, resumeText), 0.5)
	if err != nil {
		return nil, err
	}
	return parseSearchTags(raw)
}

func parseSearchTags(raw string) ([]string, error) {
	var reply searchTagsReply
	if err := json.Unmarshal([]byte(stripFences(raw)), &reply); err != nil {
		return nil, fmt.Errorf("parsing search tags reply: %w", err)
	}
	return reply.SuggestedQueries, nil
}

// EvaluateVacancy scores a vacancy against the resume.
func (c *Client) EvaluateVacancy(ctx context.Context, in EvaluateInput) (*Evaluation, error) {
	raw, err := c.complete(ctx, fmt.Sprintf(evaluateVacancyPrompt,
		in.Title, in.Company, formatSalary(in.SalaryFrom, in.SalaryTo),
		in.Description, in.ResumeText), 0.2)
	if err != nil {
		return nil, err
	}
	return parseEvaluation(raw)
}

func parseEvaluation(raw string) (*Evaluation, error) {
	var eval Evaluation
	if err := json.Unmarshal([]byte(stripFences(raw)), &eval); err != nil {
		return nil, fmt.Errorf("parsing evaluation reply: %w", err)
	}
	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 100 {
		eval.Score = 100
	}
	eval.Recommendation = strings.ToLower(strings.TrimSpace(eval.Recommendation))
	return &eval, nil
}

func formatSalary(from, to *int) string {
	switch {
	case from != nil && to != nil:
		return fmt.Sprintf("%d - %d", *from, *to)
	case from != nil:
		return fmt.Sprintf("from %d", *from)
	case to != nil:
		return fmt.Sprintf("up to %d", *to)
	default:
		return "not specified"
	}
}

// GenerateCoverLetter writes a per-vacancy cover letter.
func (c *Client) GenerateCoverLetter(ctx context.Context, title, description, resumeText, telegram, email string) (string, error) {
	return c.complete(ctx, fmt.Sprintf(coverLetterPrompt,
		telegram, email, title, description, resumeText), 0.4)
}

// GenerateChatIntro writes the first chat message posted right after an
// application is submitted.
func (c *Client) GenerateChatIntro(ctx context.Context, coverLetter, telegram, email string) (string, error) {
	return c.complete(ctx, fmt.Sprintf(chatIntroPrompt, telegram, email, coverLetter), 0.4)
}

// AnalyzeMessage classifies an incoming recruiter message.
func (c *Client) AnalyzeMessage(ctx context.Context, text, chatHistory string) (*MessageAnalysis, error) {
	raw, err := c.complete(ctx, fmt.Sprintf(analyzeMessagePrompt, chatHistory, text), 0.1)
	if err != nil {
		return nil, err
	}
	return parseMessageAnalysis(raw)
}

func parseMessageAnalysis(raw string) (*MessageAnalysis, error) {
	var analysis MessageAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("parsing message analysis reply: %w", err)
	}
	return &analysis, nil
}

// GenerateChatResponse writes a reply to a recruiter message.
func (c *Client) GenerateChatResponse(ctx context.Context, text, resumeText, vacancyTitle string) (string, error) {
	return c.complete(ctx, fmt.Sprintf(chatResponsePrompt, vacancyTitle, text, resumeText), 0.4)
}

// GenerateTelegramInvite writes a one-line suggestion to move the chat to
// the messaging handle.
func (c *Client) GenerateTelegramInvite(ctx context.Context, text, telegram string) (string, error) {
	return c.complete(ctx, fmt.Sprintf(telegramInvitePrompt, telegram, text), 0.4)
}

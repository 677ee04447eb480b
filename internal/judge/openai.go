package judge

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ppiankov/continuity/internal/model"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	cfg    model.JudgeConfig
	logger *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg model.JudgeConfig, logger *zap.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		p.logger.Warn("OpenAI availability check failed", zap.Error(err))
		return false
	}
	return true
}

// Judge classifies one (claim, evidence) pair via the Chat Completions API.
func (p *OpenAIProvider) Judge(ctx context.Context, claimText, evidenceText string) (model.RelationLabel, float64, error) {
	m := p.cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(claimText, evidenceText)},
		},
		MaxTokens:   16,
		Temperature: 0, // classification must be reproducible
	})
	if err != nil {
		return model.RelationNeutral, 0, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.RelationNeutral, 0, fmt.Errorf("no response from OpenAI")
	}

	label, confidence := ParseResponse(strings.TrimSpace(resp.Choices[0].Message.Content))
	return label, confidence, nil
}

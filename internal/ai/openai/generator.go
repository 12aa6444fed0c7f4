package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const defaultModel = "gpt-4o-mini"

// Generator sends prompts to an OpenAI-compatible chat completion endpoint.
type Generator struct {
	llm       llms.Model
	modelName string
	logger    *zap.Logger
}

// NewGenerator builds a generator. An empty baseURL targets the public OpenAI API.
func NewGenerator(apiKey, model, baseURL string, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return newGenerator(llm, model, logger), nil
}

func newGenerator(llm llms.Model, model string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{llm: llm, modelName: model, logger: logger}
}

// GenerateContent asks the model for a JSON reply to prompt.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.llm == nil {
		return "", errors.New("openai generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	output, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithJSONMode(),
		llms.WithTemperature(0),
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

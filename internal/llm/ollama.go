package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/S-Leuthold/echo/internal/logger"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// planTemperature keeps local models close to the requested schedule when
// they are asked for a JSON plan.
const planTemperature = 0.2

// ErrEmptyReply is returned when a backend answers without any content.
var ErrEmptyReply = errors.New("empty reply from model")

// OllamaClient talks to a local Ollama server.
type OllamaClient struct {
	client  *ollama.LLM
	model   string
	baseURL string
}

// NewOllamaClient creates a new Ollama client. An empty baseURL selects the
// default local server.
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	if model == "" {
		return nil, errors.New("ollama model is required")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	client, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}

	return &OllamaClient{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Chat sends the conversation and returns the model's reply text.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	content, err := c.generate(ctx, messages, llms.WithModel(c.model))
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return content, nil
}

// ChatJSON asks for a JSON reply and decodes it into result. Replies wrapped
// in markdown fences or surrounded by prose are still accepted.
func (c *OllamaClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.generate(ctx, messages,
		llms.WithModel(c.model),
		llms.WithJSONMode(),
		llms.WithTemperature(planTemperature),
	)
	if err != nil {
		return fmt.Errorf("ollama chat json: %w", err)
	}
	if err := decodeJSON(content, result); err != nil {
		logger.Debug("undecodable ollama reply", "model", c.model, "reply", content)
		return err
	}
	return nil
}

func (c *OllamaClient) generate(ctx context.Context, messages []Message, opts ...llms.CallOption) (string, error) {
	start := time.Now()
	resp, err := c.client.GenerateContent(ctx, toLangChainMessages(messages), opts...)
	if err != nil {
		return "", err
	}
	logger.Debug("ollama reply", "model", c.model, "server", c.baseURL, "messages", len(messages), "took", time.Since(start))
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Content, nil
}

// toLangChainMessages maps echo roles onto langchaingo message types.
// Unknown roles are sent as the user.
func toLangChainMessages(messages []Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch strings.ToLower(msg.Role) {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		result = append(result, llms.TextParts(role, msg.Content))
	}
	return result
}

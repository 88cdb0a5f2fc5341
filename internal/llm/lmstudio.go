package llm

import (
	"errors"
	"os"
	"strings"
)

const defaultLMStudioBaseURL = "http://localhost:1234/v1"

// NewLMStudioClient creates a client for LM Studio's OpenAI-compatible server.
// LM Studio ignores the key, so a placeholder is used when none is set.
func NewLMStudioClient(model, baseURL string) (*OpenAIClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("lm studio model is required")
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}

	apiKey := os.Getenv("LMSTUDIO_API_KEY")
	if apiKey == "" {
		apiKey = "lm-studio"
	}

	return newOpenAICompatible(model, baseURL, apiKey), nil
}

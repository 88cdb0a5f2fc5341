package llm

import "testing"

func TestNewClient_Ollama(t *testing.T) {
	client, err := NewClient("ollama", "llama3", "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	ollamaClient, ok := client.(*OllamaClient)
	if !ok {
		t.Fatalf("expected OllamaClient, got %T", client)
	}
	if ollamaClient.baseURL != defaultOllamaBaseURL {
		t.Errorf("baseURL = %q, want %q", ollamaClient.baseURL, defaultOllamaBaseURL)
	}
}

func TestNewClient_LMStudio(t *testing.T) {
	client, err := NewClient("lmstudio", "llama3", "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	lmStudioClient, ok := client.(*OpenAIClient)
	if !ok {
		t.Fatalf("expected OpenAIClient, got %T", client)
	}
	if lmStudioClient.baseURL != defaultLMStudioBaseURL {
		t.Errorf("baseURL = %q, want %q", lmStudioClient.baseURL, defaultLMStudioBaseURL)
	}
}

func TestNewClient_OpenAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	client, err := NewClient("openai", "gpt-4o", "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	openAIClient, ok := client.(*OpenAIClient)
	if !ok {
		t.Fatalf("expected OpenAIClient, got %T", client)
	}
	if openAIClient.model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", openAIClient.model)
	}
}

func TestNewClient_OpenAIMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewClient("openai", "gpt-4o", ""); err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is unset")
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient("unknown", "model", "")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestIsLocal(t *testing.T) {
	tests := []struct {
		provider string
		want     bool
	}{
		{"openai", false},
		{"", false},
		{"ollama", true},
		{"LMStudio", true},
		{"lm-studio", true},
	}

	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			if got := IsLocal(tc.provider); got != tc.want {
				t.Errorf("IsLocal(%q) = %v, want %v", tc.provider, got, tc.want)
			}
		})
	}
}

// Package openai provides a generation service adapter using OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chorus-labs/chorus-cli/internal/adapters/driven/llm"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI generator.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the generation model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Generator produces context-constrained answers using OpenAI API.
type Generator struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	promptStore driven.PromptStore
}

// chatCompletionRequest is the OpenAI chat completions request format.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatMessage is the OpenAI chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI chat completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewGenerator creates a new OpenAI generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Answer generates an answer bounded by contextText. The system prompt
// instructs the model to emit a refusal sentinel when the context does
// not support an answer; the sentinel is translated into grounded=false.
func (g *Generator) Answer(ctx context.Context, question, contextText string) (string, bool, error) {
	system := g.loadPrompt(driven.PromptAnswerSystem, llm.DefaultAnswerSystemPrompt)
	userTemplate := g.loadPrompt(driven.PromptAnswerUser, llm.DefaultAnswerUserPrompt)

	raw, err := g.chat(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf(userTemplate, contextText, question)},
	}, 0.1, 0)
	if err != nil {
		return "", false, fmt.Errorf("answer: %w", err)
	}

	answer, grounded := llm.ParseAnswer(raw)
	return answer, grounded, nil
}

// RewriteQuery reformulates a question for better retrieval recall.
func (g *Generator) RewriteQuery(ctx context.Context, question string) (string, error) {
	promptTemplate := g.loadPrompt(driven.PromptQueryRewrite, llm.DefaultQueryRewritePrompt)

	result, err := g.chat(ctx, []chatMessage{
		{Role: "user", Content: fmt.Sprintf(promptTemplate, question)},
	}, 0.3, 100)
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// chat runs one chat completion exchange.
func (g *Generator) chat(ctx context.Context, messages []chatMessage, temperature float64, maxTokens int) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: no completion returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (g *Generator) loadPrompt(name, fallback string) string {
	if g.promptStore == nil {
		return fallback
	}
	prompt, err := g.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// ModelName returns the name of the generation model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the generator uses hardcoded default prompts.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.promptStore = store
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (g *Generator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

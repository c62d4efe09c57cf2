// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/chorus-labs/chorus-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/chorus-labs/chorus-cli/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/chorus-labs/chorus-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/chorus-labs/chorus-cli/internal/adapters/driven/llm/openai"
	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateGenerator creates a generator and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateGenerator(settings *domain.GeneratorSettings, prompts driven.PromptStore) (driven.Generator, error) {
	gen, err := CreateGenerator(settings, prompts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneratorUnavailable, err)
	}
	if gen == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := gen.Ping(ctx); err != nil {
		gen.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrGeneratorUnavailable, err)
	}

	return gen, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerator creates the appropriate generator based on settings.
// Returns nil if the provider is not configured.
func CreateGenerator(settings *domain.GeneratorSettings, prompts driven.PromptStore) (driven.Generator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		gen := ollamallm.NewGenerator(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		gen.SetPromptStore(prompts)
		return gen, nil

	case domain.AIProviderOpenAI:
		gen, err := openaillm.NewGenerator(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		gen.SetPromptStore(prompts)
		return gen, nil

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", settings.Provider)
	}
}

package domain

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	// Provider selects the embedding backend.
	Provider AIProvider

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Model is the embedding model name.
	Model string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true if the settings are usable: the provider is
// recognised and any required credentials are present.
func (s *EmbeddingSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// GeneratorSettings configures the generation service.
type GeneratorSettings struct {
	// Provider selects the generation backend.
	Provider AIProvider

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Model is the generation model name.
	Model string
}

// IsConfigured returns true if the settings are usable: the provider is
// recognised and any required credentials are present.
func (s *GeneratorSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

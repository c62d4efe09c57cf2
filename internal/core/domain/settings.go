package domain

// Retrieval pipeline defaults. These are documented configuration
// defaults; every value can be overridden through the config store.
const (
	// DefaultCollection is the vector store collection name.
	DefaultCollection = "chorus"

	// DefaultRRFConstant is the smoothing constant k in the
	// reciprocal rank fusion formula.
	DefaultRRFConstant = 60

	// DefaultOverfetch is the over-fetch multiplier: each backend is
	// asked for Overfetch*TopK candidates before fusion truncates.
	DefaultOverfetch = 3

	// DefaultToolCallCap bounds tool invocations per agent turn.
	DefaultToolCallCap = 3

	// DefaultBatchSize bounds the number of chunks embedded and
	// upserted per ingestion batch.
	DefaultBatchSize = 32
)

// Settings is the configuration surface consumed by the core. It is
// assembled by the caller (CLI) from the config store; the core does
// not own config loading.
type Settings struct {
	// Collection is the vector store collection name.
	Collection string

	// TopK is the default number of results per query.
	TopK int

	// DenseWeight and SparseWeight are the default fusion weights.
	DenseWeight  float64
	SparseWeight float64

	// RRFConstant is the fusion smoothing constant.
	RRFConstant int

	// Overfetch is the per-backend over-fetch multiplier.
	Overfetch int

	// ToolCallCap bounds tool invocations per agent turn.
	ToolCallCap int

	// BatchSize bounds ingestion batch size. Tunable, not a
	// correctness constraint.
	BatchSize int
}

// DefaultSettings returns settings with all documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Collection:   DefaultCollection,
		TopK:         DefaultTopK,
		DenseWeight:  DefaultDenseWeight,
		SparseWeight: DefaultSparseWeight,
		RRFConstant:  DefaultRRFConstant,
		Overfetch:    DefaultOverfetch,
		ToolCallCap:  DefaultToolCallCap,
		BatchSize:    DefaultBatchSize,
	}
}

// Normalise replaces zero or out-of-range values with defaults so a
// partially populated config file still yields a usable pipeline.
func (s Settings) Normalise() Settings {
	def := DefaultSettings()
	if s.Collection == "" {
		s.Collection = def.Collection
	}
	if s.TopK <= 0 {
		s.TopK = def.TopK
	}
	if s.DenseWeight < 0 || s.DenseWeight > 1 {
		s.DenseWeight = def.DenseWeight
	}
	if s.SparseWeight < 0 || s.SparseWeight > 1 {
		s.SparseWeight = def.SparseWeight
	}
	if s.RRFConstant <= 0 {
		s.RRFConstant = def.RRFConstant
	}
	if s.Overfetch < 1 {
		s.Overfetch = def.Overfetch
	}
	if s.ToolCallCap <= 0 {
		s.ToolCallCap = def.ToolCallCap
	}
	if s.BatchSize <= 0 {
		s.BatchSize = def.BatchSize
	}
	return s
}

// AIProvider identifies a service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Command chorus is the hybrid retrieval CLI. It wires the driven
// adapters (vector store, chunk store, embedding, generation, config)
// into the core services and hands them to the cobra command tree.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/chorus-labs/chorus-cli/internal/adapters/driven/ai"
	configfile "github.com/chorus-labs/chorus-cli/internal/adapters/driven/config/file"
	"github.com/chorus-labs/chorus-cli/internal/adapters/driven/storage/sqlite"
	"github.com/chorus-labs/chorus-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/chorus-labs/chorus-cli/internal/adapters/driven/vectorstore/qdrant"
	"github.com/chorus-labs/chorus-cli/internal/adapters/driving/cli"
	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
	"github.com/chorus-labs/chorus-cli/internal/core/services"
	"github.com/chorus-labs/chorus-cli/internal/logger"
	"github.com/chorus-labs/chorus-cli/internal/sparse"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// Environment overrides from a local .env, if present.
	_ = godotenv.Load()

	svcs, cleanup := buildServices()
	defer cleanup()
	cli.SetServices(svcs)

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}

// buildServices assembles the adapter stack from config. Failures are
// reported as warnings and leave the affected service nil; each command
// checks for the services it needs and fails with a clear message.
func buildServices() (cli.Services, func()) {
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		logger.Warn("Config store unavailable, using defaults: %v", err)
		cfg = &configfile.ConfigStore{}
	}

	var prompts driven.PromptStore
	if ps, err := configfile.NewPromptStore(""); err != nil {
		logger.Warn("Prompt store unavailable, using built-in prompts: %v", err)
	} else {
		prompts = ps
	}

	settings := loadSettings(cfg)

	embedder, err := ai.CreateAndValidateEmbeddingService(embeddingSettings(cfg))
	if err != nil {
		logger.Warn("Embedding service unavailable: %v", err)
	} else if embedder != nil {
		closers = append(closers, func() { embedder.Close() })
	}

	generator, err := ai.CreateAndValidateGenerator(generatorSettings(cfg), prompts)
	if err != nil {
		logger.Warn("Generator unavailable: %v", err)
	} else if generator != nil {
		closers = append(closers, func() { generator.Close() })
	}

	vectors := buildVectorStore(cfg)
	closers = append(closers, func() { vectors.Close() })

	chunks, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		logger.Warn("Chunk store unavailable: %v", err)
	} else {
		closers = append(closers, func() { chunks.Close() })
	}

	var svcs cli.Services
	if embedder == nil || chunks == nil {
		return svcs, cleanup
	}

	encoder := sparse.NewEncoder()
	search := services.NewSearchService(vectors, chunks, embedder, encoder, settings)

	svcs.Ingest = services.NewIndexer(vectors, chunks, embedder, encoder, settings)
	svcs.Search = search
	if generator != nil {
		tool := services.NewRetrievalTool(search, settings)
		svcs.Ask = services.NewAgentService(tool, generator, settings)
	}
	return svcs, cleanup
}

// buildVectorStore selects the vector backend. Qdrant is the default;
// the in-memory store is available for throwaway experiments.
func buildVectorStore(cfg driven.ConfigStore) driven.VectorStore {
	if cfg.GetString("vector_store.provider") == "memory" {
		logger.Warn("Using in-memory vector store, the index will not persist")
		return memory.NewStore()
	}
	return qdrant.NewStore(qdrant.Config{
		BaseURL: cfg.GetString("vector_store.url"),
		APIKey:  os.Getenv("QDRANT_API_KEY"),
	})
}

// loadSettings reads the retrieval pipeline settings. Missing keys
// come back as zero values and are replaced by Normalise.
func loadSettings(cfg driven.ConfigStore) domain.Settings {
	return domain.Settings{
		Collection:   cfg.GetString("retrieval.collection"),
		TopK:         cfg.GetInt("retrieval.top_k"),
		DenseWeight:  cfg.GetFloat("retrieval.dense_weight"),
		SparseWeight: cfg.GetFloat("retrieval.sparse_weight"),
		RRFConstant:  cfg.GetInt("retrieval.rrf_constant"),
		Overfetch:    cfg.GetInt("retrieval.overfetch"),
		ToolCallCap:  cfg.GetInt("agent.tool_call_cap"),
		BatchSize:    cfg.GetInt("ingest.batch_size"),
	}.Normalise()
}

func embeddingSettings(cfg driven.ConfigStore) *domain.EmbeddingSettings {
	provider := domain.AIProvider(cfg.GetString("embedding.provider"))
	if provider == "" {
		provider = domain.AIProviderOllama
	}
	return &domain.EmbeddingSettings{
		Provider:   provider,
		BaseURL:    cfg.GetString("embedding.base_url"),
		APIKey:     apiKeyFor(provider),
		Model:      cfg.GetString("embedding.model"),
		Dimensions: cfg.GetInt("embedding.dimensions"),
	}
}

func generatorSettings(cfg driven.ConfigStore) *domain.GeneratorSettings {
	provider := domain.AIProvider(cfg.GetString("generation.provider"))
	if provider == "" {
		provider = domain.AIProviderOllama
	}
	return &domain.GeneratorSettings{
		Provider: provider,
		BaseURL:  cfg.GetString("generation.base_url"),
		APIKey:   apiKeyFor(provider),
		Model:    cfg.GetString("generation.model"),
	}
}

func apiKeyFor(provider domain.AIProvider) string {
	if provider == domain.AIProviderOpenAI {
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

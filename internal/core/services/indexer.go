package services

import (
	"context"
	"fmt"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driving"
	"github.com/chorus-labs/chorus-cli/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IngestService = (*Indexer)(nil)

// probeText is embedded once before collection creation to discover
// the model's dense dimensionality.
const probeText = "dimensionality probe"

// Indexer builds the dual-represented index from a chunk source.
// Ingestion is idempotent: an existing non-empty collection
// short-circuits the build, so repeated startups never duplicate
// entries. Concurrent builds against the same collection are not safe
// and must be serialised by the caller.
type Indexer struct {
	store      driven.VectorStore
	chunkStore driven.ChunkStore
	embedder   driven.EmbeddingService
	encoder    driven.SparseEncoder
	settings   domain.Settings
}

// NewIndexer creates an index builder.
func NewIndexer(
	store driven.VectorStore,
	chunkStore driven.ChunkStore,
	embedder driven.EmbeddingService,
	encoder driven.SparseEncoder,
	settings domain.Settings,
) *Indexer {
	return &Indexer{
		store:      store,
		chunkStore: chunkStore,
		embedder:   embedder,
		encoder:    encoder,
		settings:   settings.Normalise(),
	}
}

// BuildOrReuse populates the collection from the chunk source unless
// it already exists and is non-empty, in which case the call is a
// no-op returning Created=false.
//
// A collection left partially populated by a failed build also passes
// the non-empty gate; resuming it is unsafe. Use Rebuild to recover.
func (ix *Indexer) BuildOrReuse(ctx context.Context, source driven.ChunkSource) (driving.BuildResult, error) {
	logger.Section("Index Build")

	name := ix.settings.Collection
	exists, err := ix.store.CollectionExists(ctx, name)
	if err != nil {
		return driving.BuildResult{}, fmt.Errorf("check collection %q: %w", name, err)
	}

	if exists {
		count, err := ix.store.Count(ctx, name)
		if err != nil {
			return driving.BuildResult{}, fmt.Errorf("count collection %q: %w", name, err)
		}
		if count > 0 {
			logger.Info("Collection %q already holds %d entries, reusing", name, count)
			return driving.BuildResult{Created: false, EntryCount: count}, nil
		}
		logger.Debug("Collection %q exists but is empty, populating", name)
	}

	if !exists {
		if err := ix.createCollection(ctx, name); err != nil {
			return driving.BuildResult{}, err
		}
	}

	total, err := ix.populate(ctx, name, source)
	if err != nil {
		return driving.BuildResult{}, err
	}

	logger.Info("Build complete: %d entries in %q", total, name)
	return driving.BuildResult{Created: true, EntryCount: total}, nil
}

// Rebuild drops any existing collection and chunk mirror, then builds
// from scratch. The only supported recovery from a partial build.
func (ix *Indexer) Rebuild(ctx context.Context, source driven.ChunkSource) (driving.BuildResult, error) {
	logger.Section("Index Rebuild")

	name := ix.settings.Collection
	exists, err := ix.store.CollectionExists(ctx, name)
	if err != nil {
		return driving.BuildResult{}, fmt.Errorf("check collection %q: %w", name, err)
	}
	if exists {
		logger.Info("Dropping collection %q", name)
		if err := ix.store.DropCollection(ctx, name); err != nil {
			return driving.BuildResult{}, fmt.Errorf("drop collection %q: %w", name, err)
		}
	}
	if err := ix.chunkStore.DeleteAll(ctx); err != nil {
		return driving.BuildResult{}, fmt.Errorf("clear chunk store: %w", err)
	}

	return ix.BuildOrReuse(ctx, source)
}

// createCollection declares the collection schema. Dimensionality
// comes from a single probe embedding rather than adapter
// configuration, so the schema always matches what the model actually
// produces.
func (ix *Indexer) createCollection(ctx context.Context, name string) error {
	probe, err := ix.embedder.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("probe embedding: %w", err)
	}
	if len(probe) == 0 {
		return fmt.Errorf("probe embedding: model %q returned empty vector", ix.embedder.ModelName())
	}
	if configured := ix.embedder.Dimensions(); configured != 0 && configured != len(probe) {
		logger.Warn("Configured dimensions %d differ from probed %d, using probe", configured, len(probe))
	}

	schema := driven.CollectionSchema{
		Name:          name,
		Dimensions:    len(probe),
		Metric:        driven.DistanceCosine,
		SparseVersion: ix.encoder.Version(),
	}

	logger.Info("Creating collection %q (dims=%d, metric=%s, sparse=%s)",
		name, schema.Dimensions, schema.Metric, schema.SparseVersion)

	if err := ix.store.CreateCollection(ctx, schema); err != nil {
		return fmt.Errorf("create collection %q: %w", name, err)
	}
	return nil
}

// populate streams chunks into the store in bounded batches. Entry
// preparation (embedding + sparse encoding) for the next batch
// overlaps the upsert of the previous one, so peak memory stays at a
// couple of batches regardless of corpus size.
func (ix *Indexer) populate(ctx context.Context, name string, source driven.ChunkSource) (int, error) {
	chunksCh, errsCh := source.Chunks(ctx)

	type preparedBatch struct {
		index   int
		chunks  []domain.Chunk
		entries []domain.IndexEntry
	}

	prepared := make(chan preparedBatch, 1)
	prepErr := make(chan error, 1)

	// Stage 1: batch, embed, encode.
	go func() {
		defer close(prepared)

		batch := make([]domain.Chunk, 0, ix.settings.BatchSize)
		index := 0

		flush := func() bool {
			if len(batch) == 0 {
				return true
			}
			entries, err := ix.prepareEntries(ctx, batch)
			if err != nil {
				prepErr <- &domain.IngestionError{Batch: index, Err: err}
				return false
			}
			chunks := make([]domain.Chunk, len(batch))
			copy(chunks, batch)
			select {
			case prepared <- preparedBatch{index: index, chunks: chunks, entries: entries}:
			case <-ctx.Done():
				prepErr <- ctx.Err()
				return false
			}
			index++
			batch = batch[:0]
			return true
		}

		for chunksCh != nil || errsCh != nil {
			select {
			case <-ctx.Done():
				prepErr <- ctx.Err()
				return

			case err, ok := <-errsCh:
				if !ok {
					errsCh = nil
					continue
				}
				prepErr <- fmt.Errorf("chunk source: %w", err)
				return

			case chunk, ok := <-chunksCh:
				if !ok {
					chunksCh = nil
					continue
				}
				if chunk.Text == "" {
					logger.Warn("Skipping empty chunk %s from %s", chunk.ID, chunk.SourcePath)
					continue
				}
				batch = append(batch, chunk)
				if len(batch) >= ix.settings.BatchSize {
					if !flush() {
						return
					}
				}
			}
		}
		flush()
	}()

	// Stage 2: upsert. On failure the remaining prepared batches are
	// drained so stage 1 can finish and exit.
	total := 0
	var buildErr error
	for pb := range prepared {
		if buildErr != nil {
			continue
		}
		if err := ix.store.Upsert(ctx, name, pb.entries); err != nil {
			buildErr = &domain.IngestionError{Batch: pb.index, Err: err}
			continue
		}
		if err := ix.chunkStore.SaveChunks(ctx, pb.chunks); err != nil {
			buildErr = &domain.IngestionError{Batch: pb.index, Err: err}
			continue
		}
		total += len(pb.entries)
		logger.Debug("Batch %d: %d entries upserted (%d total)", pb.index, len(pb.entries), total)
	}
	if buildErr != nil {
		return 0, buildErr
	}

	select {
	case err := <-prepErr:
		return 0, err
	default:
	}

	return total, nil
}

// prepareEntries turns a chunk batch into index entries.
func (ix *Indexer) prepareEntries(ctx context.Context, batch []domain.Chunk) ([]domain.IndexEntry, error) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	dense, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(dense) != len(batch) {
		return nil, fmt.Errorf("embed batch: got %d vectors for %d chunks", len(dense), len(batch))
	}

	entries := make([]domain.IndexEntry, len(batch))
	for i, chunk := range batch {
		entries[i] = domain.IndexEntry{
			ID:     chunk.ID,
			Dense:  dense[i],
			Sparse: ix.encoder.Encode(chunk.Text),
			Text:   chunk.Text,
			Metadata: map[string]any{
				"source_path":    chunk.SourcePath,
				"sequence_index": chunk.SequenceIndex,
				"sparse_version": ix.encoder.Version(),
			},
		}
	}
	return entries, nil
}

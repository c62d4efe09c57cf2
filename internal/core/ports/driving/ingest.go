package driving

import (
	"context"

	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
)

// BuildResult reports the outcome of an ingestion run.
type BuildResult struct {
	// Created is true when the collection was built by this call and
	// false when an existing non-empty collection was reused.
	Created bool

	// EntryCount is the number of entries in the collection after the
	// call.
	EntryCount int
}

// IngestService builds the searchable index from a chunk source.
type IngestService interface {
	// BuildOrReuse creates and populates the collection if it does
	// not already exist and is non-empty; otherwise it is a no-op.
	// Repeated calls never duplicate entries.
	BuildOrReuse(ctx context.Context, source driven.ChunkSource) (BuildResult, error)

	// Rebuild drops any existing collection and builds it from
	// scratch. This is the only supported way to recover from a
	// partial build.
	Rebuild(ctx context.Context, source driven.ChunkSource) (BuildResult, error)
}

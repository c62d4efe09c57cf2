package domain

// Chunk is a contiguous segment of a source document. Chunks are
// produced once by a chunk source and are immutable afterwards.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content. Never empty for a valid chunk.
	Text string

	// SourcePath is the path of the originating document.
	SourcePath string

	// SequenceIndex is the ordinal position within the document.
	SequenceIndex int
}

// IndexEntry is the dual-represented form of a chunk as persisted in
// the vector store: one dense semantic vector and one sparse lexical
// vector, plus the original text and provenance metadata.
type IndexEntry struct {
	// ID matches the originating Chunk.ID.
	ID string

	// Dense is the semantic embedding. Its length is fixed per
	// collection and declared at collection creation time.
	Dense []float32

	// Sparse maps term ids to positive weights. May be empty, but
	// never contains zero-weight terms.
	Sparse map[uint32]float32

	// Text is the chunk content, stored alongside the vectors so
	// results can be hydrated without a second lookup.
	Text string

	// Metadata holds provenance key-value pairs (source path,
	// sequence index, encoder version).
	Metadata map[string]any
}

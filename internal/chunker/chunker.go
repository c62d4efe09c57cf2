// Package chunker splits document text into fixed-size overlapping
// chunks suitable for indexing.
package chunker

import (
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Chunker splits document content into fixed-size chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave the window moving forward.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split divides content into chunks tagged with sourcePath and
// sequential indices. Empty content produces no chunks.
func (c *Chunker) Split(content, sourcePath string) []domain.Chunk {
	if content == "" {
		return nil
	}

	contentLen := len(content)
	estimated := (contentLen / (c.chunkSize - c.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	seq := 0
	start := 0

	for start < contentLen {
		end := start + c.chunkSize
		if end > contentLen {
			end = contentLen
		}
		// Never cut a multi-byte rune at the window edge.
		if end < contentLen {
			trimmed := end
			for trimmed > start && !utf8.RuneStart(content[trimmed]) {
				trimmed--
			}
			// A window smaller than one rune keeps the byte cut.
			if trimmed > start {
				end = trimmed
			}
		}

		chunks = append(chunks, domain.Chunk{
			ID:            uuid.New().String(),
			Text:          content[start:end],
			SourcePath:    sourcePath,
			SequenceIndex: seq,
		})
		seq++

		if end == contentLen {
			break
		}
		next := end - c.overlap
		for next > start && next < contentLen && !utf8.RuneStart(content[next]) {
			next++
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorus-labs/chorus-cli/internal/chunker"
	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

// collect drains the source into a slice, failing on any source error.
func collect(t *testing.T, src *Source) []domain.Chunk {
	t.Helper()
	chunksCh, errsCh := src.Chunks(context.Background())

	var chunks []domain.Chunk
	for chunk := range chunksCh {
		chunks = append(chunks, chunk)
	}
	require.NoError(t, <-errsCh)
	return chunks
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestChunks_WalksTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha content")
	writeFile(t, dir, "sub/b.md", "bravo content")
	writeFile(t, dir, "c.bin", "binary, skipped")
	writeFile(t, dir, "noext", "no extension, skipped")

	src := New(dir, nil)
	chunks := collect(t, src)

	require.Len(t, chunks, 2)
	paths := []string{chunks[0].SourcePath, chunks[1].SourcePath}
	assert.Contains(t, paths, "a.txt")
	assert.Contains(t, paths, filepath.Join("sub", "b.md"))
}

func TestChunks_SkipsHidden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".hidden.txt", "hidden file")
	writeFile(t, dir, ".git/notes.txt", "inside hidden dir")
	writeFile(t, dir, "visible.txt", "visible")

	src := New(dir, nil)
	chunks := collect(t, src)

	require.Len(t, chunks, 1)
	assert.Equal(t, "visible.txt", chunks[0].SourcePath)
}

func TestChunks_StableOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zebra.txt", "z")
	writeFile(t, dir, "apple.txt", "a")
	writeFile(t, dir, "mango.txt", "m")

	src := New(dir, nil)

	first := collect(t, src)
	second := collect(t, src)

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for i := range first {
		assert.Equal(t, first[i].SourcePath, second[i].SourcePath)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
	// Lexical walk order.
	assert.Equal(t, "apple.txt", first[0].SourcePath)
	assert.Equal(t, "mango.txt", first[1].SourcePath)
	assert.Equal(t, "zebra.txt", first[2].SourcePath)
}

func TestChunks_SplitsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.txt", strings.Repeat("x", 250))

	src := New(dir, chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(20)))
	chunks := collect(t, src)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.SequenceIndex)
		assert.Equal(t, "big.txt", chunk.SourcePath)
		assert.NotEmpty(t, chunk.ID)
	}
}

func TestChunks_MissingRoot(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	chunksCh, errsCh := src.Chunks(context.Background())

	for range chunksCh {
	}
	assert.Error(t, <-errsCh)
}

func TestChunks_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", strings.Repeat("x", 5000))

	src := New(dir, chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(0)))
	ctx, cancel := context.WithCancel(context.Background())

	chunksCh, errsCh := src.Chunks(ctx)
	<-chunksCh // take one, then cancel mid-stream
	cancel()

	for range chunksCh {
	}
	assert.ErrorIs(t, <-errsCh, context.Canceled)
}

func TestWatch_ReportsTextFileChanges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "start")

	src := New(dir, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := src.Watch(ctx)
	require.NoError(t, err)

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "b.txt", "new file")

	select {
	case path := <-changes:
		assert.Equal(t, filepath.Join(dir, "b.txt"), path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatch_IgnoresNonTextFiles(t *testing.T) {
	dir := t.TempDir()

	src := New(dir, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := src.Watch(ctx)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "image.png", "not text")
	writeFile(t, dir, "notes.txt", "text")

	select {
	case path := <-changes:
		assert.Equal(t, filepath.Join(dir, "notes.txt"), path,
			"only the text file change should be reported")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/a/.b/c.txt", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/./file", false},
		{"file.hidden", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

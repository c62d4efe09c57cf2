package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorus-labs/chorus-cli/internal/adapters/driven/llm"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
)

func TestPromptStore_LoadDefault(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerSystem)

	require.NoError(t, err)
	assert.Equal(t, llm.DefaultAnswerSystemPrompt, prompt)
}

func TestPromptStore_CreatesDefaultFilesOnFirstLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptQueryRewrite)
	require.NoError(t, err)

	for _, name := range []string{driven.PromptAnswerSystem, driven.PromptAnswerUser, driven.PromptQueryRewrite} {
		_, err := os.Stat(filepath.Join(dir, name+".txt"))
		assert.NoError(t, err, "expected %s.txt to exist", name)
	}
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.NoError(t, err)
}

func TestPromptStore_UserOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "Rewrite carefully: %s"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, driven.PromptQueryRewrite+".txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQueryRewrite)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_ReloadPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptQueryRewrite)
	require.NoError(t, err)

	edited := "Edited: %s"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, driven.PromptQueryRewrite+".txt"), []byte(edited), 0600))

	// Cached value survives until Reload.
	cached, err := store.Load(driven.PromptQueryRewrite)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptQueryRewrite)
	require.NoError(t, err)
	assert.Equal(t, edited, fresh)
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no_such_prompt")
	assert.Error(t, err)
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorus-labs/chorus-cli/internal/core/ports/driving"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [path]", ingestCmd.Use)
}

func TestIngestCmd_BuildsIndex(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	stub := ingestService.(*stubIngestService)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("content"), 0644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", dir})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 1, stub.buildCalls)
	assert.Equal(t, 0, stub.rebuildCalls)
	assert.Contains(t, buf.String(), "Index built: 3 entries.")
}

func TestIngestCmd_RebuildFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	stub := ingestService.(*stubIngestService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "--rebuild", t.TempDir()})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestRebuild = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 0, stub.buildCalls)
	assert.Equal(t, 1, stub.rebuildCalls)
}

func TestIngestCmd_ReportsReuse(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService.(*stubIngestService).result = driving.BuildResult{Created: false, EntryCount: 42}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", t.TempDir()})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "already exists (42 entries)")
	assert.Contains(t, buf.String(), "--rebuild")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", t.TempDir()})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorContains(t, err, "ingest service not configured")
}

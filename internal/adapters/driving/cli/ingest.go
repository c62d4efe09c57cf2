package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chorus-labs/chorus-cli/internal/adapters/driven/chunksource/filesystem"
	"github.com/chorus-labs/chorus-cli/internal/chunker"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driving"
	"github.com/chorus-labs/chorus-cli/internal/logger"
)

var (
	ingestRebuild   bool
	ingestWatch     bool
	ingestChunkSize int
	ingestOverlap   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Build the search index from a directory of documents",
	Long: `Chunks, embeds and indexes every text document under the given
directory. Ingestion is idempotent: if the index already exists and is
non-empty the command is a no-op. Use --rebuild to force a fresh build,
which is also the recovery path after a failed partial build.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "drop any existing index and build from scratch")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep running and rebuild when documents change")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", chunker.DefaultChunkSize, "chunk size in characters")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", chunker.DefaultOverlap, "overlap between chunks in characters")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	source := filesystem.New(args[0], chunker.New(
		chunker.WithChunkSize(ingestChunkSize),
		chunker.WithOverlap(ingestOverlap),
	))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	build := ingestService.BuildOrReuse
	if ingestRebuild {
		build = ingestService.Rebuild
	}

	result, err := build(ctx, source)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printBuildResult(cmd, result)

	if !ingestWatch {
		return nil
	}
	return watchAndRebuild(ctx, cmd, source)
}

// watchAndRebuild blocks, rebuilding the index whenever an indexable
// document under the source root changes. Returns when interrupted.
func watchAndRebuild(ctx context.Context, cmd *cobra.Command, source *filesystem.Source) error {
	changes, err := source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	cmd.Println("Watching for changes (Ctrl-C to stop)...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected: %s", path)
			cmd.Printf("Change detected (%s), rebuilding...\n", path)

			result, err := ingestService.Rebuild(ctx, source)
			if err != nil {
				// Keep watching; the next change may succeed.
				cmd.PrintErrf("Rebuild failed: %v\n", err)
				continue
			}
			printBuildResult(cmd, result)
		}
	}
}

func printBuildResult(cmd *cobra.Command, result driving.BuildResult) {
	if result.Created {
		cmd.Printf("Index built: %d entries.\n", result.EntryCount)
	} else {
		cmd.Printf("Index already exists (%d entries), nothing to do. Use --rebuild to force.\n", result.EntryCount)
	}
}

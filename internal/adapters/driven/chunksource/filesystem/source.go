// Package filesystem provides a chunk source that walks a directory
// tree, reads text documents and splits them into chunks. It can also
// watch the tree for changes so the index can be rebuilt on edit.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/chorus-labs/chorus-cli/internal/chunker"
	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
	"github.com/chorus-labs/chorus-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ChunkSource = (*Source)(nil)

// textExtensions are the file extensions treated as indexable text.
var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".rst":  true,
	".adoc": true,
}

// Source yields chunks from text files under a root directory.
// Traversal order is lexical, so repeated runs over an unchanged tree
// produce chunks in the same order.
type Source struct {
	rootPath string
	splitter *chunker.Chunker
}

// New creates a filesystem chunk source rooted at rootPath.
func New(rootPath string, splitter *chunker.Chunker) *Source {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &Source{
		rootPath: rootPath,
		splitter: splitter,
	}
}

// Chunks walks the tree and streams chunks. Both channels are closed
// when the walk finishes; a walk or read failure is reported on the
// error channel and terminates the sequence.
func (s *Source) Chunks(ctx context.Context) (<-chan domain.Chunk, <-chan error) {
	chunksCh := make(chan domain.Chunk)
	errsCh := make(chan error, 1)

	go func() {
		defer close(chunksCh)
		defer close(errsCh)

		err := filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if isHidden(path) && path != s.rootPath {
					return filepath.SkipDir
				}
				return nil
			}
			if !s.shouldIndex(path) {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			rel, err := filepath.Rel(s.rootPath, path)
			if err != nil {
				rel = path
			}

			for _, chunk := range s.splitter.Split(string(content), rel) {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case chunksCh <- chunk:
				}
			}
			return nil
		})
		if err != nil {
			errsCh <- err
		}
	}()

	return chunksCh, errsCh
}

// Watch reports paths of indexable files that change under the root.
// The returned channel is closed when ctx is cancelled. Create and
// write events are reported; removals and renames are reported too so
// the caller knows the index is stale.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the root and every non-hidden subdirectory.
	err = filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isHidden(path) && path != s.rootPath {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", s.rootPath, err)
	}

	changes := make(chan string)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				path, relevant := s.handleFsEvent(watcher, event)
				if !relevant {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case changes <- path:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent decides whether a filesystem event concerns an
// indexable document. New directories are added to the watch as a side
// effect.
func (s *Source) handleFsEvent(watcher *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if isHidden(event.Name) {
		return "", false
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New subdirectory: watch it, but a directory itself is not
			// an indexable change.
			if err := watcher.Add(event.Name); err != nil {
				logger.Warn("Failed to watch new directory %s: %v", event.Name, err)
			}
			return "", false
		}
	}

	if !s.shouldIndex(event.Name) {
		return "", false
	}

	if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		return event.Name, true
	}
	return "", false
}

// shouldIndex reports whether the path is an indexable text document.
func (s *Source) shouldIndex(path string) bool {
	if isHidden(path) {
		return false
	}
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}

// isHidden reports whether any element of the path starts with a dot.
// The "." and ".." elements are not considered hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

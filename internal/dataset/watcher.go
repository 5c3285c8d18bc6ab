package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fileSettle is how long the watcher waits after the last write before
// refreshing; spreadsheet tools save in several steps.
const fileSettle = 300 * time.Millisecond

// WatchFile refreshes the store whenever path changes on disk. The parent
// directory is watched so atomic replace-by-rename saves are seen. It blocks
// until ctx is done.
func (s *Store) WatchFile(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	s.logger.Info("Watching %s for changes", target)

	settle := time.NewTimer(fileSettle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle.Reset(fileSettle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("File watcher error: %v", err)
		case <-settle.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn("Refresh after change to %s failed, keeping previous dataset: %v", target, err)
			}
		}
	}
}

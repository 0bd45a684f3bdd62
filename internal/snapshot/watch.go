package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch watches every registered party's directory for changes and calls
// onChange once for every write, create, remove, or rename event; events are
// not batched or debounced. This lets a long-running
// CLI session can re-invoke the materializer the way a real firehose
// subscription would (§6: "re-invoked over the refreshed record set"). It
// blocks until ctx is cancelled.
func (l *Loader) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("snapshot: creating watcher: %w", err)
	}
	defer watcher.Close()

	for party, src := range l.registry.Parties {
		if err := watcher.Add(src.Directory); err != nil {
			l.logger.Warn("snapshot: cannot watch party directory", slog.String("party", party), slog.String("directory", src.Directory), slog.String("error", err.Error()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			l.logger.Debug("snapshot: change detected", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("snapshot: watcher error", slog.String("error", err.Error()))
		}
	}
}

package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"visionspeak/internal/logger"
)

// DefaultSettleDelay is how long a file must stay unchanged before it is emitted.
const DefaultSettleDelay = 300 * time.Millisecond

// Watcher reports image files created or rewritten in a directory.
type Watcher struct {
	dir    string
	settle time.Duration
	log    zerolog.Logger
}

// NewWatcher watches dir. A zero settle uses DefaultSettleDelay.
func NewWatcher(dir string, settle time.Duration) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &Watcher{dir: dir, settle: settle, log: logger.WithComponent("watcher")}, nil
}

// Watch sends the path of every settled image file on the returned channel
// until ctx is canceled. Writes in quick succession are debounced so that a
// file is emitted once it has been quiet for the settle delay.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.log.Info().Str("dir", w.dir).Dur("settle", w.settle).Msg("Watching for images")

	files := make(chan string)
	go func() {
		defer close(files)
		defer fw.Close()

		pending := map[string]time.Time{}
		ticker := time.NewTicker(w.settle / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsImageFile(ev.Name) {
					continue
				}
				pending[filepath.Clean(ev.Name)] = time.Now()
			case <-ticker.C:
				now := time.Now()
				for path, touched := range pending {
					if now.Sub(touched) < w.settle {
						continue
					}
					delete(pending, path)
					select {
					case files <- path:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.log.Warn().Err(err).Msg("Watch error")
			}
		}
	}()

	return files, nil
}

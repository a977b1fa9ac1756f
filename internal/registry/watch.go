package registry

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type watcher struct {
	fw     *fsnotify.Watcher
	stopCh chan struct{}
}

// Watch starts watching the schema directory for changes. Any write, create,
// remove or rename of a schema document triggers a full Reload.
func (r *Registry) Watch(dir string) error {
	if r.fsys == nil {
		return fmt.Errorf("registry watch: no backing filesystem")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	w := &watcher{
		fw:     fw,
		stopCh: make(chan struct{}),
	}
	r.mu.Lock()
	if r.watch != nil {
		r.mu.Unlock()
		fw.Close()
		return fmt.Errorf("registry watch: already watching")
	}
	r.watch = w
	r.mu.Unlock()
	go r.watchLoop(w)

	r.logger.Info().Str("dir", dir).Msg("watching schema directory for changes")
	return nil
}

// Stop stops watching for file changes.
func (r *Registry) Stop() {
	r.mu.Lock()
	w := r.watch
	r.watch = nil
	r.mu.Unlock()
	if w == nil {
		return
	}
	close(w.stopCh)
	w.fw.Close()
}

func (r *Registry) watchLoop(w *watcher) {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !isSchemaFile(filepath.Base(event.Name)) {
				continue
			}
			// Atomic saves show up as create+rename rather than write.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				r.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("schema document changed")

				if err := r.Reload(); err != nil {
					r.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			r.logger.Error().Err(err).Msg("schema watcher error")

		case <-w.stopCh:
			return
		}
	}
}

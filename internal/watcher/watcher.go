// Package watcher implements upload-on-save: it watches the script root
// for changes and feeds debounced change bursts to a sync callback, one
// burst at a time.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scriptsync/scriptsync/internal/localfs"
	"github.com/scriptsync/scriptsync/pkg/logging"
)

// SyncFunc uploads the given changed script files. Bursts are serialized;
// the watcher never runs two syncs concurrently.
type SyncFunc func(paths []string) error

// Watcher watches one script root.
type Watcher struct {
	root     string
	debounce time.Duration
	sync     SyncFunc

	fsw     *fsnotify.Watcher
	pending map[string]struct{}
}

// New creates a watcher over root. A zero debounce defaults to 500ms.
func New(root string, debounce time.Duration, sync SyncFunc) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, err
	}

	// Categories are one directory level below the root.
	entries, err := os.ReadDir(root)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				_ = fsw.Add(filepath.Join(root, e.Name()))
			}
		}
	}

	return &Watcher{
		root:     root,
		debounce: debounce,
		sync:     sync,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
	}, nil
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	logging.Info("watching for script changes", logging.String("root", w.root))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Error("watch error", logging.Err(err))

		case <-fire:
			fire = nil
			w.flush()
		}
	}
}

// relevant keeps script writes and creations; everything else is noise.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return filepath.Ext(event.Name) == localfs.Ext
}

// flush hands the pending burst to the sync callback. A failed burst is
// logged and dropped; watching continues.
func (w *Watcher) flush() {
	if len(w.pending) == 0 {
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	w.pending = make(map[string]struct{})

	logging.Info("syncing changed scripts", logging.Int("count", len(paths)))
	if err := w.sync(paths); err != nil {
		logging.Error("sync failed", logging.Err(err))
	}
}

// Package watch re-runs work when input files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to a set of files and directories. Parent
// directories are watched rather than files, so atomic saves (write to a
// temp file, rename over the original) are seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	files    map[string]bool
	dirs     map[string]bool
	// ext limits changes inside watched directories to one extension.
	ext string
}

// New watches inputs, each a file or a directory. For directory inputs only
// names ending in ext are reported; ext "" reports everything.
func New(logger *slog.Logger, debounce time.Duration, ext string, inputs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		logger:   logger,
		debounce: debounce,
		files:    map[string]bool{},
		dirs:     map[string]bool{},
		ext:      ext,
	}
	watched := map[string]bool{}
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		st, err := os.Stat(abs)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", in, err)
		}
		dir := abs
		if st.IsDir() {
			w.dirs[abs] = true
		} else {
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if watched[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = true
		logger.Debug("Watching directory", "dir", dir)
	}
	return w, nil
}

func (w *Watcher) match(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if w.files[abs] {
		return true
	}
	if !w.dirs[filepath.Dir(abs)] {
		return false
	}
	return w.ext == "" || filepath.Ext(abs) == w.ext
}

// Run calls fn with the sorted changed paths after every quiet period
// following a change. It returns when ctx is done, after closing the
// watcher.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !w.match(event.Name) {
				continue
			}
			w.logger.Debug("Watcher detected change", "file", event.Name, "op", event.Op.String())
			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			clear(pending)
			fn(changed)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

package sticker

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	boothimage "photobooth/internal/image"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the asset directory and drops cached stickers whose files
// change, so edited artwork shows up without restarting the booth.
type Watcher struct {
	dir      string
	loader   *Loader
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	onChange func(ref string) // Called after a cached entry is invalidated
}

// NewWatcher creates a watcher on dir and its subdirectories.
func NewWatcher(dir string, loader *Loader) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create asset watcher: %w", err)
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		loader:  loader,
		watcher: fw,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// OnChange sets the callback invoked after a sticker file changed.
// The callback is called from a background goroutine.
func (w *Watcher) OnChange(callback func(ref string)) {
	w.onChange = callback
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Sticker watcher: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if !boothimage.IsSupportedFormat(ev.Name) {
		return
	}
	ref, ok := w.refFor(ev.Name)
	if !ok {
		return
	}

	w.loader.Invalidate(ref)
	if w.onChange != nil {
		w.onChange(ref)
	}
}

// refFor maps a file path under the asset directory to a sticker reference.
func (w *Watcher) refFor(path string) (string, bool) {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return "/" + filepath.ToSlash(rel), true
}

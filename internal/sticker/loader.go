package sticker

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"sync"
	"time"

	boothimage "photobooth/internal/image"

	"golang.org/x/sync/errgroup"
)

// maxParallelLoads bounds concurrent decodes in LoadAll.
const maxParallelLoads = 8

// Result is the outcome of loading one reference.
type Result struct {
	Ref   string
	Image image.Image
	Err   error
}

// Loader resolves sticker references against an asset filesystem and caches
// decoded images. Every load is bounded by a timeout.
type Loader struct {
	fsys    fs.FS
	timeout time.Duration

	mu    sync.RWMutex
	cache map[string]image.Image
}

// NewLoader creates a loader over fsys. A reference such as
// "/stickers/blossom.png" resolves to "stickers/blossom.png" in fsys.
func NewLoader(fsys fs.FS, timeout time.Duration) *Loader {
	return &Loader{
		fsys:    fsys,
		timeout: timeout,
		cache:   make(map[string]image.Image),
	}
}

// Cached returns an already decoded image without touching the filesystem.
func (l *Loader) Cached(ref string) (image.Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.cache[fsPath(ref)]
	return img, ok
}

// Load returns the decoded image for ref, reading it if it is not cached.
// It gives up when ctx is done or the loader's timeout elapses; the read
// itself may finish later and is then discarded.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	if img, ok := l.Cached(ref); ok {
		return img, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		img, err := l.read(ref)
		done <- Result{Ref: ref, Image: img, Err: err}
	}()

	select {
	case r := <-done:
		if r.Err != nil {
			return nil, r.Err
		}
		l.mu.Lock()
		l.cache[fsPath(ref)] = r.Image
		l.mu.Unlock()
		return r.Image, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("loading sticker %s: %w", ref, ctx.Err())
	}
}

// LoadAll loads every reference concurrently and returns once all loads have
// settled, successfully or not. Results are in the order of refs.
func (l *Loader) LoadAll(ctx context.Context, refs []string) []Result {
	results := make([]Result, len(refs))

	var g errgroup.Group
	g.SetLimit(maxParallelLoads)
	for i, ref := range refs {
		g.Go(func() error {
			img, err := l.Load(ctx, ref)
			results[i] = Result{Ref: ref, Image: img, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ReadFile returns the raw bytes of a sticker asset.
func (l *Loader) ReadFile(ref string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, fsPath(ref))
	if err != nil {
		return nil, fmt.Errorf("reading sticker %s: %w", ref, err)
	}
	return data, nil
}

// Invalidate drops a cached image so the next Load reads it again.
func (l *Loader) Invalidate(ref string) {
	l.mu.Lock()
	delete(l.cache, fsPath(ref))
	l.mu.Unlock()
}

// InvalidateAll clears the cache.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	l.cache = make(map[string]image.Image)
	l.mu.Unlock()
}

func (l *Loader) read(ref string) (image.Image, error) {
	f, err := l.fsys.Open(fsPath(ref))
	if err != nil {
		return nil, fmt.Errorf("opening sticker %s: %w", ref, err)
	}
	defer f.Close()

	img, err := boothimage.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("sticker %s: %w", ref, err)
	}
	return img, nil
}

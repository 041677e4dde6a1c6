// Package app provides the booth's application state and events.
package app

import (
	"context"
	"errors"
	"image/color"
	"math/rand/v2"
	"sync"
	"time"

	"photobooth/internal/compositor"
	"photobooth/internal/config"
	"photobooth/internal/overlay"
	"photobooth/pkg/colorutil"
	"photobooth/pkg/geometry"
)

// ErrNoFrame is returned by Capture when there is no camera frame to use.
var ErrNoFrame = errors.New("no camera frame")

// State holds every piece of mutable booth state: placed stickers, the drag
// session, the capture history and the capture effects.
type State struct {
	mu sync.RWMutex

	cfg        config.Config
	overlays   *overlay.Manager
	compositor *compositor.Compositor

	// Capture history, newest first
	captures  []*Capture
	nextIndex int

	// Capture effects
	flashing bool
	border   color.RGBA
	palette  []color.RGBA

	rng       *rand.Rand
	afterFunc func(d time.Duration, f func())
	now       func() time.Time

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventOverlaysChanged EventType = iota // data: []overlay.Overlay
	EventDragChanged                      // data: bool (dragging)
	EventCaptured                         // data: *Capture
	EventFlashChanged                     // data: bool (flashing)
	EventBorderChanged                    // data: color.RGBA
	EventCameraStarted                    // data: nil
	EventCameraFailed                     // data: error
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates the booth state. loader supplies sticker images to the
// compositor.
func NewState(cfg config.Config, loader compositor.AssetLoader) *State {
	palette, err := cfg.PaletteColors()
	if err != nil || len(palette) == 0 {
		palette = colorutil.BorderPalette()
	}
	return &State{
		cfg:        cfg,
		overlays:   overlay.NewManager(cfg.Stickers.Size, cfg.Stickers.Default),
		compositor: compositor.New(cfg, loader),
		border:     colorutil.White,
		palette:    palette,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		afterFunc:  func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		now:        time.Now,
		listeners:  make(map[EventType][]EventListener),
	}
}

// SetRand replaces the random source used to pick border colors.
func (s *State) SetRand(r *rand.Rand) {
	s.mu.Lock()
	s.rng = r
	s.mu.Unlock()
}

// SetAfterFunc replaces the timer used to end the flash.
func (s *State) SetAfterFunc(f func(d time.Duration, fn func())) {
	s.mu.Lock()
	s.afterFunc = f
	s.mu.Unlock()
}

// Config returns the booth configuration.
func (s *State) Config() config.Config {
	return s.cfg
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// AddOverlay places a new sticker at the default position.
func (s *State) AddOverlay(ref string) overlay.Overlay {
	o := s.overlays.Add(ref)
	s.Emit(EventOverlaysChanged, s.overlays.Overlays())
	return o
}

// Overlays returns the placed stickers in insertion order.
func (s *State) Overlays() []overlay.Overlay {
	return s.overlays.Overlays()
}

// OverlayAt returns the topmost sticker shown at p in a preview of the given width.
func (s *State) OverlayAt(p geometry.Point2D, previewWidth float64) (overlay.Overlay, bool) {
	return s.overlays.HitTest(p, previewWidth)
}

// BeginDrag starts dragging the sticker with the given id.
func (s *State) BeginDrag(id overlay.ID) bool {
	if !s.overlays.BeginDrag(id) {
		return false
	}
	s.Emit(EventDragChanged, true)
	return true
}

// UpdateDragPosition moves the dragged sticker under the pointer. container
// is nil while the preview is not mounted.
func (s *State) UpdateDragPosition(pointer geometry.Point2D, container *geometry.Rect) {
	if s.overlays.UpdateDragPosition(pointer, container) {
		s.Emit(EventOverlaysChanged, s.overlays.Overlays())
	}
}

// EndDrag ends the drag session, if any.
func (s *State) EndDrag() {
	_, wasDragging := s.overlays.Dragging()
	s.overlays.EndDrag()
	if wasDragging {
		s.Emit(EventDragChanged, false)
	}
}

// DraggingID returns the id of the sticker being dragged.
func (s *State) DraggingID() (overlay.ID, bool) {
	return s.overlays.Dragging()
}

// ClearAll removes every sticker. Capture history is not affected.
func (s *State) ClearAll() {
	s.overlays.Clear()
	s.Emit(EventOverlaysChanged, []overlay.Overlay{})
}

// Flashing reports whether the capture flash is showing.
func (s *State) Flashing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flashing
}

// BorderColor returns the current preview border color.
func (s *State) BorderColor() color.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.border
}

// Capture composes the current frame and stickers into a new capture and
// puts it at the front of the history. Without a frame it does nothing and
// returns ErrNoFrame.
func (s *State) Capture(ctx context.Context, src compositor.FrameSource) (*Capture, error) {
	if src == nil {
		return nil, ErrNoFrame
	}
	frame, ok := src.Frame()
	if !ok || frame == nil {
		return nil, ErrNoFrame
	}

	s.startEffects()

	res, err := s.compositor.Compose(ctx, frame, s.overlays.Overlays())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	c := &Capture{
		Index:   s.nextIndex,
		PNG:     res.PNG,
		Image:   res.Image,
		TakenAt: s.now(),
	}
	s.nextIndex++
	s.captures = append([]*Capture{c}, s.captures...)
	s.mu.Unlock()

	s.Emit(EventCaptured, c)
	return c, nil
}

// startEffects turns the flash on for the configured duration and picks a
// new border color.
func (s *State) startEffects() {
	s.mu.Lock()
	s.flashing = true
	s.border = s.palette[s.rng.IntN(len(s.palette))]
	border := s.border
	afterFunc := s.afterFunc
	s.mu.Unlock()

	s.Emit(EventFlashChanged, true)
	s.Emit(EventBorderChanged, border)

	afterFunc(s.cfg.Flash, func() {
		s.mu.Lock()
		s.flashing = false
		s.mu.Unlock()
		s.Emit(EventFlashChanged, false)
	})
}

// Captures returns the capture history, newest first.
func (s *State) Captures() []*Capture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Capture, len(s.captures))
	copy(out, s.captures)
	return out
}

// Latest returns the most recent capture.
func (s *State) Latest() (*Capture, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.captures) == 0 {
		return nil, false
	}
	return s.captures[0], true
}

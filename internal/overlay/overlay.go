// Package overlay manages the stickers placed on the preview and the drag
// interaction that moves them.
//
// Positions are kept in frame space: the un-mirrored coordinate space of the
// camera frame at preview scale. The preview shows the frame mirrored, so a
// frame-space X is the distance of the sticker's right edge from the right
// edge of the displayed box. Display code applies the mirror when drawing.
package overlay

import (
	"sync"

	"photobooth/pkg/geometry"

	"github.com/google/uuid"
)

// ID identifies an overlay. IDs are UUIDv7, so they are unique and ordered by
// creation time.
type ID = uuid.UUID

// Overlay is a sticker placed on the preview.
type Overlay struct {
	ID  ID
	Ref string           // sticker asset reference, e.g. "/stickers/blossom.png"
	Pos geometry.Point2D // top-left corner in frame space
}

// Manager owns the overlay set and the drag session.
type Manager struct {
	mu       sync.RWMutex
	overlays []Overlay
	dragging ID
	active   bool

	size       float64
	defaultPos geometry.Point2D
	newID      func() ID
}

// NewManager creates a manager for stickers of the given side length that
// are placed at defaultPos when added.
func NewManager(size float64, defaultPos geometry.Point2D) *Manager {
	return &Manager{
		size:       size,
		defaultPos: defaultPos,
		newID:      newID,
	}
}

func newID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Add appends a new overlay for ref at the default position.
func (m *Manager) Add(ref string) Overlay {
	o := Overlay{ID: m.newID(), Ref: ref, Pos: m.defaultPos}

	m.mu.Lock()
	m.overlays = append(m.overlays, o)
	m.mu.Unlock()

	return o
}

// Place appends a new overlay for ref at pos, e.g. when replaying a layout.
func (m *Manager) Place(ref string, pos geometry.Point2D) Overlay {
	o := Overlay{ID: m.newID(), Ref: ref, Pos: pos}

	m.mu.Lock()
	m.overlays = append(m.overlays, o)
	m.mu.Unlock()

	return o
}

// Overlays returns a copy of the overlay set in insertion order.
func (m *Manager) Overlays() []Overlay {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Overlay, len(m.overlays))
	copy(out, m.overlays)
	return out
}

// Clear removes every overlay. Any drag session ends with it.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.overlays = nil
	m.active = false
	m.dragging = ID{}
	m.mu.Unlock()
}

func (m *Manager) indexOf(id ID) int {
	for i := range m.overlays {
		if m.overlays[i].ID == id {
			return i
		}
	}
	return -1
}

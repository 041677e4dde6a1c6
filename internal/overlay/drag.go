package overlay

import (
	"photobooth/pkg/geometry"
)

// BeginDrag starts dragging the overlay with the given id. It returns false,
// leaving any current session untouched, if no overlay matches.
func (m *Manager) BeginDrag(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return false
	}
	m.dragging = id
	m.active = true
	return true
}

// EndDrag clears the drag session. Calling it while idle does nothing.
func (m *Manager) EndDrag() {
	m.mu.Lock()
	m.active = false
	m.dragging = ID{}
	m.mu.Unlock()
}

// Dragging returns the id of the overlay being dragged.
func (m *Manager) Dragging() (ID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dragging, m.active
}

// UpdateDragPosition moves the dragged overlay so that it is centred under the
// pointer. pointer and container are in the same (page) space; container is
// nil while the preview is not mounted. It reports whether anything moved.
func (m *Manager) UpdateDragPosition(pointer geometry.Point2D, container *geometry.Rect) bool {
	if container == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return false
	}
	i := m.indexOf(m.dragging)
	if i < 0 {
		return false
	}
	m.overlays[i].Pos = DragTransform(pointer, *container, m.size)
	return true
}

// DragTransform maps a pointer position to the frame-space position of a
// sticker of the given size centred under it. The preview is mirrored, so X
// is measured from the container's right edge.
func DragTransform(pointer geometry.Point2D, container geometry.Rect, size float64) geometry.Point2D {
	half := size / 2
	return geometry.Point2D{
		X: container.Width - (pointer.X - container.X) - half,
		Y: (pointer.Y - container.Y) - half,
	}
}

// DisplayRect returns where an overlay is shown in a mirrored preview of the
// given width, relative to the preview's top-left corner.
func DisplayRect(pos geometry.Point2D, containerWidth, size float64) geometry.Rect {
	return geometry.NewRect(containerWidth-pos.X-size, pos.Y, size, size)
}

// HitTest returns the topmost overlay whose displayed bounds contain p, given
// in preview coordinates.
func (m *Manager) HitTest(p geometry.Point2D, containerWidth float64) (Overlay, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.overlays) - 1; i >= 0; i-- {
		o := m.overlays[i]
		if DisplayRect(o.Pos, containerWidth, m.size).Contains(p) {
			return o, true
		}
	}
	return Overlay{}, false
}

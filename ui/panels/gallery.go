package panels

import (
	"sync"

	"photobooth/internal/app"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// thumbSize is the gallery thumbnail size, keeping the 3:4 capture aspect.
var thumbSize = fyne.NewSize(90, 120)

// Gallery lists the captures of this session, newest first. Selecting a
// thumbnail hands the capture to the OnOpen callback.
type Gallery struct {
	state     *app.State
	grid      *widget.GridWrap
	container fyne.CanvasObject

	mu       sync.Mutex
	captures []*app.Capture

	onOpen func(c *app.Capture)
}

// NewGallery creates an empty gallery.
func NewGallery(state *app.State) *Gallery {
	g := &Gallery{state: state}

	g.grid = widget.NewGridWrap(
		func() int {
			g.mu.Lock()
			defer g.mu.Unlock()
			return len(g.captures)
		},
		func() fyne.CanvasObject {
			img := fynecanvas.NewImageFromImage(nil)
			img.FillMode = fynecanvas.ImageFillContain
			img.SetMinSize(thumbSize)
			return container.NewBorder(nil, widget.NewLabel(""), nil, nil, img)
		},
		func(id widget.GridWrapItemID, obj fyne.CanvasObject) {
			c := g.at(id)
			if c == nil {
				return
			}
			border := obj.(*fyne.Container)
			for _, o := range border.Objects {
				switch o := o.(type) {
				case *fynecanvas.Image:
					o.Image = c.Image
					o.Refresh()
				case *widget.Label:
					o.SetText(c.FileName())
				}
			}
		},
	)
	g.grid.OnSelected = func(id widget.GridWrapItemID) {
		g.grid.UnselectAll()
		g.Open(int(id))
	}

	title := widget.NewLabelWithStyle("Snaps", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	g.container = container.NewBorder(title, nil, nil, nil, g.grid)
	return g
}

// Container returns the gallery for embedding in layouts.
func (g *Gallery) Container() fyne.CanvasObject {
	return g.container
}

// OnOpen sets the callback for a selected capture.
func (g *Gallery) OnOpen(callback func(c *app.Capture)) {
	g.onOpen = callback
}

// Refresh reloads the capture list from the booth state.
func (g *Gallery) Refresh() {
	captures := g.state.Captures()
	g.mu.Lock()
	g.captures = captures
	g.mu.Unlock()
	g.grid.Refresh()
}

// Captures returns the captures currently shown.
func (g *Gallery) Captures() []*app.Capture {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*app.Capture(nil), g.captures...)
}

// Open hands the capture shown at position id to the OnOpen callback.
func (g *Gallery) Open(id int) {
	if c := g.at(widget.GridWrapItemID(id)); c != nil && g.onOpen != nil {
		g.onOpen(c)
	}
}

func (g *Gallery) at(id widget.GridWrapItemID) *app.Capture {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id < 0 || int(id) >= len(g.captures) {
		return nil
	}
	return g.captures[id]
}

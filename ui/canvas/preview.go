// Package canvas provides the live preview: the mirrored camera frame with
// draggable stickers on top.
package canvas

import (
	"context"
	"image"
	"log"
	"math"
	"sync"

	"photobooth/internal/app"
	"photobooth/internal/compositor"
	boothimage "photobooth/internal/image"
	"photobooth/internal/overlay"
	"photobooth/pkg/colorutil"
	"photobooth/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	borderWidth = 4
	noFrameText = "NO CAMERA"
)

// StickerImages supplies decoded sticker images for drawing.
type StickerImages interface {
	Cached(ref string) (image.Image, bool)
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Preview shows the mirrored live frame with the placed stickers and lets
// the user drag them around.
type Preview struct {
	widget.BaseWidget

	state    *app.State
	frames   compositor.FrameSource
	stickers StickerImages
	size     fyne.Size

	raster *fynecanvas.Raster

	mu sync.Mutex
	// Stickers being loaded, or that failed to load.
	pending map[string]bool

	// origin returns the absolute position of the preview box.
	origin func() fyne.Position
}

var (
	_ desktop.Mouseable = (*Preview)(nil)
	_ fyne.Draggable    = (*Preview)(nil)
)

// NewPreview creates a preview of the configured size.
func NewPreview(state *app.State, frames compositor.FrameSource, stickers StickerImages) *Preview {
	cfg := state.Config()
	p := &Preview{
		state:    state,
		frames:   frames,
		stickers: stickers,
		size:     fyne.NewSize(float32(cfg.Preview.Width), float32(cfg.Preview.Height)),
		pending:  make(map[string]bool),
	}
	p.origin = func() fyne.Position {
		return fyne.CurrentApp().Driver().AbsolutePositionForObject(p)
	}

	p.raster = fynecanvas.NewRaster(p.draw)
	p.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	p.raster.SetMinSize(p.size)

	p.ExtendBaseWidget(p)
	return p
}

// SetFrameSource switches the frame source, e.g. after a camera restart.
func (p *Preview) SetFrameSource(frames compositor.FrameSource) {
	p.mu.Lock()
	p.frames = frames
	p.mu.Unlock()
	p.Refresh()
}

// Refresh redraws the preview.
func (p *Preview) Refresh() {
	p.raster.Refresh()
}

// MinSize keeps the preview at its configured size.
func (p *Preview) MinSize() fyne.Size {
	return p.size
}

// MouseDown starts dragging the topmost sticker under the pointer.
func (p *Preview) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	pt := geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	o, ok := p.state.OverlayAt(pt, float64(p.size.Width))
	if !ok {
		return
	}
	p.state.BeginDrag(o.ID)
}

// MouseUp ends any drag.
func (p *Preview) MouseUp(*desktop.MouseEvent) {
	p.state.EndDrag()
}

// Dragged moves the dragged sticker under the pointer.
func (p *Preview) Dragged(ev *fyne.DragEvent) {
	if _, dragging := p.state.DraggingID(); !dragging {
		return
	}
	origin := p.origin()
	container := geometry.NewRect(float64(origin.X), float64(origin.Y),
		float64(p.size.Width), float64(p.size.Height))
	pointer := geometry.NewPoint2D(float64(ev.AbsolutePosition.X), float64(ev.AbsolutePosition.Y))
	p.state.UpdateDragPosition(pointer, &container)
}

// DragEnd ends the drag, also when the pointer was released outside.
func (p *Preview) DragEnd() {
	p.state.EndDrag()
}

// CreateRenderer implements fyne.Widget.
func (p *Preview) CreateRenderer() fyne.WidgetRenderer {
	return &previewRenderer{preview: p}
}

// draw is the raster drawing function; w and h are in pixels.
func (p *Preview) draw(w, h int) image.Image {
	return p.render(w, h)
}

func (p *Preview) render(w, h int) *image.RGBA {
	surface := boothimage.NewSurface(w, h)
	surface.Fill(colorutil.Black)

	// Preview units to pixels.
	sx := float64(w) / float64(p.size.Width)
	sy := float64(h) / float64(p.size.Height)
	pw, ph := float64(p.size.Width), float64(p.size.Height)

	p.mu.Lock()
	frames := p.frames
	p.mu.Unlock()

	var frame image.Image
	if frames != nil {
		frame, _ = frames.Frame()
	}

	surface.Save()
	surface.Scale(sx, sy)
	if frame != nil {
		surface.Save()
		surface.Translate(pw, 0)
		surface.Scale(-1, 1)
		surface.DrawImage(frame, geometry.NewRect(0, 0, pw, ph))
		surface.Restore()
	}

	size := float64(p.state.Config().Stickers.Size)
	dragID, dragging := p.state.DraggingID()
	var dragRect image.Rectangle
	for _, o := range p.state.Overlays() {
		r := overlay.DisplayRect(o.Pos, pw, size)
		if img, ok := p.sticker(o.Ref); ok {
			surface.DrawImage(img, r)
		}
		if dragging && o.ID == dragID {
			dragRect = pixelRect(r, sx, sy)
		}
	}
	surface.Restore()

	output := surface.Image()
	if frame == nil {
		drawLabel(output, noFrameText, w/2, h/2, colorutil.White, int(math.Max(2, 3*sx)))
	}
	if !dragRect.Empty() {
		drawDashedOutline(output, dragRect, colorutil.Pink400, int(math.Max(2, 4*sx)))
	}
	drawOutline(output, output.Bounds(), p.state.BorderColor(), int(math.Ceil(borderWidth*sx)))
	return output
}

// sticker returns the sticker image if it is already loaded, and otherwise
// starts loading it in the background.
func (p *Preview) sticker(ref string) (image.Image, bool) {
	if img, ok := p.stickers.Cached(ref); ok {
		return img, true
	}

	p.mu.Lock()
	if p.pending[ref] {
		p.mu.Unlock()
		return nil, false
	}
	p.pending[ref] = true
	p.mu.Unlock()

	go func() {
		if _, err := p.stickers.Load(context.Background(), ref); err != nil {
			log.Printf("Preview: sticker %s: %v", ref, err)
			return
		}
		p.mu.Lock()
		delete(p.pending, ref)
		p.mu.Unlock()
		p.Refresh()
	}()
	return nil, false
}

// Retry forgets a failed sticker load so the next redraw tries again.
func (p *Preview) Retry(ref string) {
	p.mu.Lock()
	delete(p.pending, ref)
	p.mu.Unlock()
	p.Refresh()
}

func pixelRect(r geometry.Rect, sx, sy float64) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X*sx)), int(math.Round(r.Y*sy)),
		int(math.Round((r.X+r.Width)*sx)), int(math.Round((r.Y+r.Height)*sy)),
	)
}

type previewRenderer struct {
	preview *Preview
}

func (r *previewRenderer) Layout(size fyne.Size) {
	r.preview.raster.Resize(size)
}

func (r *previewRenderer) MinSize() fyne.Size {
	return r.preview.size
}

func (r *previewRenderer) Refresh() {
	r.preview.raster.Refresh()
}

func (r *previewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.preview.raster}
}

func (r *previewRenderer) Destroy() {}

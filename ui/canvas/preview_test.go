package canvas

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"photobooth/internal/app"
	"photobooth/internal/compositor"
	"photobooth/internal/config"
	"photobooth/internal/sticker"
	"photobooth/pkg/colorutil"
	"photobooth/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fakeStickers serves red squares; refs in missing fail to load. Nothing is
// cached until Load has been called.
type fakeStickers struct {
	mu      sync.Mutex
	cache   map[string]image.Image
	missing map[string]bool
	loads   int
}

func newFakeStickers() *fakeStickers {
	return &fakeStickers{cache: map[string]image.Image{}, missing: map[string]bool{}}
}

func (f *fakeStickers) Cached(ref string) (image.Image, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.cache[ref]
	return img, ok
}

func (f *fakeStickers) Load(_ context.Context, ref string) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.missing[ref] {
		return nil, errors.New("missing")
	}
	img := solid(8, 8, red)
	f.cache[ref] = img
	return img, nil
}

func (f *fakeStickers) LoadAll(ctx context.Context, refs []string) []sticker.Result {
	out := make([]sticker.Result, len(refs))
	for i, ref := range refs {
		img, err := f.Load(ctx, ref)
		out[i] = sticker.Result{Ref: ref, Image: img, Err: err}
	}
	return out
}

func (f *fakeStickers) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// halves returns a frame that is blue on the left and green on the right.
func halves() image.Image {
	img := solid(30, 40, blue)
	for y := 0; y < 40; y++ {
		for x := 15; x < 30; x++ {
			img.Set(x, y, green)
		}
	}
	return img
}

func newTestPreview(t *testing.T, frame image.Image) (*Preview, *app.State, *fakeStickers) {
	t.Helper()
	test.NewApp()
	stickers := newFakeStickers()
	state := app.NewState(config.Default(), stickers)
	p := NewPreview(state, compositor.StillSource{Image: frame}, stickers)
	p.origin = func() fyne.Position { return fyne.NewPos(0, 0) }
	return p, state, stickers
}

func TestPreviewShowsMirroredFrame(t *testing.T) {
	p, _, _ := newTestPreview(t, halves())

	out := p.render(300, 400)
	assert.Equal(t, green, out.RGBAAt(60, 200))
	assert.Equal(t, blue, out.RGBAAt(240, 200))
	assert.Equal(t, colorutil.White, out.RGBAAt(0, 0))
	assert.Equal(t, colorutil.White, out.RGBAAt(299, 399))
}

func TestPreviewScalesToPixelSize(t *testing.T) {
	p, _, _ := newTestPreview(t, halves())

	out := p.render(600, 800)
	assert.Equal(t, image.Rect(0, 0, 600, 800), out.Bounds())
	assert.Equal(t, green, out.RGBAAt(120, 400))
	assert.Equal(t, blue, out.RGBAAt(480, 400))
}

func TestPreviewWithoutFrame(t *testing.T) {
	p, _, _ := newTestPreview(t, nil)

	out := p.render(300, 400)
	assert.Equal(t, colorutil.Black, out.RGBAAt(20, 20))
	found := false
	for x := 100; x < 200 && !found; x++ {
		found = out.RGBAAt(x, 200) == colorutil.White
	}
	assert.True(t, found, "expected placeholder text")
}

func TestPreviewDrawsStickerAtDisplayRect(t *testing.T) {
	p, state, stickers := newTestPreview(t, halves())
	state.AddOverlay("/stickers/blossom.png")

	// First draw starts the load; the sticker appears once it is cached.
	p.render(300, 400)
	require.Eventually(t, func() bool {
		_, ok := stickers.Cached("/stickers/blossom.png")
		return ok
	}, time.Second, time.Millisecond)

	out := p.render(300, 400)
	// Default position (80, 120) shows at left 300-80-80 = 140, top 120.
	assert.Equal(t, red, out.RGBAAt(180, 160))
	assert.Equal(t, blue, out.RGBAAt(230, 160))
	assert.Equal(t, green, out.RGBAAt(130, 160))
}

func TestPreviewFailedStickerIsNotRetried(t *testing.T) {
	p, state, stickers := newTestPreview(t, halves())
	stickers.missing["/stickers/gone.png"] = true
	state.AddOverlay("/stickers/gone.png")

	p.render(300, 400)
	require.Eventually(t, func() bool { return stickers.loadCount() == 1 }, time.Second, time.Millisecond)
	p.render(300, 400)
	p.render(300, 400)
	assert.Equal(t, 1, stickers.loadCount())

	p.Retry("/stickers/gone.png")
	p.render(300, 400)
	assert.Eventually(t, func() bool { return stickers.loadCount() == 2 }, time.Second, time.Millisecond)
}

func TestPreviewDrag(t *testing.T) {
	p, state, _ := newTestPreview(t, halves())
	o := state.AddOverlay("/stickers/blossom.png")

	// Pointer-down outside any sticker does nothing.
	p.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)},
		Button:     desktop.MouseButtonPrimary,
	})
	_, dragging := state.DraggingID()
	assert.False(t, dragging)

	p.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(180, 160)},
		Button:     desktop.MouseButtonPrimary,
	})
	id, dragging := state.DraggingID()
	require.True(t, dragging)
	assert.Equal(t, o.ID, id)

	p.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{
		Position:         fyne.NewPos(100, 100),
		AbsolutePosition: fyne.NewPos(100, 100),
	}})
	assert.Equal(t, geometry.NewPoint2D(160, 60), state.Overlays()[0].Pos)

	p.DragEnd()
	_, dragging = state.DraggingID()
	assert.False(t, dragging)

	// Moving without a session leaves the sticker alone.
	p.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{AbsolutePosition: fyne.NewPos(5, 5)}})
	assert.Equal(t, geometry.NewPoint2D(160, 60), state.Overlays()[0].Pos)
}

func TestPreviewDragUsesContainerOrigin(t *testing.T) {
	p, state, _ := newTestPreview(t, halves())
	p.origin = func() fyne.Position { return fyne.NewPos(50, 20) }
	state.AddOverlay("/stickers/blossom.png")

	p.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(180, 160)},
		Button:     desktop.MouseButtonPrimary,
	})
	p.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{AbsolutePosition: fyne.NewPos(150, 120)}})
	p.MouseUp(&desktop.MouseEvent{})

	assert.Equal(t, geometry.NewPoint2D(300-100-40, 100-40), state.Overlays()[0].Pos)
}

func TestPreviewSecondaryButtonIgnored(t *testing.T) {
	p, state, _ := newTestPreview(t, halves())
	state.AddOverlay("/stickers/blossom.png")

	p.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(180, 160)},
		Button:     desktop.MouseButtonSecondary,
	})
	_, dragging := state.DraggingID()
	assert.False(t, dragging)
}

func TestPreviewBorderFollowsCapture(t *testing.T) {
	p, state, _ := newTestPreview(t, halves())
	state.SetAfterFunc(func(time.Duration, func()) {})

	_, err := state.Capture(context.Background(), compositor.StillSource{Image: halves()})
	require.NoError(t, err)

	out := p.render(300, 400)
	assert.Equal(t, state.BorderColor(), out.RGBAAt(1, 1))
	assert.Contains(t, colorutil.BorderPalette(), out.RGBAAt(1, 1))
}

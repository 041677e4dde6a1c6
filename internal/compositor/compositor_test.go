package compositor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"photobooth/internal/config"
	"photobooth/internal/overlay"
	"photobooth/internal/sticker"
	"photobooth/pkg/geometry"

	"github.com/google/uuid"
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

// frame returns a 30x40 frame: blue on the left half, green on the right.
func frame() image.Image {
	img := solid(30, 40, blue)
	for y := 0; y < 40; y++ {
		for x := 15; x < 30; x++ {
			img.Set(x, y, green)
		}
	}
	return img
}

// fakeLoader serves fixed images and fails for refs in errs.
type fakeLoader struct {
	images map[string]image.Image
	errs   map[string]error
	calls  [][]string
}

func (f *fakeLoader) LoadAll(_ context.Context, refs []string) []sticker.Result {
	f.calls = append(f.calls, refs)
	out := make([]sticker.Result, len(refs))
	for i, ref := range refs {
		if err, ok := f.errs[ref]; ok {
			out[i] = sticker.Result{Ref: ref, Err: err}
			continue
		}
		out[i] = sticker.Result{Ref: ref, Image: f.images[ref]}
	}
	return out
}

func newOverlay(ref string, x, y float64) overlay.Overlay {
	return overlay.Overlay{ID: uuid.New(), Ref: ref, Pos: geometry.NewPoint2D(x, y)}
}

func TestPlacementIsTwicePreviewPosition(t *testing.T) {
	c := New(config.Default(), &fakeLoader{})
	for _, p := range []geometry.Point2D{{X: 0, Y: 0}, {X: 80, Y: 120}, {X: 210, Y: 160}, {X: -30, Y: 350}} {
		r := c.Placement(newOverlay("/stickers/blossom.png", p.X, p.Y))
		assert.Equal(t, p.X*2, r.X)
		assert.Equal(t, p.Y*2, r.Y)
		assert.Equal(t, 160.0, r.Width)
		assert.Equal(t, 160.0, r.Height)
	}
}

func TestComposeScenario(t *testing.T) {
	loader := &fakeLoader{images: map[string]image.Image{
		"/stickers/blossom.png": solid(16, 16, red),
	}}
	c := New(config.Default(), loader)

	res, err := c.Compose(context.Background(), frame(), []overlay.Overlay{
		newOverlay("/stickers/blossom.png", 210, 160),
	})
	require.NoError(t, err)

	require.Len(t, res.Draws, 2)
	assert.Equal(t, geometry.NewRect(0, 0, 600, 800), res.Draws[0].Rect)
	assert.Equal(t, geometry.NewRect(420, 320, 160, 160), res.Draws[1].Rect)
	assert.Equal(t, geometry.MirrorX(600), res.Draws[1].Transform)

	assert.Equal(t, image.Rect(0, 0, 600, 800), res.Image.Bounds())
	// Mirrored: the frame's green right half lands on the left.
	assert.Equal(t, green, res.Image.RGBAAt(250, 600))
	assert.Equal(t, blue, res.Image.RGBAAt(450, 600))
	// Sticker at mirrored x 420..580 covers device x 20..180.
	assert.Equal(t, red, res.Image.RGBAAt(100, 400))
	assert.Equal(t, green, res.Image.RGBAAt(100, 700))

	decoded, err := png.Decode(bytes.NewReader(res.PNG))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 600, 800), decoded.Bounds())
}

func TestComposeWithoutOverlays(t *testing.T) {
	c := New(config.Default(), &fakeLoader{})

	res, err := c.Compose(context.Background(), frame(), nil)
	require.NoError(t, err)
	require.Len(t, res.Draws, 1)
	assert.Equal(t, green, res.Image.RGBAAt(100, 400))
	assert.Equal(t, blue, res.Image.RGBAAt(500, 400))
}

func TestComposeNilFrame(t *testing.T) {
	c := New(config.Default(), &fakeLoader{})
	_, err := c.Compose(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestComposeDrawsInOverlayOrder(t *testing.T) {
	loader := &fakeLoader{images: map[string]image.Image{
		"/stickers/a.png": solid(4, 4, red),
		"/stickers/b.png": solid(4, 4, blue),
	}}
	c := New(config.Default(), loader)

	res, err := c.Compose(context.Background(), frame(), []overlay.Overlay{
		newOverlay("/stickers/a.png", 100, 100),
		newOverlay("/stickers/b.png", 100, 100),
	})
	require.NoError(t, err)
	require.Len(t, loader.calls, 1)
	assert.Equal(t, []string{"/stickers/a.png", "/stickers/b.png"}, loader.calls[0])

	// Same spot: the later overlay is on top.
	assert.Equal(t, blue, res.Image.RGBAAt(600-280, 280))
}

func TestComposeSkipsFailedAsset(t *testing.T) {
	loadErr := errors.New("boom")
	loader := &fakeLoader{
		images: map[string]image.Image{"/stickers/a.png": solid(4, 4, red)},
		errs:   map[string]error{"/stickers/broken.png": loadErr},
	}
	c := New(config.Default(), loader)

	broken := newOverlay("/stickers/broken.png", 10, 10)
	res, err := c.Compose(context.Background(), frame(), []overlay.Overlay{
		broken,
		newOverlay("/stickers/a.png", 210, 160),
	})
	require.NoError(t, err)
	assert.Equal(t, []overlay.Overlay{broken}, res.Skipped)
	require.Len(t, res.Draws, 2)
	assert.Equal(t, red, res.Image.RGBAAt(100, 400))
}

func TestComposeAbortsOnFailedAsset(t *testing.T) {
	loadErr := errors.New("boom")
	cfg := config.Default()
	cfg.Stickers.OnFailure = config.FailAbort
	c := New(cfg, &fakeLoader{errs: map[string]error{"/stickers/broken.png": loadErr}})

	_, err := c.Compose(context.Background(), frame(), []overlay.Overlay{
		newOverlay("/stickers/broken.png", 10, 10),
	})
	assert.ErrorIs(t, err, loadErr)
}

func TestOutputSizeIndependentOfFrame(t *testing.T) {
	c := New(config.Default(), &fakeLoader{})
	for _, f := range []image.Image{solid(640, 480, red), solid(1, 1, red), solid(1920, 1080, red)} {
		res, err := c.Compose(context.Background(), f, nil)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 600, 800), res.Image.Bounds())
		assert.Equal(t, red, res.Image.RGBAAt(300, 400))
	}
}

func TestStillSource(t *testing.T) {
	_, ok := StillSource{}.Frame()
	assert.False(t, ok)

	img := solid(1, 1, red)
	got, ok := StillSource{Image: img}.Frame()
	assert.True(t, ok)
	assert.Equal(t, img, got)
}

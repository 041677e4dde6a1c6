package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"photobooth/internal/config"
	"photobooth/internal/sticker"
	"photobooth/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestParsePlacement(t *testing.T) {
	pl, err := parsePlacement("/stickers/blossom.png@210,160")
	require.NoError(t, err)
	assert.Equal(t, placement{Ref: "/stickers/blossom.png", Pos: geometry.NewPoint2D(210, 160)}, pl)

	pl, err = parsePlacement("/stickers/pinkstar.png@-12.5, 40")
	require.NoError(t, err)
	assert.Equal(t, geometry.NewPoint2D(-12.5, 40), pl.Pos)

	for _, bad := range []string{"", "@1,2", "/stickers/a.png", "/stickers/a.png@1", "/stickers/a.png@x,2", "/stickers/a.png@1,y"} {
		_, err := parsePlacement(bad)
		assert.Error(t, err, bad)
	}
}

func TestPlacementsFlag(t *testing.T) {
	var p placements
	require.NoError(t, p.Set("/stickers/a.png@1,2"))
	require.NoError(t, p.Set("/stickers/b.png@3,4"))
	assert.Len(t, p, 2)
	assert.Equal(t, "/stickers/a.png@1,2 /stickers/b.png@3,4", p.String())
	assert.Error(t, p.Set("nope"))
	assert.Len(t, p, 2)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "stickers", "blossom.png"), 8, 8, color.RGBA{R: 255, A: 255})
	framePath := filepath.Join(dir, "frame.png")
	writePNG(t, framePath, 30, 40, color.RGBA{B: 255, A: 255})

	cfg := config.Default()
	cfg.Stickers.Dir = dir

	res, err := run(context.Background(), cfg, framePath, placements{
		{Ref: "/stickers/blossom.png", Pos: geometry.NewPoint2D(210, 160)},
		{Ref: "/stickers/pinkstar.png", Pos: geometry.NewPoint2D(0, 0)}, // no file: skipped
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 600, 800), res.Image.Bounds())
	require.Len(t, res.Draws, 2)
	assert.Equal(t, geometry.NewRect(420, 320, 160, 160), res.Draws[1].Rect)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, res.Image.RGBAAt(100, 400))
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "/stickers/pinkstar.png", res.Skipped[0].Ref)
}

func TestRunRejectsUnknownSticker(t *testing.T) {
	dir := t.TempDir()
	framePath := filepath.Join(dir, "frame.png")
	writePNG(t, framePath, 3, 4, color.Black)

	cfg := config.Default()
	cfg.Stickers.Dir = dir
	_, err := run(context.Background(), cfg, framePath, placements{
		{Ref: "/stickers/mojojojo.png", Pos: geometry.NewPoint2D(0, 0)},
	})
	assert.ErrorIs(t, err, sticker.ErrUnknownRef)
}

func TestRunMissingFrame(t *testing.T) {
	_, err := run(context.Background(), config.Default(), filepath.Join(t.TempDir(), "missing.png"), nil)
	assert.Error(t, err)
}

package mainwindow

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"photobooth/internal/app"
	"photobooth/internal/camera"
	"photobooth/internal/compositor"
	"photobooth/internal/config"
	"photobooth/internal/sticker"
	"photobooth/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWindow(t *testing.T) (*MainWindow, *app.State) {
	t.Helper()
	a := test.NewApp()

	cfg := config.Default()
	loader := sticker.NewLoader(fstest.MapFS{}, time.Second)
	state := app.NewState(cfg, loader)
	state.SetAfterFunc(func(time.Duration, func()) {}) // flash stays on
	cam := camera.NewWithOpener(cfg.Camera, func(config.Camera) (camera.Device, error) {
		return nil, errors.New("no camera")
	})
	p := prefs.LoadFrom(filepath.Join(t.TempDir(), "preferences.json"))

	mw := New(a, state, cam, sticker.NewCatalog(cfg.Stickers), loader, p)
	mw.Resize(fyne.NewSize(900, 700))
	return mw, state
}

func still() compositor.StillSource {
	img := image.NewRGBA(image.Rect(0, 0, 30, 40))
	img.Set(0, 0, color.White)
	return compositor.StillSource{Image: img}
}

func TestFlashCoversWindow(t *testing.T) {
	mw, state := newTestWindow(t)
	assert.False(t, mw.flash.Visible())

	_, err := state.Capture(context.Background(), still())
	require.NoError(t, err)
	require.True(t, state.Flashing())

	assert.True(t, mw.flash.Visible())
	assert.Equal(t, mw.Content().Size(), mw.flash.Size())
	assert.Equal(t, fyne.NewPos(0, 0), mw.flash.Position())
	assert.Greater(t, mw.flash.Size().Width, mw.preview.MinSize().Width)
	assert.Greater(t, mw.flash.Size().Height, mw.preview.MinSize().Height)
}

func TestSnapWithoutFrameOnlyLogs(t *testing.T) {
	mw, state := newTestWindow(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	mw.snap(context.Background())

	assert.Empty(t, state.Captures())
	assert.False(t, state.Flashing())
	assert.Contains(t, buf.String(), "Capture: no frame")
}

func TestQuickSaveUsesLastDir(t *testing.T) {
	mw, state := newTestWindow(t)
	dir := t.TempDir()
	mw.prefs.SetString(prefs.KeyLastSaveDir, dir)

	c, err := state.Capture(context.Background(), still())
	require.NoError(t, err)

	mw.onQuickSave()

	data, err := os.ReadFile(filepath.Join(dir, "snap-0.png"))
	require.NoError(t, err)
	assert.Equal(t, c.PNG, data)
	assert.Equal(t, "Saved "+filepath.Join(dir, "snap-0.png"), mw.statusBar.Text)
}

func TestCopyLatestPutsDataURIOnClipboard(t *testing.T) {
	mw, state := newTestWindow(t)

	_, err := state.Capture(context.Background(), still())
	require.NoError(t, err)
	c, err := state.Capture(context.Background(), still())
	require.NoError(t, err)

	mw.onCopyLatest()

	content := mw.Clipboard().Content()
	assert.True(t, strings.HasPrefix(content, "data:image/png;base64,"))
	assert.Equal(t, c.DataURI(), content)
	assert.Equal(t, "Copied snap-1.png", mw.statusBar.Text)
}

// Package mainwindow provides the booth window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"

	"photobooth/internal/app"
	"photobooth/internal/camera"
	"photobooth/internal/sticker"
	"photobooth/internal/version"
	"photobooth/ui/canvas"
	"photobooth/ui/dialogs"
	"photobooth/ui/panels"
	"photobooth/ui/prefs"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const (
	appTitle          = "Powerpuff Booth"
	cameraDeniedText  = "Camera access denied!"
	defaultWindowSize = 960
	floaterSize       = 48
)

// MainWindow is the booth window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	state   *app.State
	prefs   *prefs.Prefs
	camera  *camera.Camera
	catalog *sticker.Catalog
	loader  *sticker.Loader

	preview   *canvas.Preview
	tray      *panels.StickerTray
	gallery   *panels.Gallery
	flash     *fynecanvas.Rectangle
	statusBar *widget.Label
}

// New creates the booth window.
func New(fyneApp fyne.App, state *app.State, cam *camera.Camera, catalog *sticker.Catalog, loader *sticker.Loader, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		state:   state,
		prefs:   p,
		camera:  cam,
		catalog: catalog,
		loader:  loader,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, defaultWindowSize)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, defaultWindowSize*3/4)),
	))
	mw.SetCloseIntercept(mw.onClose)

	return mw
}

// setupUI creates the booth layout.
func (mw *MainWindow) setupUI() {
	mw.preview = canvas.NewPreview(mw.state, mw.camera, mw.loader)
	mw.camera.OnFrame(mw.preview.Refresh)
	mw.camera.OnLost(func(err error) {
		log.Printf("Camera: %v", err)
		mw.updateStatus("Camera lost, press Restart Camera")
		mw.preview.Refresh()
	})

	mw.flash = fynecanvas.NewRectangle(color.White)
	mw.flash.Hide()

	mw.tray = panels.NewStickerTray(mw.state, mw.catalog, mw.loader)
	mw.gallery = panels.NewGallery(mw.state)
	mw.gallery.OnOpen(mw.saveCapture)

	mw.statusBar = widget.NewLabel("Starting camera...")

	title := widget.NewLabelWithStyle(appTitle, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	header := container.NewHBox(layout.NewSpacer(), title, layout.NewSpacer())
	for _, ref := range mw.catalog.Floaters() {
		if obj := mw.assetImage(ref, fyne.NewSize(floaterSize, floaterSize)); obj != nil {
			header.Add(obj)
		}
	}

	snapBtn := widget.NewButton("SNAP!", mw.onSnap)
	snapBtn.Importance = widget.HighImportance
	controls := container.NewHBox(
		layout.NewSpacer(),
		widget.NewButton("Restart Camera", mw.StartCamera),
		snapBtn,
		widget.NewButton("Clear Stickers", mw.onClear),
		layout.NewSpacer(),
	)

	booth := container.NewVBox(
		container.NewCenter(mw.preview),
		controls,
	)

	split := container.NewHSplit(mw.tray.Container(), container.NewHSplit(booth, mw.gallery.Container()))
	split.SetOffset(0.25)

	content := container.NewBorder(
		header,                            // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	// The flash sits on top of everything so it covers the whole window.
	layers := []fyne.CanvasObject{content, mw.flash}
	if bg := mw.assetImage(mw.catalog.Background(), fyne.NewSize(0, 0)); bg != nil {
		bg.(*fynecanvas.Image).FillMode = fynecanvas.ImageFillStretch
		bg.(*fynecanvas.Image).Translucency = 0.7
		layers = append([]fyne.CanvasObject{bg}, layers...)
	}
	mw.SetContent(container.NewStack(layers...))
}

// assetImage returns an image for a decorative asset, or nil if it can't be read.
func (mw *MainWindow) assetImage(ref string, minSize fyne.Size) fyne.CanvasObject {
	if ref == "" {
		return nil
	}
	data, err := mw.loader.ReadFile(ref)
	if err != nil {
		log.Printf("Window: decoration %s: %v", ref, err)
		return nil
	}
	img := fynecanvas.NewImageFromResource(fyne.NewStaticResource(sticker.Name(ref)+".png", data))
	img.FillMode = fynecanvas.ImageFillContain
	img.SetMinSize(minSize)
	return img
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Save Latest Snap...", mw.onSaveLatest),
		fyne.NewMenuItem("Quick Save Latest Snap", mw.onQuickSave),
		fyne.NewMenuItem("Copy Latest Snap as Data URI", mw.onCopyLatest),
		fyne.NewMenuItem("Clear Stickers", mw.onClear),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Restart Camera", mw.StartCamera),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", mw.onClose),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	refreshPreview := func(interface{}) { mw.preview.Refresh() }
	mw.state.On(app.EventOverlaysChanged, refreshPreview)
	mw.state.On(app.EventDragChanged, refreshPreview)
	mw.state.On(app.EventBorderChanged, refreshPreview)

	mw.state.On(app.EventFlashChanged, func(data interface{}) {
		if on, ok := data.(bool); ok && on {
			mw.flash.Show()
		} else {
			mw.flash.Hide()
		}
	})

	mw.state.On(app.EventCaptured, func(data interface{}) {
		mw.gallery.Refresh()
		if c, ok := data.(*app.Capture); ok {
			mw.updateStatus("Captured " + c.FileName())
		}
	})

	mw.state.On(app.EventCameraStarted, func(interface{}) {
		mw.updateStatus("Camera ready")
	})

	mw.state.On(app.EventCameraFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			log.Printf("Camera: %v", err)
		}
		mw.updateStatus("No camera")
		dialog.ShowInformation("Camera", cameraDeniedText, mw.Window)
	})
}

// StickerChanged refreshes everything showing a sticker whose file changed.
func (mw *MainWindow) StickerChanged(ref string) {
	mw.tray.Reload(ref)
	mw.preview.Retry(ref)
}

// StartCamera (re)opens the camera in the background.
func (mw *MainWindow) StartCamera() {
	if mw.camera.Running() {
		mw.updateStatus("Restarting camera...")
	} else {
		mw.updateStatus("Starting camera...")
	}
	go func() {
		if err := mw.camera.Start(context.Background()); err != nil {
			mw.state.Emit(app.EventCameraFailed, err)
			return
		}
		mw.state.Emit(app.EventCameraStarted, nil)
	}()
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onSnap() {
	go mw.snap(context.Background())
}

// snap captures the current frame. Without a frame it only logs.
func (mw *MainWindow) snap(ctx context.Context) {
	_, err := mw.state.Capture(ctx, mw.camera)
	if errors.Is(err, app.ErrNoFrame) {
		log.Printf("Capture: no frame")
		return
	}
	if err != nil {
		log.Printf("Capture failed: %v", err)
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onClear() {
	mw.state.ClearAll()
}

func (mw *MainWindow) onSaveLatest() {
	c, ok := mw.state.Latest()
	if !ok {
		dialog.ShowInformation("Save Snap", "Take a snap first.", mw.Window)
		return
	}
	mw.saveCapture(c)
}

// onQuickSave writes the latest snap into the last save folder, or the home
// folder, without asking.
func (mw *MainWindow) onQuickSave() {
	c, ok := mw.state.Latest()
	if !ok {
		dialog.ShowInformation("Save Snap", "Take a snap first.", mw.Window)
		return
	}
	path, err := c.SaveTo(mw.quickSaveDir())
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("Saved " + path)
}

func (mw *MainWindow) quickSaveDir() string {
	if dir := mw.prefs.String(prefs.KeyLastSaveDir); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// onCopyLatest puts the latest snap on the clipboard as a PNG data URI.
func (mw *MainWindow) onCopyLatest() {
	c, ok := mw.state.Latest()
	if !ok {
		dialog.ShowInformation("Copy Snap", "Take a snap first.", mw.Window)
		return
	}
	mw.Clipboard().SetContent(c.DataURI())
	mw.updateStatus("Copied " + c.FileName())
}

func (mw *MainWindow) saveCapture(c *app.Capture) {
	dialogs.NewSaveCaptureDialog(c, mw.Window, mw.prefs, func(path string) {
		mw.updateStatus("Saved " + path)
	}).Show()
}

func (mw *MainWindow) onClose() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
	mw.camera.Stop()
	mw.app.Quit()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Pick a sticker, drag it into place and hit SNAP!\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

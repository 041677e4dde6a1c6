// Package panels provides the booth's side panels: the sticker tray and the
// capture gallery.
package panels

import (
	"log"
	"sync"

	"photobooth/internal/app"
	"photobooth/internal/sticker"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// AssetFiles reads raw sticker files.
type AssetFiles interface {
	ReadFile(ref string) ([]byte, error)
}

// StickerTray shows one button per catalog sticker; pressing a button
// places that sticker on the preview.
type StickerTray struct {
	state     *app.State
	files     AssetFiles
	container fyne.CanvasObject

	mu      sync.Mutex
	buttons map[string]*widget.Button
	refs    []string
}

// NewStickerTray creates the tray for the catalog's stickers.
func NewStickerTray(state *app.State, catalog *sticker.Catalog, files AssetFiles) *StickerTray {
	st := &StickerTray{
		state:   state,
		files:   files,
		buttons: make(map[string]*widget.Button),
		refs:    catalog.Items(),
	}

	grid := container.NewGridWithColumns(3)
	for _, ref := range st.refs {
		ref := ref
		btn := widget.NewButton("", func() {
			st.Press(ref)
		})
		btn.Importance = widget.LowImportance
		st.buttons[ref] = btn
		st.applyIcon(ref, btn)
		grid.Add(btn)
	}

	st.container = container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Stickers", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		grid,
	))
	return st
}

// Container returns the tray for embedding in layouts.
func (st *StickerTray) Container() fyne.CanvasObject {
	return st.container
}

// Reload re-reads a sticker's artwork after its file changed.
func (st *StickerTray) Reload(ref string) {
	st.mu.Lock()
	btn, ok := st.buttons[ref]
	st.mu.Unlock()
	if !ok {
		return
	}
	st.applyIcon(ref, btn)
}

// Press places a tray sticker on the preview. It reports false for a
// sticker that is not in the tray.
func (st *StickerTray) Press(ref string) bool {
	st.mu.Lock()
	_, ok := st.buttons[ref]
	st.mu.Unlock()
	if ok {
		st.state.AddOverlay(ref)
	}
	return ok
}

// applyIcon sets the button icon from the sticker file, falling back to the
// sticker name as text.
func (st *StickerTray) applyIcon(ref string, btn *widget.Button) {
	data, err := st.files.ReadFile(ref)
	if err != nil {
		log.Printf("Tray: %v", err)
		btn.SetIcon(nil)
		btn.SetText(sticker.Name(ref))
		return
	}
	btn.SetText("")
	btn.SetIcon(fyne.NewStaticResource(sticker.Name(ref)+".png", data))
}

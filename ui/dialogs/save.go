// Package dialogs provides booth dialogs.
package dialogs

import (
	"fmt"
	"io"
	"path/filepath"

	"photobooth/internal/app"
	"photobooth/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// SaveCaptureDialog asks where to store a capture and writes its PNG there.
type SaveCaptureDialog struct {
	capture *app.Capture
	window  fyne.Window
	prefs   *prefs.Prefs

	// Callback
	onSaved func(path string)
}

// NewSaveCaptureDialog creates a save dialog for c.
func NewSaveCaptureDialog(c *app.Capture, window fyne.Window, p *prefs.Prefs, onSaved func(path string)) *SaveCaptureDialog {
	return &SaveCaptureDialog{
		capture: c,
		window:  window,
		prefs:   p,
		onSaved: onSaved,
	}
}

// Show displays the dialog.
func (d *SaveCaptureDialog) Show() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, d.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := WriteCapture(writer, d.capture); err != nil {
			dialog.ShowError(err, d.window)
			return
		}
		path := writer.URI().Path()
		d.prefs.SetString(prefs.KeyLastSaveDir, filepath.Dir(path))
		if d.onSaved != nil {
			d.onSaved(path)
		}
	}, d.window)

	fd.SetFileName(d.capture.FileName())
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := d.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// lastDir returns the last used save directory, or nil.
func (d *SaveCaptureDialog) lastDir() fyne.ListableURI {
	path := d.prefs.String(prefs.KeyLastSaveDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// WriteCapture writes the capture's PNG bytes to w.
func WriteCapture(w io.Writer, c *app.Capture) error {
	if c == nil || len(c.PNG) == 0 {
		return fmt.Errorf("nothing to save")
	}
	if _, err := w.Write(c.PNG); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.FileName(), err)
	}
	return nil
}

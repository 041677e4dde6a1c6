package app

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	boothimage "photobooth/internal/image"
)

// Capture is one finished photo. Captures are never modified.
type Capture struct {
	Index   int // 0 for the session's first capture
	PNG     []byte
	Image   image.Image
	TakenAt time.Time
}

// FileName returns the download name, "snap-<index>.png".
func (c *Capture) FileName() string {
	return fmt.Sprintf("snap-%d.png", c.Index)
}

// DataURI returns the PNG as a data URI.
func (c *Capture) DataURI() string {
	return boothimage.DataURI(c.PNG)
}

// SaveTo writes the PNG into dir under FileName and returns the path.
func (c *Capture) SaveTo(dir string) (string, error) {
	path := filepath.Join(dir, c.FileName())
	if err := os.WriteFile(path, c.PNG, 0o644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", c.FileName(), err)
	}
	return path, nil
}

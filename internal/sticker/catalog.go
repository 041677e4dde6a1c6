// Package sticker provides the decorative sticker catalog and asset loading.
package sticker

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"photobooth/internal/config"
)

// ErrUnknownRef is returned for a reference outside the catalog.
var ErrUnknownRef = errors.New("unknown sticker")

// Catalog is the fixed set of sticker references offered in the tray,
// plus the decorative background texture and floaters.
type Catalog struct {
	items      []string
	index      map[string]int
	background string
	floaters   []string
}

// NewCatalog builds the catalog from the sticker settings.
func NewCatalog(cfg config.Stickers) *Catalog {
	c := &Catalog{
		items:      append([]string(nil), cfg.Items...),
		index:      make(map[string]int, len(cfg.Items)),
		background: cfg.Background,
		floaters:   append([]string(nil), cfg.Floaters...),
	}
	for i, ref := range c.items {
		c.index[ref] = i
	}
	return c
}

// Items returns the tray stickers in display order.
func (c *Catalog) Items() []string {
	return append([]string(nil), c.items...)
}

// Background returns the background texture reference ("" if none).
func (c *Catalog) Background() string {
	return c.background
}

// Floaters returns the decorative stickers drawn around the booth.
func (c *Catalog) Floaters() []string {
	return append([]string(nil), c.floaters...)
}

// Contains reports whether ref is a tray sticker.
func (c *Catalog) Contains(ref string) bool {
	_, ok := c.index[ref]
	return ok
}

// Validate returns ErrUnknownRef if ref is not a tray sticker.
func (c *Catalog) Validate(ref string) error {
	if !c.Contains(ref) {
		return fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	}
	return nil
}

// Name returns a display name for a reference: "/stickers/pinkstar.png" -> "pinkstar".
func Name(ref string) string {
	base := path.Base(ref)
	return strings.TrimSuffix(base, path.Ext(base))
}

// fsPath converts a reference to a path inside the asset filesystem.
func fsPath(ref string) string {
	return strings.TrimPrefix(path.Clean("/"+ref), "/")
}

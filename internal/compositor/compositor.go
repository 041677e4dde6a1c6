// Package compositor renders a camera frame and the placed stickers into a
// mirrored still image.
package compositor

import (
	"context"
	"fmt"
	"image"
	"log"

	"photobooth/internal/config"
	boothimage "photobooth/internal/image"
	"photobooth/internal/overlay"
	"photobooth/internal/sticker"
	"photobooth/pkg/geometry"
)

// FrameSource provides the current camera frame.
type FrameSource interface {
	// Frame returns the latest frame, or false if none is available yet.
	Frame() (image.Image, bool)
}

// StillSource is a frame source that always returns the same image.
type StillSource struct {
	Image image.Image
}

// Frame returns the still image.
func (s StillSource) Frame() (image.Image, bool) {
	return s.Image, s.Image != nil
}

// AssetLoader loads sticker images for a set of references and returns once
// every load has settled.
type AssetLoader interface {
	LoadAll(ctx context.Context, refs []string) []sticker.Result
}

// Result is a finished composite.
type Result struct {
	Image *image.RGBA
	PNG   []byte
	Draws []boothimage.DrawRecord // frame first, then each drawn sticker
	// Skipped lists stickers left out because their asset failed to load.
	Skipped []overlay.Overlay
}

// Compositor draws captures at a fixed output size.
type Compositor struct {
	output      geometry.Size
	scale       float64
	stickerSize float64
	policy      config.FailurePolicy
	loader      AssetLoader
}

// New creates a compositor from the booth configuration.
func New(cfg config.Config, loader AssetLoader) *Compositor {
	return &Compositor{
		output:      cfg.Output,
		scale:       cfg.Scale(),
		stickerSize: cfg.Stickers.Size,
		policy:      cfg.Stickers.OnFailure,
		loader:      loader,
	}
}

// Placement returns the user-space rectangle, on the mirrored output surface,
// at which an overlay is drawn.
func (c *Compositor) Placement(o overlay.Overlay) geometry.Rect {
	return geometry.NewRect(o.Pos.X, o.Pos.Y, c.stickerSize, c.stickerSize).Scale(c.scale)
}

// Compose renders frame mirrored across the whole output surface with every
// overlay drawn on top, and encodes the result as PNG.
func (c *Compositor) Compose(ctx context.Context, frame image.Image, overlays []overlay.Overlay) (*Result, error) {
	if frame == nil {
		return nil, fmt.Errorf("compose: no frame")
	}

	surface := boothimage.NewSurface(int(c.output.Width), int(c.output.Height))

	surface.Save()
	surface.Mirror()
	surface.DrawImage(frame, geometry.NewRect(0, 0, c.output.Width, c.output.Height))

	refs := make([]string, len(overlays))
	for i, o := range overlays {
		refs[i] = o.Ref
	}
	loaded := c.loader.LoadAll(ctx, refs)

	var skipped []overlay.Overlay
	for i, o := range overlays {
		r := loaded[i]
		if r.Err != nil {
			if c.policy == config.FailAbort {
				return nil, fmt.Errorf("compose: %w", r.Err)
			}
			log.Printf("Capture: skipping sticker %s: %v", o.Ref, r.Err)
			skipped = append(skipped, o)
			continue
		}
		surface.DrawImage(r.Image, c.Placement(o))
	}
	surface.Restore()

	data, err := surface.EncodePNG()
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	return &Result{
		Image:   surface.Image(),
		PNG:     data,
		Draws:   surface.Draws(),
		Skipped: skipped,
	}, nil
}

package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"photobooth/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// DrawRecord describes one DrawImage call: the rectangle in user space and
// the transform in effect when it was issued.
type DrawRecord struct {
	Rect      geometry.Rect
	Transform geometry.AffineTransform
}

// Device returns the rectangle in device (pixel) space.
func (d DrawRecord) Device() geometry.Rect {
	return d.Transform.ApplyRect(d.Rect)
}

// Surface is an RGBA drawing target with a current transform and a
// save/restore stack, in the manner of a 2D canvas context.
type Surface struct {
	dst   *image.RGBA
	ctm   geometry.AffineTransform
	stack []geometry.AffineTransform
	draws []DrawRecord

	// Interpolator used when scaling sources. Defaults to bilinear.
	Interpolator xdraw.Interpolator
}

// NewSurface creates a transparent surface of the given pixel size.
func NewSurface(width, height int) *Surface {
	return &Surface{
		dst:          image.NewRGBA(image.Rect(0, 0, width, height)),
		ctm:          geometry.Identity(),
		Interpolator: xdraw.BiLinear,
	}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.dst.Bounds().Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.dst.Bounds().Dy() }

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA { return s.dst }

// Transform returns the current transform.
func (s *Surface) Transform() geometry.AffineTransform { return s.ctm }

// Save pushes the current transform.
func (s *Surface) Save() {
	s.stack = append(s.stack, s.ctm)
}

// Restore pops the most recently saved transform. Unbalanced calls are ignored.
func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.ctm = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// Translate moves the user-space origin.
func (s *Surface) Translate(tx, ty float64) {
	s.ctm = s.ctm.Compose(geometry.Translation(tx, ty))
}

// Scale scales user space; Scale(-1, 1) after Translate(width, 0) mirrors.
func (s *Surface) Scale(sx, sy float64) {
	s.ctm = s.ctm.Compose(geometry.Scale(sx, sy))
}

// Mirror flips subsequent draws horizontally across the full surface width.
func (s *Surface) Mirror() {
	s.Translate(float64(s.Width()), 0)
	s.Scale(-1, 1)
}

// Fill paints the whole surface with c, ignoring the transform.
func (s *Surface) Fill(c color.Color) {
	xdraw.Draw(s.dst, s.dst.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
}

// DrawImage draws src scaled into the user-space rectangle r.
func (s *Surface) DrawImage(src image.Image, r geometry.Rect) {
	sb := src.Bounds()
	if sb.Empty() || r.Width <= 0 || r.Height <= 0 {
		return
	}
	s.draws = append(s.draws, DrawRecord{Rect: r, Transform: s.ctm})

	u := geometry.Translation(r.X, r.Y).
		Compose(geometry.Scale(r.Width/float64(sb.Dx()), r.Height/float64(sb.Dy()))).
		Compose(geometry.Translation(-float64(sb.Min.X), -float64(sb.Min.Y)))
	m := s.ctm.Compose(u)

	aff := f64.Aff3{m.A, m.B, m.TX, m.C, m.D, m.TY}
	s.Interpolator.Transform(s.dst, aff, src, sb, xdraw.Over, nil)
}

// Draws returns the DrawImage calls issued so far.
func (s *Surface) Draws() []DrawRecord {
	out := make([]DrawRecord, len(s.draws))
	copy(out, s.draws)
	return out
}

// EncodePNG encodes the surface as PNG.
func (s *Surface) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.dst); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI returns PNG bytes as a data URI.
func DataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}

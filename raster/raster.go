// Implements the pixel surface a document is painted into,
// by wrapping rasterx.
package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrZeroSize is reported when a surface is requested with a zero or
// negative dimension. Sizes are never clamped.
var ErrZeroSize = errors.New("surface size must be positive")

// Surface owns an RGBA pixel buffer of exactly width x height pixels.
// Every render pass fully overwrites the buffer, so it never holds stale
// pixels from a previous document or size.
type Surface struct {
	img  *image.RGBA
	w, h int
}

// New allocates a surface of the given size.
func New(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroSize, width, height)
	}
	return &Surface{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		w:   width,
		h:   height,
	}, nil
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() image.Point { return image.Pt(s.w, s.h) }

// RGBA returns the live pixel buffer. It is owned by the surface and is
// only valid until the next Render call.
func (s *Surface) RGBA() *image.RGBA { return s.img }

// Render clears the whole buffer to transparent and draws the icon
// stretched to exactly the surface size. The aspect ratio of the
// document is not preserved: the viewbox is mapped onto the full
// width x height target.
//
// Rendering is a pure function of the icon and the surface size, so two
// calls with the same inputs produce byte identical buffers.
func (s *Surface) Render(icon *oksvg.SvgIcon) error {
	if icon == nil {
		return errors.New("raster: nil icon")
	}
	clear(s.img.Pix)
	icon.SetTarget(0, 0, float64(s.w), float64(s.h))
	scanner := rasterx.NewScannerGV(s.w, s.h, s.img, s.img.Bounds())
	icon.Draw(rasterx.NewDasher(s.w, s.h, scanner), 1.0)
	return nil
}

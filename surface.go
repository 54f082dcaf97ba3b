package kaleidoscope

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// surface is an instance's offscreen canvas. Its backing image is sized in
// device pixels (CSS size times the pixel ratio) and composited back at CSS
// size. The image is created lazily on first use.
type surface struct {
	image  *ebiten.Image
	width  float64 // CSS pixels
	height float64
	ratio  float64
}

// deviceSize returns the backing image size for the current CSS size and
// ratio, never smaller than 1x1.
func (s *surface) deviceSize() (w, h int) {
	r := s.ratio
	if !finitePositive(r) {
		r = 1
	}
	w = max(1, int(math.Round(s.width*r)))
	h = max(1, int(math.Round(s.height*r)))
	return w, h
}

// resize records a new CSS size and pixel ratio. The backing image is
// replaced on the next ensure call if its size changed.
func (s *surface) resize(width, height, ratio float64) {
	s.width, s.height = width, height
	s.ratio = clamp(ratio, 1, MaxPixelRatio)
}

// ensure returns a backing image of the right size, reallocating if needed.
func (s *surface) ensure() *ebiten.Image {
	w, h := s.deviceSize()
	if s.image != nil {
		b := s.image.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return s.image
		}
		s.image.Deallocate()
	}
	s.image = ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), nil)
	return s.image
}

// fill clears the canvas to the given color.
func (s *surface) fill(c Color) {
	s.ensure().Fill(c.toRGBA())
}

// drawTo composites the canvas onto dst with its top-left corner at (x, y)
// in CSS pixels.
func (s *surface) drawTo(dst *ebiten.Image, x, y float64) {
	if s.image == nil {
		return
	}
	var op ebiten.DrawImageOptions
	if s.ratio != 1 {
		op.GeoM.Scale(1/s.ratio, 1/s.ratio)
		op.Filter = ebiten.FilterLinear
	}
	op.GeoM.Translate(x, y)
	dst.DrawImage(s.image, &op)
}

// dispose releases the backing image.
func (s *surface) dispose() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
}

package kaleidoscope

import "strings"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is handed to Ebitengine.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// DefaultClearColor is the canvas background drawn behind the plane (#eeeeee).
var DefaultClearColor = Color{R: 0xee / 255.0, G: 0xee / 255.0, B: 0xee / 255.0, A: 1}

// toRGBA converts a Color to a premultiplied color.Color for Ebitengine.
func (c Color) toRGBA() colorRGBA {
	a := clamp(c.A, 0, 1)
	return colorRGBA{
		r: uint8(clamp(c.R, 0, 1)*a*255 + 0.5),
		g: uint8(clamp(c.G, 0, 1)*a*255 + 0.5),
		b: uint8(clamp(c.B, 0, 1)*a*255 + 0.5),
		a: uint8(a*255 + 0.5),
	}
}

// colorRGBA is a premultiplied 8-bit color implementing color.Color.
type colorRGBA struct {
	r, g, b, a uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.r) * 0x101
	g = uint32(c.g) * 0x101
	b = uint32(c.b) * 0x101
	a = uint32(c.a) * 0x101
	return
}

// Vec2 is a 2D vector used for offsets, pointer positions and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Mode selects the update rule that drives the offset and rotation uniforms.
// An instance's mode is fixed for its lifetime.
type Mode uint8

const (
	ModeStatic Mode = iota // uniforms never change after initialization
	ModeMouse              // pointer position drives offset and rotation
	ModeLoop               // rotation advances with wall-clock time
	ModeScroll             // scroll progress through the viewport drives rotation
)

var modeNames = [...]string{
	ModeStatic: "static",
	ModeMouse:  "mouse",
	ModeLoop:   "loop",
	ModeScroll: "scroll",
}

// String returns the attribute spelling of the mode.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "static"
}

// ParseMode parses a mode name. Matching is case-insensitive and ignores
// surrounding whitespace. ok is false for unknown names, in which case
// ModeStatic is returned.
func ParseMode(s string) (m Mode, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name {
			return Mode(i), true
		}
	}
	return ModeStatic, false
}

// Fixed animation and shader constants.
const (
	// RotationSpeed is the loop-mode angular speed in radians per second,
	// before MotionFactor is applied.
	RotationSpeed = 0.1
	// OffsetAmount weights the offset uniform inside the shader.
	OffsetAmount = 0.2
	// RotationAmount weights the rotation uniform inside the shader.
	RotationAmount = 0.2
	// DefaultSegments is the wedge count used when none is configured.
	DefaultSegments = 6
	// MaxPixelRatio caps the device scale factor used for canvas surfaces.
	MaxPixelRatio = 2.0
)

package kaleidoscope

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Uniforms is the full parameter set of one draw call. The shader program and
// the software renderer both consume it, so the GPU and CPU paths cannot
// drift apart.
type Uniforms struct {
	Resolution     [4]float64 // width, height, a1, a2
	Segments       float64
	ScaleFactor    float64
	ImageAspect    float64
	Offset         Vec2
	Rotation       float64
	OffsetAmount   float64
	RotationAmount float64
	Opacity        float64
}

// FoldAngle folds an angle into one wedge of width 2π/segments and mirrors
// it about the wedge midline. The result is periodic in 2π/segments and
// symmetric: FoldAngle(θ) == FoldAngle(2π/segments - θ).
func FoldAngle(angle, segments float64) float64 {
	segment := 2 * math.Pi / segments
	a := glslMod(angle, segment)
	return segment - math.Abs(segment/2-a)
}

// MirrorTile maps an unbounded coordinate into [0, 1], reflecting every odd
// tile so that neighbouring tiles meet at identical texels.
func MirrorTile(v float64) float64 {
	odd := glslMod(math.Floor(v), 2)
	f := fract(v)
	return lerp(f, 1-f, odd)
}

// AdjustUV applies the weighted offset and then rotates about the tile
// center (0.5, 0.5) by the weighted rotation.
func AdjustUV(uv, offset mgl64.Vec2, rotation, offsetAmount, rotationAmount float64) mgl64.Vec2 {
	moved := uv.Add(offset.Mul(offsetAmount))
	center := mgl64.Vec2{0.5, 0.5}
	// mgl64.Rotate2D turns counter-clockwise; the pattern turns the other way.
	rot := mgl64.Rotate2D(-rotation * rotationAmount)
	return rot.Mul2x1(moved.Sub(center)).Add(center)
}

// KaleidoscopeUV is the per-pixel transform: it maps a fragment's UV in
// [0, 1]² to the mirrored texture UV it samples.
func KaleidoscopeUV(uv mgl64.Vec2, u *Uniforms) mgl64.Vec2 {
	// Letterbox into a centered [-1, 1]² square.
	half := mgl64.Vec2{0.5, 0.5}
	corrected := uv.Sub(half)
	corrected = mgl64.Vec2{corrected[0] * u.Resolution[2], corrected[1] * u.Resolution[3]}.Add(half)
	p := corrected.Mul(2).Sub(mgl64.Vec2{1, 1})

	angle := FoldAngle(math.Atan2(p[1], p[0]), u.Segments)
	radius := p.Len()
	p = mgl64.Vec2{radius * math.Cos(angle), radius * math.Sin(angle)}

	scale := 1 / u.ScaleFactor
	q := p.Mul(scale).Add(mgl64.Vec2{scale, scale})
	q = AdjustUV(q, mgl64.Vec2{u.Offset.X, u.Offset.Y}, u.Rotation, u.OffsetAmount, u.RotationAmount)
	q[1] *= u.ImageAspect

	return mgl64.Vec2{MirrorTile(q[0]), MirrorTile(q[1])}
}

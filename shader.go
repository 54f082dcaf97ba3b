package kaleidoscope

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// --- Kage shader source ---
// The fragment transform mirrors KaleidoscopeUV in transform.go; keep the two
// in step. Ebitengine samples nearest-neighbour only, so the shader filters
// bilinearly itself. Colors stay premultiplied, so opacity scales all four
// channels.

const kaleidoscopeShaderSrc = `//kage:unit pixels
package main

const Pi = 3.14159265359

var Resolution vec4
var Segments float
var Offset vec2
var Rotation float
var OffsetAmount float
var RotationAmount float
var ScaleFactor float
var ImageAspect float
var Opacity float

func adjustUV(uv vec2, offset vec2, rotation float) vec2 {
	p := uv + offset*OffsetAmount - vec2(0.5)
	c := cos(rotation * RotationAmount)
	s := sin(rotation * RotationAmount)
	return vec2(c*p.x+s*p.y, -s*p.x+c*p.y) + vec2(0.5)
}

func texel(p vec2) vec4 {
	size := imageSrc0Size()
	q := clamp(p, vec2(0), size-vec2(1))
	return imageSrc0At(imageSrc0Origin() + q + vec2(0.5))
}

func sampleLinear(uv vec2) vec4 {
	p := uv*imageSrc0Size() - vec2(0.5)
	base := floor(p)
	f := p - base
	c00 := texel(base)
	c10 := texel(base + vec2(1, 0))
	c01 := texel(base + vec2(0, 1))
	c11 := texel(base + vec2(1, 1))
	return mix(mix(c00, c10, f.x), mix(c01, c11, f.x), f.y)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	vUv := (src - imageSrc0Origin()) / imageSrc0Size()
	uv := ((vUv-vec2(0.5))*Resolution.zw+vec2(0.5))*2 - vec2(1)

	angle := atan2(uv.y, uv.x)
	radius := length(uv)
	segment := Pi * 2 / Segments
	angle = mod(angle, segment)
	angle = segment - abs(segment/2-angle)
	uv = radius * vec2(cos(angle), sin(angle))

	scale := 1 / ScaleFactor
	adjusted := adjustUV(uv*scale+vec2(scale), Offset, Rotation)
	adjusted.y *= ImageAspect

	odd := mod(floor(adjusted), vec2(2))
	mirrored := mix(fract(adjusted), vec2(1)-fract(adjusted), odd)
	return sampleLinear(mirrored) * Opacity
}
`

// --- Lazy shader compilation (single-threaded, like the game loop) ---

var kaleidoscopeShader *ebiten.Shader

func ensureKaleidoscopeShader() *ebiten.Shader {
	if kaleidoscopeShader == nil {
		s, err := ebiten.NewShader([]byte(kaleidoscopeShaderSrc))
		if err != nil {
			panic("kaleidoscope: failed to compile kaleidoscope shader: " + err.Error())
		}
		kaleidoscopeShader = s
	}
	return kaleidoscopeShader
}

// program draws the textured plane with the kaleidoscope shader. Uniform
// buffers are persistent so a frame does not allocate.
type program struct {
	uniforms    map[string]any
	resolution  [4]float32
	offset      [2]float32
	resSlice    []float32
	offsetSlice []float32
	vertices    [4]ebiten.Vertex
	indices     [6]uint16
	shaderOp    ebiten.DrawTrianglesShaderOptions
}

func newProgram() *program {
	p := &program{
		uniforms: make(map[string]any, 9),
		indices:  [6]uint16{0, 1, 2, 1, 3, 2},
	}
	p.resSlice = p.resolution[:]
	p.offsetSlice = p.offset[:]
	p.uniforms["Resolution"] = p.resSlice
	p.uniforms["Offset"] = p.offsetSlice
	for i := range p.vertices {
		p.vertices[i].ColorR = 1
		p.vertices[i].ColorG = 1
		p.vertices[i].ColorB = 1
		p.vertices[i].ColorA = 1
	}
	return p
}

// setUniforms copies u into the persistent uniform map.
func (p *program) setUniforms(u *Uniforms) {
	for i, v := range u.Resolution {
		p.resolution[i] = float32(v)
	}
	p.offset[0] = float32(u.Offset.X)
	p.offset[1] = float32(u.Offset.Y)
	p.uniforms["Segments"] = float32(u.Segments)
	p.uniforms["Rotation"] = float32(u.Rotation)
	p.uniforms["OffsetAmount"] = float32(u.OffsetAmount)
	p.uniforms["RotationAmount"] = float32(u.RotationAmount)
	p.uniforms["ScaleFactor"] = float32(u.ScaleFactor)
	p.uniforms["ImageAspect"] = float32(u.ImageAspect)
	p.uniforms["Opacity"] = float32(u.Opacity)
}

// setQuad maps the full texture onto the destination rectangle.
func (p *program) setQuad(dstW, dstH, texW, texH float32) {
	corners := [4][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i, c := range corners {
		p.vertices[i].DstX = c[0] * dstW
		p.vertices[i].DstY = c[1] * dstH
		p.vertices[i].SrcX = c[0] * texW
		p.vertices[i].SrcY = c[1] * texH
	}
}

// draw renders the plane covering all of dst, sampling texture.
func (p *program) draw(dst, texture *ebiten.Image, u *Uniforms) {
	shader := ensureKaleidoscopeShader()
	p.setUniforms(u)
	db := dst.Bounds()
	tb := texture.Bounds()
	p.setQuad(float32(db.Dx()), float32(db.Dy()), float32(tb.Dx()), float32(tb.Dy()))
	for i := range p.vertices {
		p.vertices[i].DstX += float32(db.Min.X)
		p.vertices[i].DstY += float32(db.Min.Y)
		p.vertices[i].SrcX += float32(tb.Min.X)
		p.vertices[i].SrcY += float32(tb.Min.Y)
	}
	p.shaderOp.Images[0] = texture
	p.shaderOp.Uniforms = p.uniforms
	dst.DrawTrianglesShader(p.vertices[:], p.indices[:], shader, &p.shaderOp)
}

package kaleidoscope

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"
)

// SoftwareTexture is a premultiplied CPU copy of a source image, sampled
// bilinearly with clamped edges like the shader's sampleLinear.
type SoftwareTexture struct {
	pix  *image.RGBA
	w, h int
}

// NewSoftwareTexture copies img into a premultiplied RGBA buffer.
func NewSoftwareTexture(img image.Image) *SoftwareTexture {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &SoftwareTexture{pix: rgba, w: b.Dx(), h: b.Dy()}
}

// Size returns the texture size in texels.
func (t *SoftwareTexture) Size() (w, h int) { return t.w, t.h }

func (t *SoftwareTexture) texel(x, y int) [4]float64 {
	x = clamp(x, 0, t.w-1)
	y = clamp(y, 0, t.h-1)
	i := t.pix.PixOffset(x, y)
	p := t.pix.Pix[i : i+4 : i+4]
	return [4]float64{
		float64(p[0]) / 255,
		float64(p[1]) / 255,
		float64(p[2]) / 255,
		float64(p[3]) / 255,
	}
}

// Sample returns the premultiplied color at uv in [0, 1]², filtered
// bilinearly between texel centers.
func (t *SoftwareTexture) Sample(uv mgl64.Vec2) [4]float64 {
	if t.w == 0 || t.h == 0 {
		return [4]float64{}
	}
	px := uv[0]*float64(t.w) - 0.5
	py := uv[1]*float64(t.h) - 0.5
	bx, by := floorInt(px), floorInt(py)
	fx, fy := px-float64(bx), py-float64(by)
	c00 := t.texel(bx, by)
	c10 := t.texel(bx+1, by)
	c01 := t.texel(bx, by+1)
	c11 := t.texel(bx+1, by+1)
	var out [4]float64
	for i := range out {
		out[i] = lerp(lerp(c00[i], c10[i], fx), lerp(c01[i], c11[i], fx), fy)
	}
	return out
}

func floorInt(v float64) int {
	i := int(v)
	if float64(i) > v {
		i--
	}
	return i
}

// RenderSoftware draws one frame of the effect into dst on the CPU: dst is
// filled with clear and the kaleidoscope plane is composited over it.
func RenderSoftware(dst *image.RGBA, tex *SoftwareTexture, u *Uniforms, clear Color) {
	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return
	}
	bg := clear.toRGBA()
	bgc := [4]float64{float64(bg.r) / 255, float64(bg.g) / 255, float64(bg.b) / 255, float64(bg.a) / 255}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		v := (float64(y-b.Min.Y) + 0.5) / h
		row := dst.Pix[dst.PixOffset(b.Min.X, y):]
		for x := b.Min.X; x < b.Max.X; x++ {
			uv := mgl64.Vec2{(float64(x-b.Min.X) + 0.5) / w, v}
			c := tex.Sample(KaleidoscopeUV(uv, u))
			a := clamp(c[3]*u.Opacity, 0, 1)
			o := (x - b.Min.X) * 4
			for i := 0; i < 4; i++ {
				// Source-over in premultiplied space.
				out := c[i]*u.Opacity + bgc[i]*(1-a)
				row[o+i] = uint8(clamp(out, 0, 1)*255 + 0.5)
			}
		}
	}
}

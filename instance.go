package kaleidoscope

import (
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/kaleidoscope/page"
)

// Instance is one kaleidoscope canvas: an Effect plus the renderer surface,
// the textured plane and the shader program that draw it.
//
// GPU resources are created lazily on the first Render, so an Instance can
// be constructed and driven without a running game loop.
type Instance struct {
	// Name identifies the instance in logs and screenshots.
	Name string

	effect  *Effect
	source  image.Image
	texture *ebiten.Image
	soft    *SoftwareTexture
	prog    *program
	canvas  surface

	rendered bool
	disposed bool
}

// NewInstance creates an instance for a container of the given CSS size.
// A nil source is replaced by PlaceholderImage.
func NewInstance(name string, cfg EffectConfig, source image.Image, width, height float64) *Instance {
	if source == nil {
		source = PlaceholderImage(cfg.ClearColor)
	}
	in := &Instance{
		Name:   name,
		effect: NewEffect(cfg, width, height),
		source: source,
	}
	in.canvas.resize(width, height, 1)
	return in
}

// NewInstanceFromElement resolves a container element into an instance:
// one of its tlg-kaleidoscope-image descendants is chosen at random, loaded
// and used with the container's configuration. A container without a usable
// image falls back to the placeholder texture with a warning on stderr.
func NewInstanceFromElement(doc *page.Document, container *page.Element, width, height float64, rng *rand.Rand) *Instance {
	candidates := container.QueryAll(AttrImage)
	var chosen *page.Element
	if i := ChooseImage(len(candidates), rng); i >= 0 {
		chosen = candidates[i]
	}

	var cfg EffectConfig
	if chosen != nil {
		cfg = ResolveConfig(container, chosen)
	} else {
		cfg = ResolveConfig(container, nil)
	}

	name := elementName(container)
	var src image.Image
	switch {
	case chosen == nil:
		_, _ = fmt.Fprintf(os.Stderr, "[kaleidoscope] warning: %s has no %s element, using placeholder\n", name, AttrImage)
	default:
		path, ok := doc.Resolve(chosen)
		if !ok {
			_, _ = fmt.Fprintf(os.Stderr, "[kaleidoscope] warning: %s image has no src, using placeholder\n", name)
			break
		}
		img, err := LoadImage(path)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[kaleidoscope] warning: %s: %v, using placeholder\n", name, err)
			break
		}
		src = img
	}
	return NewInstance(name, cfg, src, width, height)
}

// elementName prefers the id attribute, then the tag.
func elementName(e *page.Element) string {
	if id, ok := e.Attr("id"); ok && id != "" {
		return "#" + id
	}
	return e.Tag
}

// Effect returns the instance's renderer-independent state.
func (in *Instance) Effect() *Effect { return in.effect }

// Source returns the image the instance samples.
func (in *Instance) Source() image.Image { return in.source }

// SetPixelRatio sets the canvas device pixel ratio, clamped to
// [1, MaxPixelRatio].
func (in *Instance) SetPixelRatio(ratio float64) {
	in.canvas.resize(in.canvas.width, in.canvas.height, ratio)
}

// Resize updates the container size.
func (in *Instance) Resize(width, height float64) {
	in.effect.Resize(width, height)
	in.canvas.resize(width, height, in.canvas.ratio)
	in.rendered = false
}

// PointerMove feeds a pointer position in container-local CSS pixels.
func (in *Instance) PointerMove(localX, localY float64) {
	in.effect.PointerMove(localX, localY)
}

// Scroll feeds the container's top edge relative to the viewport top.
func (in *Instance) Scroll(top, viewportHeight float64) {
	in.effect.Scroll(top, viewportHeight)
}

// Update runs the per-frame animation step.
func (in *Instance) Update(now time.Time) {
	in.effect.Advance(now)
}

// Stop freezes the instance; its canvas keeps the last rendered frame.
func (in *Instance) Stop() { in.effect.Stop() }

// Playing reports whether the instance is still animating.
func (in *Instance) Playing() bool { return in.effect.Playing() }

// Render draws the current frame into the instance canvas. A stopped
// instance that has already rendered keeps its frame.
func (in *Instance) Render() {
	if in.disposed {
		return
	}
	if in.rendered && !in.effect.Playing() {
		return
	}
	if in.texture == nil {
		in.texture = ebiten.NewImageFromImage(in.source)
	}
	if in.prog == nil {
		in.prog = newProgram()
	}
	in.canvas.fill(in.effect.Config().ClearColor)
	u := in.effect.Uniforms()
	in.prog.draw(in.canvas.ensure(), in.texture, &u)
	in.rendered = true
}

// Draw composites the canvas onto dst with its top-left at (x, y).
func (in *Instance) Draw(dst *ebiten.Image, x, y float64) {
	if in.disposed {
		return
	}
	in.canvas.drawTo(dst, x, y)
}

// Canvas returns the backing canvas image, or nil before the first Render.
func (in *Instance) Canvas() *ebiten.Image { return in.canvas.image }

// RenderSoftware renders the current frame on the CPU at the given size,
// independent of the GPU canvas.
func (in *Instance) RenderSoftware(width, height int) *image.RGBA {
	if in.soft == nil {
		in.soft = NewSoftwareTexture(in.source)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	u := in.effect.Uniforms()
	RenderSoftware(dst, in.soft, &u, in.effect.Config().ClearColor)
	return dst
}

// Dispose stops the instance and releases its GPU resources.
func (in *Instance) Dispose() {
	if in.disposed {
		return
	}
	in.effect.Stop()
	in.canvas.dispose()
	if in.texture != nil {
		in.texture.Deallocate()
		in.texture = nil
	}
	in.disposed = true
}

// IsDisposed reports whether Dispose has been called.
func (in *Instance) IsDisposed() bool { return in.disposed }

package kaleidoscope

import "time"

// Effect is the renderer-independent half of an instance: its resolved
// configuration, viewport and animation state. The GPU instance, the
// software renderer and the recorder all drive an Effect.
type Effect struct {
	cfg      EffectConfig
	viewport ViewportState
	anim     *Animator
	fade     *fadeTween
	opacity  float64
	stopped  bool
}

// NewEffect creates an effect for a container of the given size.
func NewEffect(cfg EffectConfig, width, height float64) *Effect {
	if cfg.Segments < 1 {
		cfg.Segments = DefaultSegments
	}
	if cfg.ScaleFactor == 0 {
		cfg.ScaleFactor = 1
	}
	if !finitePositive(cfg.ImageAspect) {
		cfg.ImageAspect = 1
	}
	e := &Effect{
		cfg:  cfg,
		anim: NewAnimator(cfg.Mode, cfg.MotionFactor),
		fade: newFadeTween(cfg.FadeSeconds, nil),
	}
	e.opacity = e.fade.value
	e.viewport.resize(width, height)
	return e
}

// Config returns the effect's immutable configuration.
func (e *Effect) Config() EffectConfig { return e.cfg }

// Viewport returns the current viewport state.
func (e *Effect) Viewport() ViewportState { return e.viewport }

// Animation returns the current animation state.
func (e *Effect) Animation() AnimationState { return e.anim.State() }

// Resize recomputes the viewport and letterbox correction.
func (e *Effect) Resize(width, height float64) {
	e.viewport.resize(width, height)
}

// PointerMove feeds a pointer position in container-local pixels.
func (e *Effect) PointerMove(localX, localY float64) {
	if e.stopped {
		return
	}
	e.anim.PointerMove(localX, localY, e.viewport.Width, e.viewport.Height)
}

// Scroll feeds the container's top edge relative to the viewport top and the
// viewport height.
func (e *Effect) Scroll(top, viewportHeight float64) {
	if e.stopped {
		return
	}
	e.anim.Scroll(top, viewportHeight)
}

// Advance runs the per-frame update at the given wall-clock time.
func (e *Effect) Advance(now time.Time) {
	if e.stopped {
		return
	}
	dt := e.anim.Advance(now)
	e.opacity = e.fade.Update(float32(dt))
}

// Stop freezes the effect. Later frames and input leave the uniforms as
// they were.
func (e *Effect) Stop() { e.stopped = true }

// Playing reports whether the effect is still animating.
func (e *Effect) Playing() bool { return !e.stopped }

// Uniforms returns the shader inputs for the current frame.
func (e *Effect) Uniforms() Uniforms {
	st := e.anim.State()
	return Uniforms{
		Resolution:     e.viewport.Resolution,
		Segments:       float64(e.cfg.Segments),
		ScaleFactor:    e.cfg.ScaleFactor,
		ImageAspect:    e.cfg.ImageAspect,
		Offset:         st.Offset,
		Rotation:       st.Rotation,
		OffsetAmount:   OffsetAmount,
		RotationAmount: RotationAmount,
		Opacity:        e.opacity,
	}
}

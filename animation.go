package kaleidoscope

import (
	"math"
	"time"
)

// AnimationState holds the live values behind the offset and rotation
// uniforms.
type AnimationState struct {
	Offset   Vec2
	Rotation float64 // radians
	// LastFrameSeconds is the time of the previous frame in seconds since
	// the animator's first frame.
	LastFrameSeconds float64
}

// Animator is the per-instance mode state machine. Exactly one update rule,
// selected by the mode given at construction, mutates the state.
//
// Events that do not belong to the animator's mode are ignored, so a host
// can broadcast pointer and scroll events to every instance.
type Animator struct {
	mode   Mode
	motion float64
	state  AnimationState
	start  time.Time
	last   time.Time
}

// NewAnimator creates an animator for the given mode and motion factor.
// Mouse mode starts with the pointer at the container center, which maps to
// a zero offset and rotation.
func NewAnimator(mode Mode, motionFactor float64) *Animator {
	if motionFactor == 0 || math.IsNaN(motionFactor) || math.IsInf(motionFactor, 0) {
		motionFactor = 1
	}
	a := &Animator{mode: mode, motion: motionFactor}
	if mode == ModeMouse {
		a.setPointer(0.5, 0.5)
	}
	return a
}

// Mode returns the animator's fixed mode.
func (a *Animator) Mode() Mode { return a.mode }

// State returns a copy of the current animation state.
func (a *Animator) State() AnimationState { return a.state }

// PointerMove updates a mouse-mode animator from a pointer position given in
// container-local pixels. The position is normalized by the container size;
// positions outside the container extrapolate past [-1, 1].
func (a *Animator) PointerMove(localX, localY, width, height float64) {
	if a.mode != ModeMouse {
		return
	}
	if !finitePositive(width) || !finitePositive(height) {
		return
	}
	a.setPointer(localX/width, localY/height)
}

// setPointer maps a normalized pointer position in [0, 1] to the offset in
// [-1, 1]*motion and the rotation in [-π, π]*motion.
func (a *Animator) setPointer(nx, ny float64) {
	a.state.Offset = Vec2{
		X: (nx - 0.5) * 2 * a.motion,
		Y: (ny - 0.5) * 2 * a.motion,
	}
	a.state.Rotation = math.Pi * (ny - 0.5) * 2 * a.motion
}

// Advance records a frame at the given wall-clock time. In loop mode the
// rotation grows by RotationSpeed*motion per elapsed second. The first call
// only establishes the reference time. It returns the elapsed seconds.
func (a *Animator) Advance(now time.Time) float64 {
	dt := 0.0
	if a.last.IsZero() {
		a.start = now
	} else if now.After(a.last) {
		dt = now.Sub(a.last).Seconds()
	}
	a.last = now
	a.state.LastFrameSeconds = now.Sub(a.start).Seconds()
	if a.mode == ModeLoop {
		a.step(dt)
	}
	return dt
}

// step advances loop-mode rotation by dt seconds.
func (a *Animator) step(dt float64) {
	a.state.Rotation += RotationSpeed * a.motion * dt
}

// Scroll updates a scroll-mode animator from the container's top edge
// relative to the viewport top and the viewport height, both in pixels.
func (a *Animator) Scroll(top, viewportHeight float64) {
	if a.mode != ModeScroll {
		return
	}
	a.state.Rotation = ScrollProgress(top, viewportHeight) * 2 * math.Pi * a.motion
}

// ScrollProgress returns how far a container has travelled up through the
// viewport, in viewport heights. It is 0 while the container's top edge is at
// or below the viewport's bottom edge, 1 when the top edge reaches the
// viewport top, and keeps growing after that: a container taller than the
// viewport passes 1 while still visible.
func ScrollProgress(top, viewportHeight float64) float64 {
	if !finitePositive(viewportHeight) {
		return 0
	}
	return max(0, (viewportHeight-top)/viewportHeight)
}

package kaleidoscope

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fadeTween animates the opacity uniform from 0 to 1. A zero duration is
// complete immediately.
type fadeTween struct {
	tween *gween.Tween
	value float64
	done  bool
}

func newFadeTween(seconds float64, fn ease.TweenFunc) *fadeTween {
	if !finitePositive(seconds) {
		return &fadeTween{value: 1, done: true}
	}
	if fn == nil {
		fn = ease.OutQuad
	}
	return &fadeTween{tween: gween.New(0, 1, float32(seconds), fn)}
}

// Update advances the fade by dt seconds and returns the current opacity.
func (f *fadeTween) Update(dt float32) float64 {
	if f.done {
		return f.value
	}
	val, finished := f.tween.Update(dt)
	f.value = clamp(float64(val), 0, 1)
	if finished {
		f.value = 1
		f.done = true
	}
	return f.value
}

package kaleidoscope

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Default smooth-scroll parameters.
const (
	defaultScrollDuration = 0.25 // seconds
	wheelStep             = 60.0 // CSS pixels per wheel notch
)

// scroller is the page's vertical scroll position. Scroll requests can jump
// or ease toward their target.
type scroller struct {
	Y   float64
	max float64

	target   float64
	tween    *gween.Tween
	duration float32
	easeFn   ease.TweenFunc
}

func newScroller() scroller {
	return scroller{duration: defaultScrollDuration, easeFn: ease.OutCubic}
}

// setMax updates the largest scroll offset and clamps the position.
func (s *scroller) setMax(m float64) {
	s.max = max(0, m)
	if s.Y > s.max {
		s.Y = s.max
		s.tween = nil
	}
	if s.target > s.max {
		s.target = s.max
	}
}

// scrollTo moves toward y. With smooth false, or a zero duration, the jump is
// immediate.
func (s *scroller) scrollTo(y float64, smooth bool) {
	y = clamp(y, 0, s.max)
	s.target = y
	if !smooth || s.duration <= 0 {
		s.Y = y
		s.tween = nil
		return
	}
	s.tween = gween.New(float32(s.Y), float32(y), s.duration, s.easeFn)
}

// scrollBy moves relative to the pending target, so repeated wheel notches
// accumulate instead of restarting from the current position.
func (s *scroller) scrollBy(dy float64, smooth bool) {
	base := s.Y
	if s.tween != nil {
		base = s.target
	}
	s.scrollTo(base+dy, smooth)
}

// update advances an active scroll animation by dt seconds and reports
// whether the position changed.
func (s *scroller) update(dt float32) bool {
	if s.tween == nil {
		return false
	}
	prev := s.Y
	val, done := s.tween.Update(dt)
	s.Y = clamp(float64(val), 0, s.max)
	if done {
		s.Y = s.target
		s.tween = nil
	}
	return s.Y != prev
}

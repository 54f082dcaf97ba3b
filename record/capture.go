package record

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/phanxgames/kaleidoscope"
)

// FrameWriter consumes rendered frames. *Encoder implements it.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) error
}

// Script describes a deterministic capture: a fixed frame rate, a duration
// and the frame size. Time is stepped exactly 1/FrameRate per frame,
// starting at Start.
type Script struct {
	Duration  time.Duration
	FrameRate int
	Width     int
	Height    int
	Start     time.Time
}

// FrameCount returns how many frames the script produces.
func (s Script) FrameCount() int {
	rate := s.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return max(1, int(math.Round(s.Duration.Seconds()*float64(rate))))
}

// frameTime returns the timestamp of frame i.
func (s Script) frameTime(i int) time.Time {
	rate := s.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	start := s.Start
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	return start.Add(time.Duration(i) * time.Second / time.Duration(rate))
}

// Capture renders inst frame by frame with the software renderer and writes
// each frame to w. Mouse-mode instances follow a Lissajous pointer path over
// the container and scroll-mode instances see the container sweep from the
// bottom of a container-high viewport to above its top. It returns the
// number of frames written.
func Capture(w FrameWriter, inst *kaleidoscope.Instance, s Script) (int, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return 0, fmt.Errorf("record: invalid frame size %dx%d", s.Width, s.Height)
	}
	n := s.FrameCount()
	vp := inst.Effect().Viewport()
	mode := inst.Effect().Config().Mode
	for i := 0; i < n; i++ {
		p := 0.0
		if n > 1 {
			p = float64(i) / float64(n-1)
		}
		switch mode {
		case kaleidoscope.ModeMouse:
			x, y := LissajousPoint(p)
			inst.PointerMove(x*vp.Width, y*vp.Height)
		case kaleidoscope.ModeScroll:
			inst.Scroll(ScrollSweep(p, vp.Height), vp.Height)
		}
		inst.Update(s.frameTime(i))
		if err := w.WriteFrame(inst.RenderSoftware(s.Width, s.Height)); err != nil {
			return i, err
		}
	}
	return n, nil
}

// LissajousPoint returns a normalized pointer position for progress p in
// [0, 1]. The 3:2 curve stays inside [0.05, 0.95] on both axes and returns
// to its start at p = 1.
func LissajousPoint(p float64) (x, y float64) {
	t := 2 * math.Pi * p
	x = 0.5 + 0.45*math.Sin(3*t)
	y = 0.5 + 0.45*math.Sin(2*t)
	return x, y
}

// ScrollSweep returns the container top for progress p: from the bottom of
// the viewport (top = viewportHeight) to one viewport above it
// (top = -viewportHeight).
func ScrollSweep(p, viewportHeight float64) float64 {
	return viewportHeight - 2*viewportHeight*p
}

package record

import (
	"errors"
	"image"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/phanxgames/kaleidoscope"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
		codec   string
		rate    int
	}{
		{"defaults", Options{Path: "out.mp4", Width: 64, Height: 48}, false, "h264", DefaultFrameRate},
		{"hevc alias", Options{Path: "out.mp4", Width: 64, Height: 48, Codec: "H265", FrameRate: 24}, false, "hevc", 24},
		{"no path", Options{Width: 64, Height: 48}, true, "", 0},
		{"zero size", Options{Path: "out.mp4"}, true, "", 0},
		{"bad codec", Options{Path: "out.mp4", Width: 1, Height: 1, Codec: "vp9"}, true, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts
			err := o.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if o.Codec != tt.codec {
				t.Errorf("Codec = %q, want %q", o.Codec, tt.codec)
			}
			if o.FrameRate != tt.rate {
				t.Errorf("FrameRate = %d, want %d", o.FrameRate, tt.rate)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	o := Options{Path: "clip.MP4", Width: 320, Height: 200, FrameRate: 25, Codec: "hevc", Bitrate: "4M"}
	if err := o.validate(); err != nil {
		t.Fatal(err)
	}
	in, out := o.args()
	if in["f"] != "rawvideo" || in["pix_fmt"] != "rgba" {
		t.Errorf("input args = %v, want rawvideo rgba", in)
	}
	if in["s"] != "320x200" {
		t.Errorf("size = %v, want 320x200", in["s"])
	}
	if in["framerate"] != 25 {
		t.Errorf("framerate = %v, want 25", in["framerate"])
	}
	if out["c:v"] != "libx265" {
		t.Errorf("codec = %v, want libx265", out["c:v"])
	}
	if out["tag:v"] != "hvc1" {
		t.Errorf("tag = %v, want hvc1", out["tag:v"])
	}
	if out["b:v"] != "4M" {
		t.Errorf("bitrate = %v, want 4M", out["b:v"])
	}
}

func TestStreamArgs(t *testing.T) {
	o := Options{Path: "clip.mp4", Width: 8, Height: 4}
	if err := o.validate(); err != nil {
		t.Fatal(err)
	}
	args := o.stream(strings.NewReader("")).GetArgs()
	for _, want := range []string{"pipe:", "rawvideo", "8x4", "libx264", "yuv420p", "clip.mp4", "-y"} {
		if !slices.Contains(args, want) {
			t.Errorf("args %v missing %q", args, want)
		}
	}
}

func TestScriptFrameCount(t *testing.T) {
	tests := []struct {
		s    Script
		want int
	}{
		{Script{Duration: 2 * time.Second, FrameRate: 30}, 60},
		{Script{Duration: time.Second}, DefaultFrameRate},
		{Script{Duration: 0, FrameRate: 30}, 1},
	}
	for _, tt := range tests {
		if got := tt.s.FrameCount(); got != tt.want {
			t.Errorf("FrameCount(%v) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestScriptFrameTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Script{FrameRate: 4, Start: start}
	if got := s.frameTime(2).Sub(start); got != 500*time.Millisecond {
		t.Errorf("frameTime(2) = %v after start, want 500ms", got)
	}
}

type frameSink struct {
	frames []*image.RGBA
	failAt int
}

func (f *frameSink) WriteFrame(img *image.RGBA) error {
	if f.failAt > 0 && len(f.frames) == f.failAt {
		return errors.New("sink full")
	}
	f.frames = append(f.frames, img)
	return nil
}

func newInstance(mode kaleidoscope.Mode) *kaleidoscope.Instance {
	cfg := kaleidoscope.DefaultConfig()
	cfg.Mode = mode
	return kaleidoscope.NewInstance("rec", cfg, nil, 40, 30)
}

func TestCaptureLoop(t *testing.T) {
	inst := newInstance(kaleidoscope.ModeLoop)
	sink := &frameSink{}
	n, err := Capture(sink, inst, Script{Duration: time.Second, FrameRate: 10, Width: 16, Height: 12})
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 || len(sink.frames) != 10 {
		t.Fatalf("frames = %d (%d written), want 10", n, len(sink.frames))
	}
	if b := sink.frames[0].Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("frame size = %v, want 16x12", b)
	}
	// Nine steps of 0.1s at the default motion factor.
	want := kaleidoscope.RotationSpeed * 0.9
	if got := inst.Effect().Animation().Rotation; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Rotation = %v, want %v", got, want)
	}
}

func TestCaptureScrollSweep(t *testing.T) {
	inst := newInstance(kaleidoscope.ModeScroll)
	sink := &frameSink{}
	if _, err := Capture(sink, inst, Script{Duration: time.Second, FrameRate: 5, Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	// The last frame has the container one viewport above: progress 2.
	want := 2 * 2 * 3.141592653589793
	if got := inst.Effect().Animation().Rotation; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Rotation = %v, want %v", got, want)
	}
}

func TestCaptureWriteError(t *testing.T) {
	inst := newInstance(kaleidoscope.ModeStatic)
	sink := &frameSink{failAt: 3}
	n, err := Capture(sink, inst, Script{Duration: time.Second, FrameRate: 10, Width: 4, Height: 4})
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 3 {
		t.Errorf("frames = %d, want 3", n)
	}
}

func TestCaptureInvalidSize(t *testing.T) {
	if _, err := Capture(&frameSink{}, newInstance(kaleidoscope.ModeStatic), Script{}); err == nil {
		t.Error("expected error for zero frame size")
	}
}

func TestLissajousPointBounds(t *testing.T) {
	for i := 0; i <= 100; i++ {
		x, y := LissajousPoint(float64(i) / 100)
		if x < 0.05-1e-9 || x > 0.95+1e-9 || y < 0.05-1e-9 || y > 0.95+1e-9 {
			t.Fatalf("LissajousPoint(%v) = (%v, %v), outside [0.05, 0.95]", float64(i)/100, x, y)
		}
	}
	x0, y0 := LissajousPoint(0)
	x1, y1 := LissajousPoint(1)
	if d := (x1-x0)*(x1-x0) + (y1-y0)*(y1-y0); d > 1e-18 {
		t.Errorf("path does not close: (%v, %v) vs (%v, %v)", x0, y0, x1, y1)
	}
}

func TestScrollSweep(t *testing.T) {
	if got := ScrollSweep(0, 300); got != 300 {
		t.Errorf("ScrollSweep(0) = %v, want 300", got)
	}
	if got := ScrollSweep(0.5, 300); got != 0 {
		t.Errorf("ScrollSweep(0.5) = %v, want 0", got)
	}
	if got := ScrollSweep(1, 300); got != -300 {
		t.Errorf("ScrollSweep(1) = %v, want -300", got)
	}
}

func TestEncoderRejectsWrongSize(t *testing.T) {
	e := &Encoder{opts: Options{Width: 4, Height: 4}}
	err := e.WriteFrame(image.NewRGBA(image.Rect(0, 0, 3, 4)))
	if err == nil || !strings.Contains(err.Error(), "want 4x4") {
		t.Errorf("WriteFrame error = %v, want size mismatch", err)
	}
}

package kaleidoscope

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/phanxgames/kaleidoscope/page"
)

func newTestInstance(mode Mode) *Instance {
	cfg := DefaultConfig()
	cfg.Mode = mode
	return NewInstance(mode.String(), cfg, nil, 0, 0)
}

// fakeClock returns a clock advanced manually by the test.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// --- Layout ---

func TestHostLayout(t *testing.T) {
	h := NewHost(800, 600)
	a := newTestInstance(ModeStatic)
	b := newTestInstance(ModeStatic)
	h.Add(a, 0, 300)
	h.Add(b, 200, 0)

	if got, want := h.InstanceRect(0), (Rect{X: 24, Y: 24, Width: 752, Height: 300}); got != want {
		t.Errorf("rect 0 = %+v, want %+v", got, want)
	}
	if got, want := h.InstanceRect(1), (Rect{X: 24, Y: 348, Width: 200, Height: defaultContainerHeight}); got != want {
		t.Errorf("rect 1 = %+v, want %+v", got, want)
	}
	if got := h.PageHeight(); got != 772 {
		t.Errorf("PageHeight = %v, want 772", got)
	}
	if got := a.Effect().Viewport().Width; got != 752 {
		t.Errorf("instance width = %v, want 752", got)
	}
	if len(h.Instances()) != 2 {
		t.Errorf("Instances = %d, want 2", len(h.Instances()))
	}
}

func TestHostResizeRelayouts(t *testing.T) {
	h := NewHost(800, 600)
	in := newTestInstance(ModeStatic)
	h.Add(in, 0, 100)
	h.Resize(400, 300)
	if got := in.Effect().Viewport().Width; got != 352 {
		t.Errorf("width after resize = %v, want 352", got)
	}
	if w, hh := h.Viewport(); w != 400 || hh != 300 {
		t.Errorf("Viewport = %v, %v, want 400, 300", w, hh)
	}
}

// --- Scroll ---

func TestHostInitialScrollProgress(t *testing.T) {
	h := NewHost(800, 600)
	in := newTestInstance(ModeScroll)
	h.Add(in, 0, 300)
	want := (600.0 - 24) / 600 * 2 * math.Pi
	assertNear(t, "Rotation", in.Effect().Animation().Rotation, want)
}

func TestHostScrollTo(t *testing.T) {
	h := NewHost(800, 600)
	in := newTestInstance(ModeScroll)
	h.Add(in, 0, 300)
	h.Add(newTestInstance(ModeStatic), 0, 500)
	// Page: 24 + 300 + 24 + 500 + 24 = 872, max scroll 272.

	h.ScrollTo(100, false)
	if got := h.ScrollY(); got != 100 {
		t.Fatalf("ScrollY = %v, want 100", got)
	}
	want := (600.0 - (24 - 100)) / 600 * 2 * math.Pi
	assertNear(t, "Rotation", in.Effect().Animation().Rotation, want)

	h.ScrollTo(1e6, false)
	if got := h.ScrollY(); got != 272 {
		t.Errorf("ScrollY = %v, want clamped 272", got)
	}
	h.ScrollBy(-1e6, false)
	if got := h.ScrollY(); got != 0 {
		t.Errorf("ScrollY = %v, want 0", got)
	}
}

func TestHostSmoothScroll(t *testing.T) {
	clock := &fakeClock{now: t0}
	h := NewHost(800, 600)
	h.SetClock(clock.Now)
	in := newTestInstance(ModeScroll)
	h.Add(in, 0, 1000)
	before := in.Effect().Animation().Rotation

	h.ScrollTo(200, true)
	if got := h.ScrollY(); got != 0 {
		t.Fatalf("ScrollY before update = %v, want 0", got)
	}
	if err := h.Update(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	if err := h.Update(); err != nil {
		t.Fatal(err)
	}
	if got := h.ScrollY(); got != 200 {
		t.Errorf("ScrollY = %v, want 200", got)
	}
	if got := in.Effect().Animation().Rotation; got <= before {
		t.Errorf("Rotation = %v, want > %v after scrolling down", got, before)
	}
}

func TestScrollerAccumulates(t *testing.T) {
	s := newScroller()
	s.setMax(1000)
	s.scrollBy(60, true)
	s.scrollBy(60, true)
	if s.target != 120 {
		t.Errorf("target = %v, want 120", s.target)
	}
	s.update(1)
	if s.Y != 120 || s.tween != nil {
		t.Errorf("Y = %v (tween %v), want 120 and finished", s.Y, s.tween != nil)
	}
	if s.update(1) {
		t.Error("update reported change with no active tween")
	}
}

func TestScrollerSetMaxClamps(t *testing.T) {
	s := newScroller()
	s.setMax(500)
	s.scrollTo(400, false)
	s.setMax(100)
	if s.Y != 100 {
		t.Errorf("Y = %v, want 100", s.Y)
	}
	s.setMax(-50)
	if s.Y != 0 || s.max != 0 {
		t.Errorf("Y, max = %v, %v, want 0, 0", s.Y, s.max)
	}
}

// --- Update ---

func TestHostUpdateAnimatesLoop(t *testing.T) {
	clock := &fakeClock{now: t0}
	h := NewHost(800, 600)
	h.SetClock(clock.Now)
	in := newTestInstance(ModeLoop)
	h.Add(in, 0, 100)
	for i := 0; i < 3; i++ {
		if err := h.Update(); err != nil {
			t.Fatal(err)
		}
		clock.Advance(time.Second)
	}
	assertNear(t, "Rotation", in.Effect().Animation().Rotation, 2*RotationSpeed)
}

func TestHostStopAndQuit(t *testing.T) {
	h := NewHost(800, 600)
	a, b := newTestInstance(ModeLoop), newTestInstance(ModeMouse)
	h.Add(a, 0, 100)
	h.Add(b, 0, 100)
	h.Stop()
	if a.Playing() || b.Playing() {
		t.Error("instances still playing after Stop")
	}
	if err := h.Update(); err != nil {
		t.Fatalf("Update after Stop = %v, want nil", err)
	}
	h.Quit()
	if err := h.Update(); !errors.Is(err, ErrQuit) {
		t.Errorf("Update after Quit = %v, want ErrQuit", err)
	}
}

func TestHostUpdateFuncError(t *testing.T) {
	h := NewHost(100, 100)
	boom := errors.New("boom")
	h.SetUpdateFunc(func() error { return boom })
	if err := h.Update(); !errors.Is(err, boom) {
		t.Errorf("Update = %v, want boom", err)
	}
}

// --- Injection ---

func TestInjectMoveDispatchesLocal(t *testing.T) {
	h := NewHost(800, 600)
	in := newTestInstance(ModeMouse)
	h.Add(in, 0, 300) // rect {24, 24, 752, 300}

	h.InjectMove(24+376, 24+150)
	if len(h.injectQueue) != 1 {
		t.Fatalf("queued = %d, want 1", len(h.injectQueue))
	}
	h.processInput()
	if got := in.Effect().Animation().Offset; got != (Vec2{}) {
		t.Errorf("Offset at center = %v, want zero", got)
	}

	h.InjectMove(24, 24)
	h.processInput()
	if got := in.Effect().Animation().Offset; got != (Vec2{X: -1, Y: -1}) {
		t.Errorf("Offset at corner = %v, want {-1 -1}", got)
	}
}

func TestInjectMoveOutsideIgnored(t *testing.T) {
	h := NewHost(800, 600)
	in := newTestInstance(ModeMouse)
	h.Add(in, 0, 300)
	h.InjectMove(5, 5)
	h.processInput()
	if got := in.Effect().Animation().Offset; got != (Vec2{}) {
		t.Errorf("Offset = %v, want unchanged", got)
	}
}

func TestInjectMoveAccountsForScroll(t *testing.T) {
	h := NewHost(800, 600)
	h.Add(newTestInstance(ModeStatic), 0, 400)
	in := newTestInstance(ModeMouse)
	h.Add(in, 0, 400) // page rect {24, 448, 752, 400}
	h.ScrollTo(248, false)

	// Window y 400 is page y 648, the vertical center of the second container.
	h.InjectMove(24+752, 400)
	h.processInput()
	got := in.Effect().Animation().Offset
	assertNear(t, "Offset.X", got.X, 1)
	assertNear(t, "Offset.Y", got.Y, 0)
}

func TestInjectPointerPath(t *testing.T) {
	h := NewHost(800, 600)
	h.InjectPointerPath(0, 0, 100, 200, 5)
	if len(h.injectQueue) != 5 {
		t.Fatalf("queued = %d, want 5", len(h.injectQueue))
	}
	mid := h.injectQueue[2]
	assertNear(t, "mid x", mid.x, 50)
	assertNear(t, "mid y", mid.y, 100)
	last := h.injectQueue[4]
	if last.x != 100 || last.y != 200 {
		t.Errorf("last = (%v, %v), want (100, 200)", last.x, last.y)
	}

	h.injectQueue = nil
	h.InjectPointerPath(0, 0, 1, 1, 0)
	if len(h.injectQueue) != 2 {
		t.Errorf("queued = %d, want minimum 2", len(h.injectQueue))
	}
}

func TestInjectScrollAndResize(t *testing.T) {
	h := NewHost(800, 600)
	h.Add(newTestInstance(ModeStatic), 0, 2000)
	h.InjectScroll(300)
	h.InjectScrollBy(-100)
	h.InjectResize(500, 400)

	h.processInput()
	if got := h.ScrollY(); got != 300 {
		t.Errorf("ScrollY = %v, want 300", got)
	}
	h.processInput()
	if got := h.ScrollY(); got != 200 {
		t.Errorf("ScrollY = %v, want 200", got)
	}
	h.processInput()
	if w, hh := h.Viewport(); w != 500 || hh != 400 {
		t.Errorf("Viewport = %v, %v, want 500, 400", w, hh)
	}
	if len(h.injectQueue) != 0 {
		t.Errorf("queued = %d, want 0", len(h.injectQueue))
	}
}

func TestProcessInjectedInputEmptyQueue(t *testing.T) {
	h := NewHost(100, 100)
	if h.processInjectedInput() {
		t.Error("processInjectedInput() = true on empty queue")
	}
}

// --- Test runner ---

func TestLoadTestScript(t *testing.T) {
	r, err := LoadTestScript([]byte(`{"steps": [
		{"action": "move", "x": 10, "y": 20},
		{"action": "wait", "frames": 2},
		{"action": "screenshot", "label": "after move"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.steps) != 3 || r.steps[0].X != 10 || r.steps[2].Label != "after move" {
		t.Errorf("steps = %+v", r.steps)
	}
}

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"invalid json", `{`, "parse test script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "click"}]}`, `unknown action "click"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestRunnerSequence(t *testing.T) {
	r, err := LoadTestScript([]byte(`{"steps": [
		{"action": "path", "fromX": 0, "fromY": 0, "toX": 10, "toY": 10, "frames": 3},
		{"action": "wait", "frames": 2},
		{"action": "scroll", "y": 50},
		{"action": "stop"},
		{"action": "quit"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	h := NewHost(800, 600)
	in := newTestInstance(ModeLoop)
	h.Add(in, 0, 2000)
	h.SetTestRunner(r)

	// path: queued on frame 1, drained over frames 1-3.
	r.step(h)
	if len(h.injectQueue) != 3 {
		t.Fatalf("queued = %d, want 3", len(h.injectQueue))
	}
	for i := 0; i < 3; i++ {
		h.processInput()
	}
	r.step(h) // wait 2: this frame counts
	r.step(h)
	if r.cursor != 2 {
		t.Fatalf("cursor = %d, want 2 after wait", r.cursor)
	}
	r.step(h) // scroll
	h.processInput()
	if got := h.ScrollY(); got != 50 {
		t.Errorf("ScrollY = %v, want 50", got)
	}
	r.step(h) // stop
	if in.Playing() {
		t.Error("instance still playing after stop step")
	}
	r.step(h) // quit
	if !r.Done() {
		t.Error("Done() = false after last step")
	}
	if err := h.Update(); !errors.Is(err, ErrQuit) {
		t.Errorf("Update = %v, want ErrQuit", err)
	}
}

func TestRunnerWaitsForInjectQueue(t *testing.T) {
	r, err := LoadTestScript([]byte(`{"steps": [{"action": "stop"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	h := NewHost(100, 100)
	in := newTestInstance(ModeLoop)
	h.Add(in, 0, 50)
	h.InjectMove(1, 1)
	r.step(h)
	if !in.Playing() || r.cursor != 0 {
		t.Error("runner advanced with a pending injection")
	}
	h.processInput()
	r.step(h)
	if in.Playing() {
		t.Error("stop step did not run after the queue drained")
	}
}

// --- Screenshots ---

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"loop 6 segments", "loop_6_segments"},
		{"a/b\\c", "a_b_c"},
		{"v1.2-final", "v1.2-final"},
		{"  ", "unlabeled"},
		{"", "unlabeled"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueue(t *testing.T) {
	h := NewHost(100, 100)
	if h.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want screenshots", h.ScreenshotDir)
	}
	h.Screenshot("one")
	h.Screenshot("two")
	if len(h.screenshotQueue) != 2 || h.screenshotQueue[1] != "two" {
		t.Errorf("queue = %v, want [one two]", h.screenshotQueue)
	}
	h.CopyFrame()
	if !h.clipboardQueued {
		t.Error("CopyFrame did not queue a copy")
	}
}

func TestUnpremultiply(t *testing.T) {
	img := unpremultiply([]byte{64, 32, 0, 128, 10, 20, 30, 255, 0, 0, 0, 0}, 3, 1)
	want := []byte{127, 63, 0, 128, 10, 20, 30, 255, 0, 0, 0, 0}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("Pix = %v, want %v", img.Pix, want)
		}
	}
}

// --- Page ---

func TestNewHostFromPage(t *testing.T) {
	const src = `<html><head><title>Demo</title></head><body>
<div tlg-kaleidoscope-canvas tlg-kaleidoscope-mode="scroll" style="width: 320px; height: 200px"></div>
<div tlg-kaleidoscope-canvas tlg-kaleidoscope-mode="mouse"></div>
</body></html>`
	doc, err := page.Parse(strings.NewReader(src), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	h := NewHostFromPage(doc, 800, 600, nil)
	insts := h.Instances()
	if len(insts) != 2 {
		t.Fatalf("Instances = %d, want 2", len(insts))
	}
	if got, want := h.InstanceRect(0), (Rect{X: 24, Y: 24, Width: 320, Height: 200}); got != want {
		t.Errorf("rect 0 = %+v, want %+v", got, want)
	}
	if got, want := h.InstanceRect(1), (Rect{X: 24, Y: 248, Width: 752, Height: defaultContainerHeight}); got != want {
		t.Errorf("rect 1 = %+v, want %+v", got, want)
	}
	if insts[0].Effect().Config().Mode != ModeScroll || insts[1].Effect().Config().Mode != ModeMouse {
		t.Error("modes not resolved from attributes")
	}
}

func TestIntersects(t *testing.T) {
	view := Rect{X: 0, Y: 100, Width: 800, Height: 600}
	tests := []struct {
		r    Rect
		want bool
	}{
		{Rect{X: 24, Y: 24, Width: 100, Height: 50}, false},
		{Rect{X: 24, Y: 24, Width: 100, Height: 76}, false},
		{Rect{X: 24, Y: 24, Width: 100, Height: 77}, true},
		{Rect{X: 24, Y: 699, Width: 100, Height: 10}, true},
		{Rect{X: 24, Y: 700, Width: 100, Height: 10}, false},
	}
	for _, tt := range tests {
		if got := intersects(view, tt.r); got != tt.want {
			t.Errorf("intersects(%+v) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

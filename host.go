package kaleidoscope

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/kaleidoscope/page"
)

// ErrQuit is returned from Host.Update after Quit. Run treats it as a clean
// exit.
var ErrQuit = errors.New("kaleidoscope: quit")

const (
	PageMargin             = 24.0  // CSS pixels around and between containers
	defaultContainerHeight = 400.0 // used when a container declares no height
)

// hosted is an instance placed on the page.
type hosted struct {
	inst  *Instance
	declW float64 // declared width, 0 = fill the viewport width
	declH float64
	rect  Rect // page coordinates
}

// Host plays the role of the browser page: it lays instances out in a
// vertically scrolling document, turns window input into pointer and scroll
// events, and drives every instance once per frame. It implements
// ebiten.Game.
type Host struct {
	// ClearColor is the page background.
	ClearColor Color
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
	// ShowFPS draws an FPS/TPS readout in the top-left corner.
	ShowFPS bool

	items      []*hosted
	width      float64 // viewport size in CSS pixels
	height     float64
	outsideW   int
	outsideH   int
	pageHeight float64
	pixelRatio float64
	scroll     scroller

	now        func() time.Time
	lastUpdate time.Time
	updateFunc func() error
	quit       bool

	debug bool

	// Input state
	cursor      [2]int
	cursorKnown bool
	touchIDs    []ebiten.TouchID
	touch       [2]int
	touchActive bool
	injectQueue []syntheticEvent

	screenshotQueue []string
	clipboardQueued bool
	testRunner      *TestRunner
	fps             fpsOverlay
}

// NewHost creates an empty page with the given viewport size in CSS pixels.
func NewHost(width, height float64) *Host {
	h := &Host{
		ClearColor:    ColorWhite,
		ScreenshotDir: "screenshots",
		pixelRatio:    1,
		scroll:        newScroller(),
		now:           time.Now,
	}
	h.width, h.height = clampViewport(width, height)
	return h
}

// NewHostFromPage creates a host holding one instance per
// tlg-kaleidoscope-canvas element of doc. rng picks among candidate images
// and may be nil.
func NewHostFromPage(doc *page.Document, width, height float64, rng *rand.Rand) *Host {
	h := NewHost(width, height)
	for _, el := range doc.QueryAll(AttrCanvas) {
		declW, declH := el.Size(0, defaultContainerHeight)
		w := declW
		if w == 0 {
			w = h.fluidWidth()
		}
		inst := NewInstanceFromElement(doc, el, w, declH, rng)
		h.Add(inst, declW, declH)
	}
	return h
}

func clampViewport(w, h float64) (float64, float64) {
	if !finitePositive(w) {
		w = 1
	}
	if !finitePositive(h) {
		h = 1
	}
	return w, h
}

func (h *Host) fluidWidth() float64 {
	return max(1, h.width-2*PageMargin)
}

// Add places an instance below the existing ones. A zero declW makes the
// container fill the viewport width; a zero declH uses the default height.
// The instance receives its initial scroll position immediately.
func (h *Host) Add(inst *Instance, declW, declH float64) {
	if declH <= 0 {
		declH = defaultContainerHeight
	}
	inst.SetPixelRatio(h.pixelRatio)
	h.items = append(h.items, &hosted{inst: inst, declW: max(0, declW), declH: declH})
	h.layout()
	h.notifyScroll()
}

// Instances returns the hosted instances in page order. The returned slice is
// freshly allocated.
func (h *Host) Instances() []*Instance {
	out := make([]*Instance, len(h.items))
	for i, it := range h.items {
		out[i] = it.inst
	}
	return out
}

// InstanceRect returns the page-space rectangle of the i-th instance.
func (h *Host) InstanceRect(i int) Rect {
	return h.items[i].rect
}

// Viewport returns the viewport size in CSS pixels.
func (h *Host) Viewport() (width, height float64) { return h.width, h.height }

// PageHeight returns the laid-out document height.
func (h *Host) PageHeight() float64 { return h.pageHeight }

// ScrollY returns the current scroll offset.
func (h *Host) ScrollY() float64 { return h.scroll.Y }

// ScrollTo scrolls the page to y, easing when smooth is true. Scroll events
// reach the instances as the position changes.
func (h *Host) ScrollTo(y float64, smooth bool) {
	prev := h.scroll.Y
	h.scroll.scrollTo(y, smooth)
	if h.scroll.Y != prev {
		h.notifyScroll()
	}
}

// ScrollBy scrolls the page by dy.
func (h *Host) ScrollBy(dy float64, smooth bool) {
	prev := h.scroll.Y
	h.scroll.scrollBy(dy, smooth)
	if h.scroll.Y != prev {
		h.notifyScroll()
	}
}

// Resize changes the viewport size, re-lays out the page and notifies the
// instances.
func (h *Host) Resize(width, height float64) {
	h.width, h.height = clampViewport(width, height)
	h.layout()
	h.notifyScroll()
}

// setPixelRatio applies a device scale factor to every canvas.
func (h *Host) setPixelRatio(r float64) {
	if !finitePositive(r) || r == h.pixelRatio {
		return
	}
	h.pixelRatio = r
	for _, it := range h.items {
		it.inst.SetPixelRatio(r)
	}
}

// layout stacks containers vertically and resizes those whose size changed.
func (h *Host) layout() {
	y := PageMargin
	for _, it := range h.items {
		w := it.declW
		if w == 0 {
			w = h.fluidWidth()
		}
		r := Rect{X: PageMargin, Y: y, Width: w, Height: it.declH}
		if r.Width != it.rect.Width || r.Height != it.rect.Height {
			it.inst.Resize(r.Width, r.Height)
		}
		it.rect = r
		y += r.Height + PageMargin
	}
	h.pageHeight = y
	h.scroll.setMax(h.pageHeight - h.height)
}

// notifyScroll delivers the current scroll position to every instance.
func (h *Host) notifyScroll() {
	for _, it := range h.items {
		it.inst.Scroll(it.rect.Y-h.scroll.Y, h.height)
	}
}

// Stop freezes every instance. The loop keeps running and the canvases keep
// their last frame.
func (h *Host) Stop() {
	for _, it := range h.items {
		it.inst.Stop()
	}
}

// Quit makes the next Update return ErrQuit.
func (h *Host) Quit() { h.quit = true }

// SetUpdateFunc registers a callback run at the end of every Update.
func (h *Host) SetUpdateFunc(fn func() error) { h.updateFunc = fn }

// SetClock replaces the wall clock used for frame timing.
func (h *Host) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	h.now = now
}

// SetDebugMode enables per-frame timing stats on stderr.
func (h *Host) SetDebugMode(enabled bool) { h.debug = enabled }

// Update processes input, advances scrolling and animates every instance.
func (h *Host) Update() error {
	now := h.now()
	dt := float32(1.0 / float64(ebiten.TPS()))
	if !h.lastUpdate.IsZero() && now.After(h.lastUpdate) {
		dt = float32(now.Sub(h.lastUpdate).Seconds())
	}
	h.lastUpdate = now

	if h.testRunner != nil {
		h.testRunner.step(h)
	}
	h.processInput()
	if h.scroll.update(dt) {
		h.notifyScroll()
	}
	for _, it := range h.items {
		it.inst.Update(now)
	}
	h.fps.update(float64(dt))

	if h.updateFunc != nil {
		if err := h.updateFunc(); err != nil {
			return err
		}
	}
	if h.quit {
		return ErrQuit
	}
	return nil
}

// Draw renders every instance into its canvas and composites the visible
// ones at their scrolled positions.
func (h *Host) Draw(screen *ebiten.Image) {
	var stats debugStats
	var t0 time.Time
	if h.debug {
		t0 = time.Now()
	}

	screen.Fill(h.ClearColor.toRGBA())
	for _, it := range h.items {
		it.inst.Render()
	}

	if h.debug {
		stats.renderTime = time.Since(t0)
		t0 = time.Now()
	}

	view := Rect{X: 0, Y: h.scroll.Y, Width: h.width, Height: h.height}
	for _, it := range h.items {
		if !intersects(view, it.rect) {
			continue
		}
		it.inst.Draw(screen, it.rect.X, it.rect.Y-h.scroll.Y)
		stats.visibleCount++
	}
	if h.ShowFPS {
		h.fps.draw(screen)
	}

	if h.debug {
		stats.compositeTime = time.Since(t0)
		stats.instanceCount = len(h.items)
		for _, it := range h.items {
			if it.inst.Playing() {
				stats.playingCount++
			}
		}
		h.debugLog(stats)
	}

	h.flushScreenshots(screen)
	h.flushClipboard(screen)
}

// Layout tracks the window size. A change in the outside size is a window
// resize; otherwise the host keeps its current viewport (which injected
// resizes may have changed).
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.outsideW || outsideHeight != h.outsideH {
		h.outsideW, h.outsideH = outsideWidth, outsideHeight
		h.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	if m := ebiten.Monitor(); m != nil {
		h.setPixelRatio(m.DeviceScaleFactor())
	}
	return int(h.width), int(h.height)
}

func intersects(a, b Rect) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

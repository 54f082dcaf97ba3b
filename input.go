package kaleidoscope

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Keyboard scroll distances in CSS pixels.
const (
	arrowStep = 40.0
)

// processInput polls the window for pointer, wheel and keyboard input and
// turns it into page events. An injected event, when queued, replaces real
// input for the frame.
func (h *Host) processInput() {
	if h.processInjectedInput() {
		return
	}
	h.processCursor()
	h.processTouches()
	h.processWheel()
	h.processKeys()
}

// processCursor dispatches a pointer move when the mouse cursor changed
// position since the last frame.
func (h *Host) processCursor() {
	x, y := ebiten.CursorPosition()
	if h.cursorKnown && x == h.cursor[0] && y == h.cursor[1] {
		return
	}
	h.cursor = [2]int{x, y}
	h.cursorKnown = true
	h.dispatchPointer(float64(x), float64(y))
}

// processTouches follows the first active touch. A touch drag moves the
// pointer; it does not scroll the page.
func (h *Host) processTouches() {
	h.touchIDs = ebiten.AppendTouchIDs(h.touchIDs[:0])
	if len(h.touchIDs) == 0 {
		h.touchActive = false
		return
	}
	x, y := ebiten.TouchPosition(h.touchIDs[0])
	if h.touchActive && x == h.touch[0] && y == h.touch[1] {
		return
	}
	h.touch = [2]int{x, y}
	h.touchActive = true
	h.dispatchPointer(float64(x), float64(y))
}

func (h *Host) processWheel() {
	_, dy := ebiten.Wheel()
	if dy != 0 {
		// Wheel up (positive) scrolls toward the top of the page.
		h.ScrollBy(-dy*wheelStep, true)
	}
}

func (h *Host) processKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		h.ScrollBy(arrowStep, true)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		h.ScrollBy(-arrowStep, true)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		h.ScrollBy(h.pageStep(), true)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		h.ScrollBy(-h.pageStep(), true)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		h.ScrollTo(0, true)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		h.ScrollTo(h.scroll.max, true)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		h.Screenshot("manual")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		h.CopyFrame()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		h.Stop()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.Quit()
	}
}

// pageStep is the distance of a PageUp/PageDown scroll.
func (h *Host) pageStep() float64 {
	return max(arrowStep, h.height-arrowStep)
}

// dispatchPointer delivers a pointer position in window coordinates to every
// container under it, converted to container-local coordinates.
func (h *Host) dispatchPointer(screenX, screenY float64) {
	pageY := screenY + h.scroll.Y
	for _, it := range h.items {
		if !it.rect.Contains(screenX, pageY) {
			continue
		}
		it.inst.PointerMove(screenX-it.rect.X, pageY-it.rect.Y)
	}
}

package kaleidoscope

// syntheticKind tells processInjectedInput what an injected event does.
type syntheticKind uint8

const (
	syntheticMove syntheticKind = iota
	syntheticScrollTo
	syntheticScrollBy
	syntheticResize
)

// syntheticEvent is a single injected input event. Pointer coordinates are
// window coordinates, the same space real cursor input arrives in.
type syntheticEvent struct {
	kind syntheticKind
	x, y float64
}

// InjectMove queues a pointer move to window coordinates (x, y). The event is
// consumed on the next frame's input pass.
func (h *Host) InjectMove(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticEvent{kind: syntheticMove, x: x, y: y})
}

// InjectPointerPath queues a linearly interpolated pointer path from
// (fromX, fromY) to (toX, toY), one move per frame. The sequence consumes
// frames frames; the minimum is 2 (start and end).
func (h *Host) InjectPointerPath(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	h.InjectMove(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		h.InjectMove(lerp(fromX, toX, t), lerp(fromY, toY, t))
	}
	h.InjectMove(toX, toY)
}

// InjectScroll queues an immediate scroll to page offset y.
func (h *Host) InjectScroll(y float64) {
	h.injectQueue = append(h.injectQueue, syntheticEvent{kind: syntheticScrollTo, y: y})
}

// InjectScrollBy queues an immediate relative scroll.
func (h *Host) InjectScrollBy(dy float64) {
	h.injectQueue = append(h.injectQueue, syntheticEvent{kind: syntheticScrollBy, y: dy})
}

// InjectResize queues a viewport resize.
func (h *Host) InjectResize(width, height float64) {
	h.injectQueue = append(h.injectQueue, syntheticEvent{kind: syntheticResize, x: width, y: height})
}

// processInjectedInput pops one event from the inject queue and applies it.
// Returns true if an event was consumed (real input is skipped that frame).
func (h *Host) processInjectedInput() bool {
	if len(h.injectQueue) == 0 {
		return false
	}
	evt := h.injectQueue[0]
	copy(h.injectQueue, h.injectQueue[1:])
	h.injectQueue = h.injectQueue[:len(h.injectQueue)-1]

	switch evt.kind {
	case syntheticMove:
		h.dispatchPointer(evt.x, evt.y)
	case syntheticScrollTo:
		h.ScrollTo(evt.y, false)
	case syntheticScrollBy:
		h.ScrollBy(evt.y, false)
	case syntheticResize:
		h.Resize(evt.x, evt.y)
	}
	return true
}

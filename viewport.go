package kaleidoscope

// ViewportState is the container's pixel size and the derived shader
// resolution (width, height, a1, a2). a1 and a2 letterbox the square
// reference pattern so it is never stretched.
type ViewportState struct {
	Width, Height float64
	Resolution    [4]float64
}

// Letterbox returns the aspect correction pair for a container of the given
// size. Both values are positive and exactly one of them is 1. Non-positive
// sizes are treated as one pixel.
func Letterbox(width, height float64) (a1, a2 float64) {
	if !finitePositive(width) {
		width = 1
	}
	if !finitePositive(height) {
		height = 1
	}
	if height/width > 1 {
		return width / height, 1
	}
	return 1, height / width
}

// NewViewport computes the viewport state for a container size.
func NewViewport(width, height float64) ViewportState {
	var v ViewportState
	v.resize(width, height)
	return v
}

func (v *ViewportState) resize(width, height float64) {
	a1, a2 := Letterbox(width, height)
	v.Width, v.Height = width, height
	v.Resolution = [4]float64{width, height, a1, a2}
}

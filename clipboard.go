package kaleidoscope

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"
)

var clipboardState struct {
	once        sync.Once
	initialized bool
}

// clipboardReady initializes the system clipboard on first use. Platforms
// without a clipboard leave copying disabled.
func clipboardReady() bool {
	clipboardState.once.Do(func() {
		err := clipboard.Init()
		clipboardState.initialized = err == nil
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[kaleidoscope] clipboard disabled: %v\n", err)
		}
	})
	return clipboardState.initialized
}

// CopyFrame queues a copy of the current frame to the system clipboard as a
// PNG image. The copy happens at the end of the next Draw.
func (h *Host) CopyFrame() {
	h.clipboardQueued = true
}

func (h *Host) flushClipboard(screen *ebiten.Image) {
	if !h.clipboardQueued {
		return
	}
	h.clipboardQueued = false
	if !clipboardReady() {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, readScreen(screen)); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[kaleidoscope] clipboard: %v\n", err)
		return
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
}

package kaleidoscope

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and instance counts.
// Only populated when Host.debug is true.
type debugStats struct {
	renderTime    time.Duration
	compositeTime time.Duration
	instanceCount int
	visibleCount  int
	playingCount  int
}

// debugLog prints timing stats to stderr.
func (h *Host) debugLog(stats debugStats) {
	if !h.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[kaleidoscope] render: %v | composite: %v | total: %v\n",
		stats.renderTime, stats.compositeTime, stats.renderTime+stats.compositeTime)
	_, _ = fmt.Fprintf(os.Stderr,
		"[kaleidoscope] instances: %d | visible: %d | playing: %d | scroll: %.1f/%.1f\n",
		stats.instanceCount, stats.visibleCount, stats.playingCount, h.scroll.Y, h.scroll.max)
}

package kaleidoscope

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowFPS draws an FPS/TPS readout in the top-left corner.
	ShowFPS bool
	// Debug logs per-frame timing to stderr.
	Debug bool
	// ScreenshotDir overrides Host.ScreenshotDir when non-empty.
	ScreenshotDir string
	// Fixed disables window resizing.
	Fixed bool
}

// Run opens a window and drives host until the window closes or Quit is
// called. Quitting is not an error.
func Run(host *Host, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.Title == "" {
		cfg.Title = "kaleidoscope"
	}
	host.ShowFPS = host.ShowFPS || cfg.ShowFPS
	host.SetDebugMode(cfg.Debug)
	if cfg.ScreenshotDir != "" {
		host.ScreenshotDir = cfg.ScreenshotDir
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Fixed {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	err := ebiten.RunGame(host)
	for _, inst := range host.Instances() {
		inst.Dispose()
	}
	if err != nil && !errors.Is(err, ErrQuit) {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// Package kaleidoscope renders a kaleidoscope effect from a source image
// with an [Ebitengine] Kage shader, animated by one of four modes: static,
// mouse, loop and scroll.
//
// # Quick start
//
// Load an HTML page whose containers carry tlg-kaleidoscope-* attributes and
// run it in a window:
//
//	doc, err := page.Load("index.html")
//	if err != nil {
//		log.Fatal(err)
//	}
//	host := kaleidoscope.NewHostFromPage(doc, 800, 600, nil)
//	kaleidoscope.Run(host, kaleidoscope.RunConfig{Title: doc.Title, Width: 800, Height: 600})
//
// Or build an instance directly from an image:
//
//	cfg := kaleidoscope.DefaultConfig()
//	cfg.Mode = kaleidoscope.ModeLoop
//	host := kaleidoscope.NewHost(800, 600)
//	host.Add(kaleidoscope.NewInstance("demo", cfg, img, 0, 0), 0, 0)
//
// # Attributes
//
// A container element marked tlg-kaleidoscope-canvas holds one or more
// candidate images marked tlg-kaleidoscope-image; one is chosen at random.
// The container may set -scale, -motion, -mode, -segments, -clear and -fade;
// the image may set -aspect ("W/H" or a number). Malformed values fall back
// to their defaults.
//
// # Modes
//
//   - static: no animation.
//   - mouse: pointer position over the container drives offset and rotation.
//   - loop: rotation grows by RotationSpeed*motion radians per second.
//   - scroll: rotation follows the container's position in the viewport.
//
// # Host controls
//
// Mouse wheel, arrow keys, PageUp/PageDown, Space, Home and End scroll the
// page. P saves a screenshot, C copies the frame to the clipboard, S stops
// every instance and Escape quits.
//
// [Ebitengine]: https://ebitengine.org
package kaleidoscope

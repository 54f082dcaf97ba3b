package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sqweek/dialog"

	"github.com/phanxgames/kaleidoscope"
	"github.com/phanxgames/kaleidoscope/page"
	"github.com/phanxgames/kaleidoscope/record"
)

func main() {
	// A .env file may set KALEIDOSCOPE_FFMPEG and KALEIDOSCOPE_SHOTS.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment variables from .env file")
	}

	// Source
	var pagePath = flag.String("page", "", "HTML page with tlg-kaleidoscope-canvas containers")
	var imagePath = flag.String("image", "", "Single image to show in one full-width container")
	var pick = flag.Bool("pick", false, "Choose the page or image with a file dialog")
	var seed = flag.Uint64("seed", 0, "Seed for random image choice (0 = random)")

	// Single-image effect settings
	var mode = flag.String("mode", "loop", "Animation mode: static, mouse, loop or scroll")
	var segments = flag.String("segments", "6", "Number of mirrored wedges")
	var scale = flag.String("scale", "1", "Texture scale factor")
	var motion = flag.String("motion", "1", "Motion factor")
	var aspect = flag.String("aspect", "1", "Image aspect, W/H or a number")
	var clearColor = flag.String("clear", "#eeeeee", "Clear color (CSS)")
	var fade = flag.Float64("fade", 0, "Fade-in duration in seconds")

	// Window
	var width = flag.Int("width", 960, "Window width")
	var height = flag.Int("height", 720, "Window height")
	var title = flag.String("title", "", "Window title (defaults to the page title)")
	var showFPS = flag.Bool("fps", false, "Show FPS overlay")
	var debug = flag.Bool("debug", false, "Log per-frame timing to stderr")
	var script = flag.String("script", "", "JSON test script to run")
	var shots = flag.String("shots", envOr("KALEIDOSCOPE_SHOTS", "screenshots"), "Screenshot directory")

	// Headless output
	var snapshot = flag.String("snapshot", "", "Render the first container to a PNG file and exit")
	var recordPath = flag.String("record", "", "Record the first container to a video file and exit")
	var duration = flag.Float64("duration", 10, "Recording duration in seconds")
	var rate = flag.Int("rate", record.DefaultFrameRate, "Recording frame rate")
	var codec = flag.String("codec", "h264", "Recording codec: h264 or hevc")
	var ffmpegPath = flag.String("ffmpeg", os.Getenv("KALEIDOSCOPE_FFMPEG"), "Path to ffmpeg executable")

	flag.Parse()

	if *pick {
		chosen, err := dialog.File().
			Filter("Pages and images", "html", "htm", "png", "jpg", "jpeg", "gif", "webp", "bmp", "tiff").
			Load()
		if err != nil {
			log.Fatalf("Pick file: %v", err)
		}
		switch strings.ToLower(filepath.Ext(chosen)) {
		case ".html", ".htm":
			*pagePath = chosen
		default:
			*imagePath = chosen
		}
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewPCG(*seed, *seed))
	}

	var host *kaleidoscope.Host
	switch {
	case *pagePath != "":
		doc, err := page.Load(*pagePath)
		if err != nil {
			log.Fatalf("Error loading page: %v", err)
		}
		host = kaleidoscope.NewHostFromPage(doc, float64(*width), float64(*height), rng)
		if *title == "" {
			*title = doc.Title
		}
		log.Printf("Loaded %s: %d containers", *pagePath, len(host.Instances()))
	case *imagePath != "":
		img, err := kaleidoscope.LoadImage(*imagePath)
		if err != nil {
			log.Fatalf("Error loading image: %v", err)
		}
		cfg := kaleidoscope.ResolveConfig(flagAttrs{
			kaleidoscope.AttrMode:     *mode,
			kaleidoscope.AttrSegments: *segments,
			kaleidoscope.AttrScale:    *scale,
			kaleidoscope.AttrMotion:   *motion,
			kaleidoscope.AttrClear:    *clearColor,
			kaleidoscope.AttrFade:     fmt.Sprint(*fade),
		}, flagAttrs{
			kaleidoscope.AttrAspect: *aspect,
		})
		host = kaleidoscope.NewHost(float64(*width), float64(*height))
		inst := kaleidoscope.NewInstance(filepath.Base(*imagePath), cfg, img, 0, 0)
		host.Add(inst, 0, max(1, float64(*height)-2*kaleidoscope.PageMargin))
	default:
		fmt.Fprintln(os.Stderr, "usage: kaleidoscope -page index.html | -image file [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *title == "" {
		*title = "Kaleidoscope"
	}

	if *snapshot != "" || *recordPath != "" {
		if err := runHeadless(host, *snapshot, *recordPath, record.Options{
			Path:       *recordPath,
			FrameRate:  *rate,
			Codec:      *codec,
			FfmpegPath: *ffmpegPath,
		}, time.Duration(*duration*float64(time.Second))); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *script != "" {
		data, err := os.ReadFile(*script)
		if err != nil {
			log.Fatalf("Error reading script: %v", err)
		}
		runner, err := kaleidoscope.LoadTestScript(data)
		if err != nil {
			log.Fatalf("Error loading script: %v", err)
		}
		host.SetTestRunner(runner)
		// One extra frame lets the last queued screenshot flush.
		after := 0
		host.SetUpdateFunc(func() error {
			if runner.Done() {
				after++
				if after > 1 {
					host.Quit()
				}
			}
			return nil
		})
	}

	if err := kaleidoscope.Run(host, kaleidoscope.RunConfig{
		Title:         *title,
		Width:         *width,
		Height:        *height,
		ShowFPS:       *showFPS,
		Debug:         *debug,
		ScreenshotDir: *shots,
	}); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// flagAttrs presents command-line values as element attributes.
type flagAttrs map[string]string

func (a flagAttrs) Attr(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

// runHeadless renders the first container without opening a window.
func runHeadless(host *kaleidoscope.Host, snapshotPath, recordPath string, opts record.Options, duration time.Duration) error {
	insts := host.Instances()
	if len(insts) == 0 {
		return fmt.Errorf("no tlg-kaleidoscope-canvas containers to render")
	}
	inst := insts[0]
	vp := inst.Effect().Viewport()
	w, h := max(1, int(vp.Width)), max(1, int(vp.Height))

	if snapshotPath != "" {
		inst.Update(time.Now())
		f, err := os.Create(snapshotPath)
		if err != nil {
			return fmt.Errorf("create snapshot: %w", err)
		}
		if err := kaleidoscope.Snapshot(f, inst, w, h); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close snapshot: %w", err)
		}
		log.Printf("Wrote %s (%dx%d)", snapshotPath, w, h)
	}

	if recordPath != "" {
		// yuv420p needs even dimensions.
		opts.Width, opts.Height = w&^1, h&^1
		enc, err := record.NewEncoder(opts)
		if err != nil {
			return err
		}
		log.Printf("Recording %s: %v at %d fps", recordPath, duration, enc.Options().FrameRate)
		n, err := record.Capture(enc, inst, record.Script{
			Duration:  duration,
			FrameRate: enc.Options().FrameRate,
			Width:     opts.Width,
			Height:    opts.Height,
		})
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("record %s: %w", recordPath, err)
		}
		log.Printf("Wrote %s (%d frames)", recordPath, n)
	}
	return nil
}

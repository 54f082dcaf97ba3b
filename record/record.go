// Package record encodes rendered kaleidoscope frames to video through an
// ffmpeg subprocess.
package record

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Options configures an Encoder.
type Options struct {
	Path      string
	Width     int
	Height    int
	FrameRate int
	// Codec is "h264" (default) or "hevc".
	Codec string
	// FfmpegPath overrides the ffmpeg executable looked up in PATH.
	FfmpegPath string
	// Bitrate is passed to ffmpeg as b:v when non-empty, e.g. "8M".
	Bitrate string
}

// DefaultFrameRate is used when Options.FrameRate is not positive.
const DefaultFrameRate = 30

func (o *Options) validate() error {
	if o.Path == "" {
		return errors.New("record: output path is empty")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("record: invalid frame size %dx%d", o.Width, o.Height)
	}
	if o.FrameRate <= 0 {
		o.FrameRate = DefaultFrameRate
	}
	switch strings.ToLower(o.Codec) {
	case "", "h264", "avc":
		o.Codec = "h264"
	case "hevc", "h265":
		o.Codec = "hevc"
	default:
		return fmt.Errorf("record: unsupported codec %q", o.Codec)
	}
	return nil
}

// args returns the ffmpeg input and output arguments. Frames arrive as raw
// RGBA on stdin.
func (o *Options) args() (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", o.Width, o.Height),
		"framerate": o.FrameRate,
	}
	outputArgs = ffmpeg.KwArgs{
		"pix_fmt": "yuv420p",
	}
	if o.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if strings.HasSuffix(strings.ToLower(o.Path), ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	if o.Bitrate != "" {
		outputArgs["b:v"] = o.Bitrate
	}
	return inputArgs, outputArgs
}

// stream builds the ffmpeg command reading from r.
func (o *Options) stream(r io.Reader) *ffmpeg.Stream {
	inputArgs, outputArgs := o.args()
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(o.Path, outputArgs).
		OverWriteOutput().WithInput(r).ErrorToStdOut()
	if o.FfmpegPath != "" {
		cmd = cmd.SetFfmpegPath(o.FfmpegPath)
	}
	return cmd
}

// Encoder streams frames into a running ffmpeg process. It is not safe for
// concurrent use.
type Encoder struct {
	opts   Options
	pw     *io.PipeWriter
	errc   chan error
	frames int
	closed bool
}

// NewEncoder starts ffmpeg writing to opts.Path.
func NewEncoder(opts Options) (*Encoder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	e := &Encoder{
		opts: opts,
		pw:   pw,
		errc: make(chan error, 1),
	}
	cmd := opts.stream(pr)
	go func() {
		err := cmd.Run()
		// Unblock pending writes if ffmpeg exits early.
		if err != nil {
			pr.CloseWithError(err)
		} else {
			pr.Close()
		}
		e.errc <- err
	}()
	return e, nil
}

// Options returns the validated encoder options.
func (e *Encoder) Options() Options { return e.opts }

// Frames returns the number of frames written so far.
func (e *Encoder) Frames() int { return e.frames }

// WriteFrame sends one frame. Its bounds must match the encoder size.
func (e *Encoder) WriteFrame(img *image.RGBA) error {
	if e.closed {
		return errors.New("record: write after close")
	}
	b := img.Bounds()
	if b.Dx() != e.opts.Width || b.Dy() != e.opts.Height {
		return fmt.Errorf("record: frame %d is %dx%d, want %dx%d",
			e.frames, b.Dx(), b.Dy(), e.opts.Width, e.opts.Height)
	}
	rowBytes := 4 * b.Dx()
	if img.Stride == rowBytes {
		off := img.PixOffset(b.Min.X, b.Min.Y)
		if _, err := e.pw.Write(img.Pix[off : off+rowBytes*b.Dy()]); err != nil {
			return fmt.Errorf("record: write frame %d: %w", e.frames, err)
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := img.PixOffset(b.Min.X, y)
			if _, err := e.pw.Write(img.Pix[off : off+rowBytes]); err != nil {
				return fmt.Errorf("record: write frame %d: %w", e.frames, err)
			}
		}
	}
	e.frames++
	return nil
}

// Close flushes the stream and waits for ffmpeg to finish.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.pw.Close()
	if err := <-e.errc; err != nil {
		return fmt.Errorf("record: ffmpeg: %w", err)
	}
	return nil
}

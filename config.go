package kaleidoscope

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/mazznoer/csscolorparser"
)

// Attribute names forming the markup surface of the effect.
const (
	AttrCanvas   = "tlg-kaleidoscope-canvas"   // marks a container as an effect root
	AttrImage    = "tlg-kaleidoscope-image"    // marks a candidate source image
	AttrScale    = "tlg-kaleidoscope-scale"    // zoom factor, default 1
	AttrMotion   = "tlg-kaleidoscope-motion"   // motion factor, default 1
	AttrMode     = "tlg-kaleidoscope-mode"     // static|mouse|loop|scroll
	AttrSegments = "tlg-kaleidoscope-segments" // wedge count, default 6
	AttrAspect   = "tlg-kaleidoscope-aspect"   // on the image: decimal or "W/H"
	AttrClear    = "tlg-kaleidoscope-clear"    // CSS color behind the plane
	AttrFade     = "tlg-kaleidoscope-fade"     // opacity fade-in, seconds
)

// AttrSource is anything that exposes string attributes, typically a
// page.Element.
type AttrSource interface {
	Attr(name string) (string, bool)
}

// EffectConfig is the immutable configuration of one instance.
type EffectConfig struct {
	ScaleFactor  float64
	MotionFactor float64
	Mode         Mode
	Segments     int
	ImageAspect  float64
	ClearColor   Color
	// FadeSeconds fades the opacity uniform in from 0 over this many
	// seconds. Zero means fully opaque from the first frame.
	FadeSeconds float64
}

// DefaultConfig returns the configuration used when no attributes are set.
func DefaultConfig() EffectConfig {
	return EffectConfig{
		ScaleFactor:  1,
		MotionFactor: 1,
		Mode:         ModeStatic,
		Segments:     DefaultSegments,
		ImageAspect:  1,
		ClearColor:   DefaultClearColor,
	}
}

// ResolveConfig reads the effect attributes from the container and the
// chosen image. Missing or invalid values fall back to their defaults; it
// never fails. image may be nil.
func ResolveConfig(container, image AttrSource) EffectConfig {
	cfg := DefaultConfig()
	if container != nil {
		cfg.ScaleFactor = parseFactor(attr(container, AttrScale), 1)
		cfg.MotionFactor = parseFactor(attr(container, AttrMotion), 1)
		cfg.Mode, _ = ParseMode(attr(container, AttrMode))
		cfg.Segments = ParseSegments(attr(container, AttrSegments))
		cfg.ClearColor = ParseClearColor(attr(container, AttrClear))
		cfg.FadeSeconds = parseNonNegative(attr(container, AttrFade))
	}
	if image != nil {
		cfg.ImageAspect = ParseAspect(attr(image, AttrAspect))
	}
	return cfg
}

func attr(src AttrSource, name string) string {
	v, _ := src.Attr(name)
	return v
}

// parseFloatPrefix parses the longest leading decimal number of s, the way
// a lenient markup parser does ("1.5x" is 1.5). ok is false when s has no
// numeric prefix.
func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			break scan
		}
		end++
	}
	for end > 0 {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
		end--
	}
	return 0, false
}

// parseFactor parses a multiplicative factor. Zero, NaN and unparsable input
// yield def.
func parseFactor(s string, def float64) float64 {
	v, ok := parseFloatPrefix(s)
	if !ok || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func parseNonNegative(s string) float64 {
	v, ok := parseFloatPrefix(s)
	if !ok || !finitePositive(v) {
		return 0
	}
	return v
}

// ParseSegments parses the integer wedge count. Values below 1 and
// unparsable input yield DefaultSegments.
func ParseSegments(s string) int {
	v, ok := parseFloatPrefix(s)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultSegments
	}
	n := int(math.Trunc(v))
	if n < 1 {
		return DefaultSegments
	}
	return n
}

// ParseAspect parses an image aspect ratio given either as a decimal ("1.5")
// or as a fraction ("16/9"). Anything that does not produce a finite
// positive ratio yields 1.
func ParseAspect(s string) float64 {
	s = strings.TrimSpace(s)
	if num, den, isFrac := strings.Cut(s, "/"); isFrac {
		w, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		h, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 != nil || err2 != nil {
			return 1
		}
		if r := w / h; finitePositive(r) {
			return r
		}
		return 1
	}
	v, ok := parseFloatPrefix(s)
	if !ok || !finitePositive(v) {
		return 1
	}
	return v
}

// ParseClearColor parses a CSS color. Empty or invalid input yields
// DefaultClearColor.
func ParseClearColor(s string) Color {
	if strings.TrimSpace(s) == "" {
		return DefaultClearColor
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return DefaultClearColor
	}
	return Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

package kaleidoscope

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand/v2"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes an image file. PNG, JPEG, GIF, WebP, BMP and TIFF are
// supported.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// ChooseImage picks one candidate uniformly at random. It returns -1 when
// there are no candidates. rng may be nil to use the global source.
func ChooseImage(n int, rng *rand.Rand) int {
	if n <= 0 {
		return -1
	}
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

const placeholderSize = 64

// PlaceholderImage returns the texture used when a container has no usable
// source image: a two-tone checkerboard derived from the clear color, so the
// effect still shows its symmetry.
func PlaceholderImage(clear Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	light := color.NRGBA{
		R: uint8(clamp(clear.R, 0, 1) * 255),
		G: uint8(clamp(clear.G, 0, 1) * 255),
		B: uint8(clamp(clear.B, 0, 1) * 255),
		A: 255,
	}
	dark := color.NRGBA{R: light.R / 3, G: light.G / 3, B: light.B / 3, A: 255}
	accent := color.NRGBA{R: 0xd0, G: 0x5a, B: 0x2c, A: 255}
	const cell = placeholderSize / 8
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			c := light
			if (x/cell+y/cell)%2 == 1 {
				c = dark
			}
			// A diagonal stripe breaks the checkerboard's own symmetry.
			if x >= y && x-y < cell {
				c = accent
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

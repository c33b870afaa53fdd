package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// Covers are hashed from a thumbnail no larger than this on either side.
	// The placeholder looks the same and encoding takes milliseconds.
	hashThumbSize = 64

	hashComponentsX = 4
	hashComponentsY = 3
)

// ErrUnsupportedFormat is returned for data no registered decoder accepts.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Info describes an encoded image.
type Info struct {
	Format string // jpeg, png, gif or webp
	Width  int
	Height int
}

// Inspect reads the image header without decoding pixels.
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// ComputeBlurHash returns a short BlurHash placeholder for an encoded cover.
func ComputeBlurHash(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	hash, err := blurhash.Encode(hashComponentsX, hashComponentsY, thumbnail(img, hashThumbSize))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail scales img to fit within size x size, keeping its aspect
// ratio. Images already small enough are returned as is.
func thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return img
	}

	if w >= h {
		h, w = max(h*size/w, 1), size
	} else {
		w, h = max(w*size/h, 1), size
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

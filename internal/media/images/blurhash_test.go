package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	info, err := Inspect(encodePNG(t, 120, 80))
	require.NoError(t, err)
	assert.Equal(t, Info{Format: "png", Width: 120, Height: 80}, info)

	_, err = Inspect([]byte("<html>not an image</html>"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestComputeBlurHash(t *testing.T) {
	data := encodePNG(t, 200, 300)

	hash, err := ComputeBlurHash(data)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	again, err := ComputeBlurHash(data)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	_, err = ComputeBlurHash([]byte("garbage"))
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 32, 32))
	assert.Same(t, small, thumbnail(small, hashThumbSize).(*image.RGBA))

	wide := thumbnail(image.NewRGBA(image.Rect(0, 0, 640, 100)), hashThumbSize)
	assert.Equal(t, 64, wide.Bounds().Dx())
	assert.Equal(t, 10, wide.Bounds().Dy())

	tall := thumbnail(image.NewRGBA(image.Rect(0, 0, 10, 1000)), hashThumbSize)
	assert.Equal(t, 1, tall.Bounds().Dx())
	assert.Equal(t, 64, tall.Bounds().Dy())
}

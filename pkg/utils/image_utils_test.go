package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func TestDetectContentType(t *testing.T) {
	ct, err := DetectContentType(encodePNG(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	ct, err = DetectContentType(encodeJPEG(t))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	_, err = DetectContentType([]byte("hello, not an image"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestToJPEG_PassesThroughJPEG(t *testing.T) {
	p := NewImageProcessor(0, zap.NewNop())
	data := encodeJPEG(t)

	out, err := p.ToJPEG(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestToJPEG_ConvertsPNG(t *testing.T) {
	p := NewImageProcessor(80, zap.NewNop())

	out, err := p.ToJPEG(encodePNG(t))
	require.NoError(t, err)

	ct, err := DetectContentType(out)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)
}

func TestToJPEG_RejectsTruncated(t *testing.T) {
	p := NewImageProcessor(80, zap.NewNop())
	data := encodePNG(t)

	_, err := p.ToJPEG(data[:20])
	assert.ErrorIs(t, err, ErrNotAnImage)
}

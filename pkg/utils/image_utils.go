package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"go.uber.org/zap"
)

const DefaultJPEGQuality = 90

var ErrNotAnImage = errors.New("not a supported image")

// ImageProcessor prepares an uploaded photo for the image hosts, which all
// receive JPEG.
type ImageProcessor struct {
	quality int
	log     *zap.Logger
}

func NewImageProcessor(quality int, log *zap.Logger) *ImageProcessor {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &ImageProcessor{quality: quality, log: log}
}

// DetectContentType sniffs the bytes and only accepts JPEG and PNG.
func DetectContentType(data []byte) (string, error) {
	switch ct := http.DetectContentType(data); ct {
	case "image/jpeg", "image/png":
		return ct, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, ct)
	}
}

// ToJPEG returns JPEG bytes for data. JPEG input is passed through untouched;
// PNG is decoded and re-encoded.
func (p *ImageProcessor) ToJPEG(data []byte) ([]byte, error) {
	contentType, err := DetectContentType(data)
	if err != nil {
		return nil, err
	}
	if contentType == "image/jpeg" {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
		}
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, err
	}

	p.log.Info("Image converted to JPEG",
		zap.String("from", contentType),
		zap.Int("quality", p.quality),
		zap.Int("size", buf.Len()))

	return buf.Bytes(), nil
}

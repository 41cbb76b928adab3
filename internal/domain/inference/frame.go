package inference

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Normalize resamples src onto a size x size canvas. The whole source is stretched to the
// square, so non-square inputs are distorted rather than cropped.
func Normalize(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if src == nil {
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// DefaultMaxSide bounds the pixel width and height of decoded frames.
const DefaultMaxSide = 4096

// ErrFrameTooLarge is returned when an image header declares more pixels per side than allowed.
var ErrFrameTooLarge = errors.New("frame dimensions exceed limit")

// Decode reads a still image in any registered format. The header is checked before the
// pixels are decoded, so a small file declaring huge dimensions is rejected without
// allocating the raster. maxSide <= 0 uses DefaultMaxSide.
func Decode(r io.Reader, maxSide int) (image.Image, string, error) {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read frame: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode frame header: %w", err)
	}
	if cfg.Width > maxSide || cfg.Height > maxSide {
		return nil, "", fmt.Errorf("%w: %dx%d, max %d per side", ErrFrameTooLarge, cfg.Width, cfg.Height, maxSide)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode frame: %w", err)
	}
	return img, format, nil
}

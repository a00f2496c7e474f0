package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"

	"golang.org/x/image/draw"
)

// CoverOptions controls how cover art is prepared before it is embedded
// or saved next to the audio files.
type CoverOptions struct {
	Resize  bool
	MaxSize int // maximum width and height in pixels when Resize is set
	ToJPEG  bool
}

// ImageService resizes and converts cover art.
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService encoding JPEG at quality 90.
func NewImageService() *ImageService {
	return &ImageService{quality: 90}
}

// Prepare applies opts to the image data. Data is returned unchanged when
// no option applies.
func (s *ImageService) Prepare(ctx context.Context, data []byte, opts CoverOptions) ([]byte, error) {
	if opts.Resize && opts.MaxSize > 0 {
		return s.ResizeImage(ctx, data, opts.MaxSize, opts.MaxSize)
	}
	if opts.ToJPEG {
		return s.ConvertToJPEG(ctx, data)
	}
	return data, nil
}

// LoadCover reads a cover image from disk and prepares it.
func (s *ImageService) LoadCover(ctx context.Context, path string, opts CoverOptions) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.Prepare(ctx, data, opts)
}

// ResizeImage scales an image down to fit within maxWidth x maxHeight,
// keeping its aspect ratio, and returns it JPEG-encoded. Smaller images
// are only re-encoded.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x666
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if width == bounds.Dx() && height == bounds.Dy() {
		return s.encode(img)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return s.encode(dst)
}

// fitWithin returns the largest size with the aspect ratio of width x
// height that fits in maxWidth x maxHeight, never scaling up.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		return int(float64(maxHeight) * ratio), maxHeight
	}
	return maxWidth, int(float64(maxWidth) / ratio)
}

// ConvertToJPEG re-encodes an image (JPEG, PNG) as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return s.encode(img)
}

func (s *ImageService) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

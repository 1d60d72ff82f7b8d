// Package imageproc shrinks and re-encodes uploaded images before they go
// to blob storage.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// ErrDecode is returned when the upload is not a readable image.
var ErrDecode = errors.New("unsupported or corrupt image")

// Preset is a resize and encode setting for one kind of image.
type Preset struct {
	MaxWidth int `mapstructure:"max_width"`
	Quality  int `mapstructure:"quality"`
}

var (
	// PostPreset is used for images attached to posts.
	PostPreset = Preset{MaxWidth: 1080, Quality: 70}
	// AvatarPreset is used for profile pictures.
	AvatarPreset = Preset{MaxWidth: 400, Quality: 80}
)

// Validate checks the preset bounds.
func (p Preset) Validate() error {
	if p.MaxWidth <= 0 {
		return fmt.Errorf("max_width must be positive, got %d", p.MaxWidth)
	}
	if p.Quality < 1 || p.Quality > 100 {
		return fmt.Errorf("quality must be within 1..100, got %d", p.Quality)
	}
	return nil
}

// Resize scales img down to at most maxWidth keeping the aspect ratio.
// Narrower images are returned unchanged.
func Resize(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

// Encode writes img as JPEG at quality.
func Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Compress resizes then encodes img with the preset.
func Compress(img image.Image, preset Preset) ([]byte, error) {
	return Encode(Resize(img, preset.MaxWidth), preset.Quality)
}

// Process decodes r, honouring EXIF orientation, and compresses it with
// the preset.
func Process(r io.Reader, preset Preset) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Compress(img, preset)
}

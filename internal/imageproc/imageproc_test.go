package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	return imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
}

func TestResize(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		maxWidth int
		wantW    int
		wantH    int
	}{
		{"wide image is scaled down", 2160, 1440, 1080, 1080, 720},
		{"narrow image is untouched", 640, 480, 1080, 640, 480},
		{"exact width is untouched", 400, 400, 400, 400, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resize(testImage(tt.w, tt.h), tt.maxWidth)
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}

func TestProcess(t *testing.T) {
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, testImage(1600, 800)))

	out, err := Process(&src, AvatarPreset)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestProcess_NotAnImage(t *testing.T) {
	_, err := Process(strings.NewReader("definitely not a picture"), PostPreset)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestPresetValidate(t *testing.T) {
	assert.NoError(t, PostPreset.Validate())
	assert.NoError(t, AvatarPreset.Validate())
	assert.Error(t, Preset{MaxWidth: 0, Quality: 70}.Validate())
	assert.Error(t, Preset{MaxWidth: 100, Quality: 101}.Validate())
}

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/spherical/pdfproc/internal/domain"
)

func sample(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encode(t *testing.T, f domain.OutputFormat, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch f {
	case domain.FormatJPEG:
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	case domain.FormatTIFF:
		require.NoError(t, tiff.Encode(&buf, img, nil))
	default:
		require.NoError(t, png.Encode(&buf, img))
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	for _, f := range []domain.OutputFormat{domain.FormatPNG, domain.FormatJPEG, domain.FormatTIFF} {
		t.Run(string(f), func(t *testing.T) {
			got, ok := Sniff(encode(t, f, sample(4, 4)))
			assert.True(t, ok)
			assert.Equal(t, f, got)
		})
	}

	_, ok := Sniff([]byte("%PDF-1.7"))
	assert.False(t, ok)
	_, ok = Sniff(nil)
	assert.False(t, ok)
}

func TestDecode(t *testing.T) {
	for _, f := range []domain.OutputFormat{domain.FormatPNG, domain.FormatJPEG, domain.FormatTIFF} {
		t.Run(string(f), func(t *testing.T) {
			img, err := Decode(domain.RenderedImage{Page: 1, Format: f, Data: encode(t, f, sample(12, 7))})
			require.NoError(t, err)
			assert.Equal(t, 12, img.Bounds().Dx())
			assert.Equal(t, 7, img.Bounds().Dy())
		})
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(domain.RenderedImage{Page: 3, Format: domain.FormatPNG, Data: []byte("nope")})
	assert.Equal(t, domain.ErrorTypeMalformedOutput, domain.TypeOf(err))
}

func TestThumbnail(t *testing.T) {
	small := sample(10, 10)
	assert.Same(t, small, Thumbnail(small, 20))

	thumb := Thumbnail(sample(200, 100), 50)
	assert.Equal(t, 50, thumb.Bounds().Dx())
	assert.Equal(t, 25, thumb.Bounds().Dy())
}

func TestShrink(t *testing.T) {
	page := domain.RenderedImage{Page: 2, Format: domain.FormatJPEG, Data: encode(t, domain.FormatJPEG, sample(64, 128))}

	out, err := Shrink(page, 32)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, domain.FormatPNG, out.Format)

	cfg, err := png.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

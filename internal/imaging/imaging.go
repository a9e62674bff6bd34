// Package imaging is the hand-off point for rendered page bytes: format
// sniffing, decoding and downscaling. Pages are produced by pdftocairo; this
// package never rasterizes PDF content itself.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/spherical/pdfproc/internal/domain"
)

// ErrOCRNotEnabled is returned when the binary was built without the ocr tag.
// Rebuild with -tags ocr (requires Tesseract) to enable recognition.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

var (
	pngMagic    = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic   = []byte{0xFF, 0xD8, 0xFF}
	tiffMagicLE = []byte("II*\x00")
	tiffMagicBE = []byte("MM\x00*")
)

// Sniff identifies the encoded format from its leading bytes.
func Sniff(data []byte) (domain.OutputFormat, bool) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return domain.FormatPNG, true
	case bytes.HasPrefix(data, jpegMagic):
		return domain.FormatJPEG, true
	case bytes.HasPrefix(data, tiffMagicLE), bytes.HasPrefix(data, tiffMagicBE):
		return domain.FormatTIFF, true
	}
	return "", false
}

// Decode decodes a rendered page.
func Decode(img domain.RenderedImage) (image.Image, error) {
	r := bytes.NewReader(img.Data)
	var (
		out image.Image
		err error
	)
	switch img.Format {
	case domain.FormatJPEG:
		out, err = jpeg.Decode(r)
	case domain.FormatTIFF:
		out, err = tiff.Decode(r)
	default:
		out, err = png.Decode(r)
	}
	if err != nil {
		return nil, domain.MalformedOutputError(fmt.Sprintf("decode page %d", img.Page), err)
	}
	return out, nil
}

// Thumbnail scales img so that neither side exceeds maxSide. Images that
// already fit are returned unchanged.
func Thumbnail(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}

	scale := float64(maxSide) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Shrink decodes img, downscales it to maxSide and re-encodes it as PNG.
func Shrink(img domain.RenderedImage, maxSide int) (domain.RenderedImage, error) {
	decoded, err := Decode(img)
	if err != nil {
		return domain.RenderedImage{}, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, Thumbnail(decoded, maxSide)); err != nil {
		return domain.RenderedImage{}, fmt.Errorf("encode page %d: %w", img.Page, err)
	}
	return domain.RenderedImage{Page: img.Page, Format: domain.FormatPNG, Data: buf.Bytes()}, nil
}

package parse

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"github.com/spherical/pdfproc/internal/domain"
)

// PageBreak is the character pdftotext emits after every page.
const PageBreak = "\f"

// DecodeUTF8 decodes raw as UTF-8, replacing invalid sequences with U+FFFD.
func DecodeUTF8(raw []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\ufffd")
	}
	return string(out)
}

// Decode converts tool output in the given encoding to a Go string.
func Decode(raw []byte, enc domain.TextEncoding) string {
	if enc == domain.EncodingLatin1 {
		if out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	}
	return DecodeUTF8(raw)
}

// Text parses pdftotext output. With SplitPages the output is cut on page
// breaks and numbered from the first requested page; otherwise one block with
// page 0 holds everything the tool printed.
func Text(raw []byte, opts domain.TextOptions) *domain.ExtractedText {
	s := Decode(raw, opts.Encoding)
	if opts.Normalize {
		s = norm.NFC.String(s)
	}

	if !opts.SplitPages {
		return &domain.ExtractedText{Pages: []domain.PageText{{Page: 0, Text: s}}}
	}

	parts := strings.Split(s, PageBreak)
	// Every page ends with a break, so the last element is the empty tail.
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}

	first := opts.Range.Start()
	pages := make([]domain.PageText, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, domain.PageText{Page: first + i, Text: p})
	}
	return &domain.ExtractedText{Pages: pages}
}

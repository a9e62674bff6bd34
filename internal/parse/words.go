package parse

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/spherical/pdfproc/internal/domain"
)

// Words parses the XHTML document pdftotext -bbox prints. Pages are numbered
// from the first requested page.
func Words(raw []byte, r domain.PageRange) ([]domain.PageWords, error) {
	z := html.NewTokenizer(bytes.NewReader(raw))

	var (
		pages   []domain.PageWords
		current *domain.PageWords
		word    *domain.Word
		text    strings.Builder
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, domain.MalformedOutputError("read bbox output", err)
			}
			if current != nil || word != nil {
				return nil, domain.MalformedOutputError("bbox output ended inside a page", nil)
			}
			if len(pages) == 0 {
				return nil, domain.MalformedOutputError("bbox output contains no pages", nil)
			}
			return pages, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			attrs := readAttrs(z, hasAttr)
			switch string(name) {
			case "page":
				if current != nil {
					return nil, domain.MalformedOutputError("nested page element", nil)
				}
				w, err := attrFloat(attrs, "width")
				if err != nil {
					return nil, err
				}
				h, err := attrFloat(attrs, "height")
				if err != nil {
					return nil, err
				}
				current = &domain.PageWords{Page: r.Start() + len(pages), Width: w, Height: h}
				if tt == html.SelfClosingTagToken {
					pages = append(pages, *current)
					current = nil
				}
			case "word":
				if current == nil {
					return nil, domain.MalformedOutputError("word outside of a page", nil)
				}
				w, err := wordBox(attrs)
				if err != nil {
					return nil, err
				}
				if tt == html.SelfClosingTagToken {
					current.Words = append(current.Words, w)
					continue
				}
				word = &w
				text.Reset()
			}

		case html.TextToken:
			if word != nil {
				text.Write(z.Text())
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "word":
				if word != nil && current != nil {
					word.Text = text.String()
					current.Words = append(current.Words, *word)
				}
				word = nil
			case "page":
				if current != nil {
					pages = append(pages, *current)
				}
				current = nil
			}
		}
	}
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := map[string]string{}
	for more {
		var k, v []byte
		k, v, more = z.TagAttr()
		attrs[string(k)] = string(v)
	}
	return attrs
}

// attrFloat reads a numeric attribute. The tokenizer lowercases attribute names.
func attrFloat(attrs map[string]string, name string) (float64, error) {
	raw, ok := attrs[strings.ToLower(name)]
	if !ok {
		return 0, domain.MalformedOutputError(fmt.Sprintf("missing %s attribute", name), nil)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, domain.MalformedOutputError(fmt.Sprintf("bad %s attribute %q", name, raw), err)
	}
	return f, nil
}

func wordBox(attrs map[string]string) (domain.Word, error) {
	var (
		w   domain.Word
		err error
	)
	if w.XMin, err = attrFloat(attrs, "xMin"); err != nil {
		return w, err
	}
	if w.YMin, err = attrFloat(attrs, "yMin"); err != nil {
		return w, err
	}
	if w.XMax, err = attrFloat(attrs, "xMax"); err != nil {
		return w, err
	}
	if w.YMax, err = attrFloat(attrs, "yMax"); err != nil {
		return w, err
	}
	return w, nil
}

//go:build ocr

package imaging

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer runs Tesseract over rendered page images.
// It is not safe for concurrent use.
type Recognizer struct {
	client *gosseract.Client
}

// NewRecognizer creates a recognizer for the given languages ("eng", "eng+deu").
func NewRecognizer(languages string) (*Recognizer, error) {
	client := gosseract.NewClient()
	if languages != "" {
		if err := client.SetLanguage(strings.Split(languages, "+")...); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set ocr language: %w", err)
		}
	}
	return &Recognizer{client: client}, nil
}

// Recognize returns the text Tesseract finds in an encoded image.
func (r *Recognizer) Recognize(data []byte) (string, error) {
	if err := r.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the Tesseract handle.
func (r *Recognizer) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

//go:build !ocr

package imaging

// Recognizer is a stub used when OCR support is not compiled in.
type Recognizer struct{}

// NewRecognizer always fails with ErrOCRNotEnabled.
func NewRecognizer(string) (*Recognizer, error) {
	return nil, ErrOCRNotEnabled
}

// Recognize always fails with ErrOCRNotEnabled.
func (*Recognizer) Recognize([]byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil Recognizer.
func (*Recognizer) Close() error {
	return nil
}

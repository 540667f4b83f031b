//go:build !cgo

package ocr

import "context"

// Tesseract is unavailable in builds without cgo; every call fails with
// ErrUnavailable and the pipeline falls back to blob detection.
type Tesseract struct {
	Language       string
	TessdataPrefix string
}

// NewTesseract returns a recognizer that always reports ErrUnavailable.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	return &Tesseract{Language: language, TessdataPrefix: tessdataPrefix}
}

// Recognize always fails with ErrUnavailable.
func (t *Tesseract) Recognize(context.Context, []byte) ([]Word, error) {
	return nil, ErrUnavailable
}

// Version always fails with ErrUnavailable.
func Version() (string, error) {
	return "", ErrUnavailable
}

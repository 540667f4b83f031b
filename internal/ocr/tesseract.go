//go:build cgo

package ocr

import (
	"context"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
)

// Tesseract recognises digits with the Tesseract engine through gosseract.
//
// A fresh client is created per call because gosseract clients are not safe
// for concurrent use; client start-up is small next to recognition time.
type Tesseract struct {
	// Language is the Tesseract language code. Defaults to "eng".
	Language string
	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string
}

// NewTesseract returns a Tesseract recognizer for the given language.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Language: language, TessdataPrefix: tessdataPrefix}
}

// Recognize runs sparse-text, digit-only recognition and returns word boxes.
//
// The context is checked before the engine starts; Tesseract itself cannot be
// interrupted, so the Extractor enforces the wall-clock timeout.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return nil, errors.Wrap(err, "failed to set tessdata path")
		}
	}
	if err := client.SetLanguage(t.Language); err != nil {
		return nil, errors.Wrap(err, "failed to set language")
	}
	// PSM 11: find as much text as possible in no particular order. Seat
	// numbers are scattered labels, not lines of prose.
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, errors.Wrap(err, "failed to set page segmentation mode")
	}
	if err := client.SetWhitelist(DigitChars); err != nil {
		return nil, errors.Wrap(err, "failed to set whitelist")
	}
	// Seat numbers are not dictionary words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	if err := client.SetImageFromBytes(png); err != nil {
		return nil, errors.Wrap(err, "failed to set image")
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get word boxes")
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Box:        box.Box,
		})
	}
	return words, nil
}

// Version returns the linked Tesseract version.
func Version() (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	v := client.Version()
	if v == "" {
		return "", ErrUnavailable
	}
	return v, nil
}

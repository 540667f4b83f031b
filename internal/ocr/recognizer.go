package ocr

import (
	"context"
	"image"

	"github.com/pkg/errors"
)

// DigitChars is the whitelist handed to the engine. Seat numbers are digits
// only; letting the engine emit letters just produces 0/O and 1/I confusion.
const DigitChars = "0123456789"

var (
	// ErrOCRFailure wraps every engine exception, panic or timeout. The
	// pipeline treats it as "no OCR candidates for this room".
	ErrOCRFailure = errors.New("ocr failure")

	// ErrUnavailable is returned when the binary was built without an OCR
	// engine.
	ErrUnavailable = errors.New("ocr engine unavailable")
)

// Word is one recognised word with its box in the coordinates of the image
// that was submitted.
type Word struct {
	Text string `json:"text"`
	// Confidence is the engine confidence scaled to 0.0-1.0.
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}

// Recognizer submits an encoded PNG to an OCR engine and returns word boxes.
//
// Implementations must be safe for concurrent use; the Extractor limits how
// many calls are in flight.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) ([]Word, error)
}

// RecognizerFunc adapts a plain function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, png []byte) ([]Word, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, png []byte) ([]Word, error) {
	return f(ctx, png)
}

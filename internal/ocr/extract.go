package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"
	"unicode"

	"github.com/anthonynsimon/bild/segment"
	disimaging "github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ironsheep/seatmap/internal/detection"
	"github.com/ironsheep/seatmap/internal/imaging"
)

// Params configures digit extraction.
type Params struct {
	// Upscale is the integer factor applied before recognition. Small seat
	// numbers are only a few pixels tall on a scanned plan.
	Upscale int `yaml:"upscale"`
	// Threshold binarises the upscaled grayscale: luminance >= Threshold
	// becomes white.
	Threshold uint8 `yaml:"threshold"`
	// Timeout bounds a single recognition call.
	Timeout time.Duration `yaml:"timeout"`
	// MaxConcurrent bounds recognition calls in flight across all goroutines
	// sharing the Extractor.
	MaxConcurrent int `yaml:"max_concurrent"`
	// MinConfidence drops words the engine is less sure of (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`
	// Language is the Tesseract language code.
	Language string `yaml:"language"`
	// TessdataPrefix overrides the tessdata directory.
	TessdataPrefix string `yaml:"tessdata_prefix,omitempty"`
}

// DefaultParams returns the extraction defaults.
func DefaultParams() Params {
	return Params{
		Upscale:       3,
		Threshold:     160,
		Timeout:       30 * time.Second,
		MaxConcurrent: 2,
		MinConfidence: 0,
		Language:      "eng",
	}
}

// Validate reports the first invalid field.
func (p Params) Validate() error {
	switch {
	case p.Upscale < 1:
		return fmt.Errorf("ocr upscale must be >= 1, got %d", p.Upscale)
	case p.Timeout <= 0:
		return fmt.Errorf("ocr timeout must be positive, got %s", p.Timeout)
	case p.MaxConcurrent < 1:
		return fmt.Errorf("ocr max_concurrent must be >= 1, got %d", p.MaxConcurrent)
	case p.MinConfidence < 0 || p.MinConfidence > 1:
		return fmt.Errorf("ocr min_confidence must be within [0,1], got %g", p.MinConfidence)
	}
	return nil
}

// Extractor turns digit words found by a Recognizer into seat candidates.
//
// One Extractor is shared by every worker of a batch; its semaphore is the
// process-wide bound on concurrent recognitions.
type Extractor struct {
	rec    Recognizer
	params Params
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// NewExtractor wraps rec. A nil logger is replaced with a no-op logger.
func NewExtractor(rec Recognizer, params Params, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if params.Upscale < 1 {
		params.Upscale = 1
	}
	if params.MaxConcurrent < 1 {
		params.MaxConcurrent = 1
	}
	return &Extractor{
		rec:    rec,
		params: params,
		sem:    semaphore.NewWeighted(int64(params.MaxConcurrent)),
		logger: logger,
	}
}

// Params returns the extraction parameters in use.
func (e *Extractor) Params() Params { return e.params }

// Extract recognises digit words in r and returns one candidate per word at
// the centre of its box.
//
// Parameters:
//   - ctx: Cancels the wait for a recognition slot and for the engine.
//   - r: The (usually outline-masked) raster to read. nil or empty yields nil.
//   - offset: Position of r inside the full floor plan. It is added to every
//     candidate so OCR can run on a cropped region of interest and still
//     report full-plan coordinates.
//
// Returns:
//   - []detection.Candidate: One SourceOCR candidate per word containing a
//     digit at or above MinConfidence, Weight 1, Confidence in [0,1].
//     Positions are clamped to [offset, offset+size-1] on each axis.
//   - error: nil on success, otherwise wraps ErrOCRFailure.
//
// # Pre-processing
//
// The raster is upsampled by Params.Upscale with Lanczos resampling, then
// binarised at Params.Threshold so faint digits survive as solid strokes.
// Box centres are divided by the same factor on the way back.
//
// # Errors
//
//   - Engine errors and panics inside the recognizer
//   - Params.Timeout elapsing, or ctx being cancelled
//   - Failure to encode the prepared image
func (e *Extractor) Extract(ctx context.Context, r *imaging.Raster, offset image.Point) ([]detection.Candidate, error) {
	if r == nil || r.Width == 0 || r.Height == 0 {
		return nil, nil
	}

	data, err := e.prepare(r)
	if err != nil {
		return nil, errors.Wrapf(ErrOCRFailure, "prepare image: %v", err)
	}

	words, err := e.recognize(ctx, data)
	if err != nil {
		return nil, err
	}

	k := float64(e.params.Upscale)
	maxX := float64(r.Width - 1)
	maxY := float64(r.Height - 1)

	var cands []detection.Candidate
	for _, w := range words {
		if !hasDigit(w.Text) || w.Confidence < e.params.MinConfidence {
			continue
		}
		cx := clamp(float64(w.Box.Min.X+w.Box.Max.X)/2/k, 0, maxX)
		cy := clamp(float64(w.Box.Min.Y+w.Box.Max.Y)/2/k, 0, maxY)
		box := image.Rect(
			int(float64(w.Box.Min.X)/k), int(float64(w.Box.Min.Y)/k),
			int(float64(w.Box.Max.X)/k), int(float64(w.Box.Max.Y)/k),
		).Add(offset)

		cands = append(cands, detection.Candidate{
			X:          cx + float64(offset.X),
			Y:          cy + float64(offset.Y),
			Weight:     1,
			Members:    1,
			Source:     detection.SourceOCR,
			Confidence: w.Confidence,
			Box:        box,
		})
	}

	e.logger.Debug("ocr extracted digits",
		zap.Int("words", len(words)),
		zap.Int("candidates", len(cands)),
		zap.Int("offset_x", offset.X),
		zap.Int("offset_y", offset.Y),
	)
	return cands, nil
}

// prepare upsamples, binarises and PNG-encodes the raster.
func (e *Extractor) prepare(r *imaging.Raster) ([]byte, error) {
	var src image.Image = r.Image()
	if k := e.params.Upscale; k > 1 {
		src = disimaging.Resize(src, r.Width*k, r.Height*k, disimaging.Lanczos)
	}
	bin := segment.Threshold(src, e.params.Threshold)

	var buf bytes.Buffer
	if err := png.Encode(&buf, bin); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

type recognizeResult struct {
	words []Word
	err   error
}

// recognize runs one engine call under the semaphore and the timeout.
//
// The semaphore slot is released by the worker goroutine when the engine
// actually returns, not when the caller gives up, so a timed-out call still
// counts against MaxConcurrent until it finishes.
func (e *Extractor) recognize(ctx context.Context, data []byte) ([]Word, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrapf(ErrOCRFailure, "wait for slot: %v", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.params.Timeout)
	defer cancel()

	done := make(chan recognizeResult, 1)
	go func() {
		defer e.sem.Release(1)
		defer func() {
			if p := recover(); p != nil {
				done <- recognizeResult{err: fmt.Errorf("engine panic: %v", p)}
			}
		}()
		words, err := e.rec.Recognize(callCtx, data)
		done <- recognizeResult{words: words, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, errors.Wrapf(ErrOCRFailure, "%v", res.err)
		}
		return res.words, nil
	case <-callCtx.Done():
		return nil, errors.Wrapf(ErrOCRFailure, "recognition timed out after %s: %v", e.params.Timeout, callCtx.Err())
	}
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

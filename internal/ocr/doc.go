// Package ocr finds printed seat numbers with Tesseract (via gosseract/v2)
// and turns them into seat candidates.
//
// # Prerequisites
//
// Tesseract must be installed on the system and the binary built with cgo:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Builds without cgo link a stub whose Recognize always returns
// ErrUnavailable. Seat extraction still works in that case; it simply has no
// OCR candidates to offer.
//
// # Recognition
//
// The Extractor prepares each image before handing it to the engine:
//
//  1. upsample by Params.Upscale (Lanczos)
//  2. binarise at Params.Threshold
//  3. encode as PNG
//
// The engine runs in sparse-text mode with a digits-only whitelist, and only
// words containing at least one digit become candidates. Box centres are
// divided back by the upscale factor so candidates are in source pixels.
//
// # Concurrency
//
// Recognition is the slowest stage of the pipeline by far. An Extractor holds
// a weighted semaphore of size Params.MaxConcurrent, and each call is bounded
// by Params.Timeout. A call that exceeds its timeout is abandoned and reported
// as ErrOCRFailure; its semaphore slot is freed only once the engine returns.
//
// # Error Handling
//
// Every engine error, panic and timeout wraps ErrOCRFailure so callers can
// test for it with errors.Is and degrade to an empty candidate list.
package ocr

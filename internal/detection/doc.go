// Package detection turns labelled ink blobs into seat candidates and merges
// candidates that describe the same physical seat.
//
// # Candidates
//
// A Candidate is a provisional seat position with a supporting weight and a
// tag naming the detector that produced it:
//
//   - blob: a connected component that passed the Geometry filter
//   - ocr: the centre of an OCR word box containing a digit
//   - fused: the merge of candidates from different detectors
//
// # Filtering
//
// Filter applies independent predicates to every component: box size, pixel
// count, aspect ratio, fill ratio, border margin and the caption bands at the
// top and bottom of the page. Thresholds are data (Geometry), so the historical
// detection variants are just different Geometry values.
//
// # Merging
//
// Merge is a single greedy pass in (Y, X) order that replaces each group of
// nearby candidates with its weighted centroid. Separate repeats Merge until
// no two candidates are closer than a minimum separation.
//
// # Coordinate System
//
// Candidate coordinates are floating-point pixel positions in the original
// raster, origin at top-left, Y increasing downward.
package detection

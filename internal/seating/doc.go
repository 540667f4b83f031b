// Package seating turns a fused candidate pool into a room's final seat list.
//
// Three steps run in order:
//
//  1. Selector picks one of the ocr, blob and union pools.
//  2. Refiner prunes the pool down to the room's capacity.
//  3. ReadingOrder assigns seat IDs top-to-bottom, left-to-right.
//
// # Refinement
//
// Each round scores every candidate against the median nearest-neighbour
// distance m of the current set. Candidates with a sensible number of
// neighbours at seat-like spacing, others in the same row or column, and
// several merged detections score high; isolated or cluttered candidates
// score low. The single lowest scorer is removed and everything is rescored.
// Neighbour queries use a gonum k-d tree rebuilt each round.
//
// Refinement never adds candidates. When the pool is already no larger than
// the capacity it is returned unchanged, and Result.Err reports
// ErrInsufficientCandidates if it falls short.
package seating

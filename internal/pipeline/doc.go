// Package pipeline runs seat extraction for registry rooms.
//
// A Pipeline processes one room's raster through every stage:
//
//  1. classify red outline pixels, close gaps by dilation, and flood fill
//     from the border to find everything outside the room
//  2. white out the outside, classify dark ink, dilate it so the digits of
//     a seat number join, and label the resulting blobs
//  3. filter blobs by geometry into blob candidates
//  4. recognise digits on the crop of the room outline
//  5. build the blob, ocr and union pools, pick one, and refine it to the
//     room's capacity
//  6. number the seats in reading order
//
// A Batch loads the registry, runs rooms in parallel on a bounded worker
// pool, and writes the results back either once at the end or after every
// room (checkpoint mode). A room that fails never stops the others; its
// Outcome records why.
package pipeline

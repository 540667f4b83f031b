// Package imaging provides the pixel-level stages of the seat extraction pipeline.
//
// It turns a floor-plan raster into binary masks and connected components:
//
//   - Raster: immutable RGBA bitmap, alpha flattened over white
//   - ImageCache: thread-safe cache of decoded rasters (PNG, JPEG, GIF, TIFF,
//     scanned PDF pages)
//   - ClassifierParams: per-pixel "boundary red" and "dark ink" predicates
//   - Dilate: disk-kernel dilation of a Mask
//   - ClassifyOutside: breadth-first flood fill from the image border
//   - Label: 4-connected component labelling
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Component bounds are inclusive on both ends
//   - image.Rectangle values follow the standard library (Max exclusive)
//
// # Ownership
//
// Masks are allocated and filled by exactly one stage and only read afterwards.
// Every buffer is local to one image, so any number of images can be processed
// concurrently without synchronisation. Only ImageCache is shared, and it locks
// internally.
//
// # Performance Considerations
//
// Every stage is linear in the pixel count except Dilate, which is
// O(pixels × radius²). Labelling and flood fill use explicit stacks and queues,
// never recursion, so a page-sized blob cannot exhaust the goroutine stack.
package imaging

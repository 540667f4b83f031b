package imaging

import (
	"image"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// ErrNoPageImage is returned when a PDF page carries no decodable raster.
var ErrNoPageImage = errors.New("pdf page has no embedded raster image")

// DecodePDFPage returns the largest raster image embedded in the given
// 1-based page of a PDF file.
//
// Scanned floor plans are stored as one full-page image per page, so the
// largest embedded image is the page itself. Vector-only pages have no such
// image and yield ErrNoPageImage; those must be rasterised by an external
// renderer before they reach the pipeline.
//
// Images in encodings the standard decoders cannot read (JBIG2, JPX) are
// skipped rather than failing the page.
func DecodePDFPage(path string, page int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open pdf")
	}
	defer f.Close()

	var best image.Image
	bestArea := 0

	conf := model.NewDefaultConfiguration()
	digest := func(img model.Image, _ bool, _ int) error {
		decoded, _, err := image.Decode(img)
		if err != nil {
			return nil
		}
		b := decoded.Bounds()
		if area := b.Dx() * b.Dy(); area > bestArea {
			best, bestArea = decoded, area
		}
		return nil
	}

	if err := api.ExtractImages(f, []string{strconv.Itoa(page)}, digest, conf); err != nil {
		return nil, errors.Wrapf(err, "pdfcpu extract page %d", page)
	}
	if best == nil {
		return nil, errors.Wrapf(ErrNoPageImage, "%s page %d", path, page)
	}
	return best, nil
}

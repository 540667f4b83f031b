package ocr

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/seatmap/internal/imaging"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// blankRaster returns a white raster of the given size.
func blankRaster(width, height int) *imaging.Raster {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return imaging.NewRaster(img)
}

// textRaster renders labels at the given baselines, nearest-neighbour scaled by
// scale so basicfont glyphs are large enough for Tesseract.
func textRaster(width, height, scale int, labels map[image.Point]string) *imaging.Raster {
	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	for p, s := range labels {
		drawText(small, p.X, p.Y, s, color.Black)
	}
	if scale <= 1 {
		return imaging.NewRaster(small)
	}

	big := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := small.RGBAAt(x, y)
			draw.Draw(big, image.Rect(x*scale, y*scale, (x+1)*scale, (y+1)*scale),
				image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	return imaging.NewRaster(big)
}

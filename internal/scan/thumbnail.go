package scan

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail scales src down to width pixels, keeping the aspect ratio.
// Sources already narrower than width are copied at their own size. It
// returns nil for a nil or empty source or a non-positive width.
func Thumbnail(src image.Image, width int) image.Image {
	if src == nil || width <= 0 {
		return nil
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	if b.Dx() < width {
		width = b.Dx()
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// DecodedImage holds the pixels of one fetched image together with the URL it
// came from.
//
// A DecodedImage is owned by the single worker that fetched it. Call Release
// once the pixels have been counted so the decode buffer can be collected
// while the worker moves on to its next item.
type DecodedImage struct {
	// URL is the source the image was fetched from.
	URL string

	pix *image.NRGBA
}

// NewDecodedImage wraps a decoded image.
//
// Parameters:
//   - url: The address the image was fetched from, kept for the output record.
//   - img: Any decoded image.
//
// Returns:
//   - *DecodedImage: Pixels in non-premultiplied RGBA with the origin at (0, 0).
//
// # Color Conversion
//
// An *image.NRGBA already anchored at the origin is used without copying.
// Everything else is converted with imaging.Clone, so colors match what a
// straight-alpha pixel reader reports and sub-images are re-based to (0, 0).
func NewDecodedImage(url string, img image.Image) *DecodedImage {
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = imaging.Clone(img)
	}
	return &DecodedImage{URL: url, pix: nrgba}
}

// Width returns the image width in pixels, or 0 after Release.
func (d *DecodedImage) Width() int {
	if d.pix == nil {
		return 0
	}
	return d.pix.Rect.Dx()
}

// Height returns the image height in pixels, or 0 after Release.
func (d *DecodedImage) Height() int {
	if d.pix == nil {
		return 0
	}
	return d.pix.Rect.Dy()
}

// At returns the 24-bit color at (x, y). Coordinates are 0-based with the
// origin at the top-left corner; out-of-range coordinates return black.
func (d *DecodedImage) At(x, y int) Color {
	if d.pix == nil || x < 0 || y < 0 || x >= d.Width() || y >= d.Height() {
		return 0
	}
	i := d.pix.PixOffset(x, y)
	return NewColor(d.pix.Pix[i], d.pix.Pix[i+1], d.pix.Pix[i+2])
}

// Release drops the pixel buffer. The image reports zero size afterwards.
func (d *DecodedImage) Release() {
	d.pix = nil
}

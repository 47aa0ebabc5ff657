package imaging

import (
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit packed RGB value: 8 bits red, 8 bits green, 8 bits blue.
// Alpha is never part of a Color.
type Color uint32

// NewColor packs 8-bit components into a Color.
func NewColor(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// RGB unpacks the 8-bit components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns the color as "#RRGGBB": uppercase and always six digits, so
// colors with a zero red component keep their leading zeros.
func (c Color) Hex() string {
	r, g, b := c.RGB()
	cf := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	return strings.ToUpper(cf.Hex())
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// Histogram maps each distinct color of one image to its pixel count.
//
// A Histogram belongs to the goroutine that built it and is never shared.
type Histogram map[Color]int

// Total returns the number of pixels counted.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// ColorCount pairs a color with the number of pixels that have it.
type ColorCount struct {
	Color Color
	Count int
}

// CountColors builds the color histogram of an image, visiting every pixel
// exactly once in row-major order.
//
// A released or zero-area image yields an empty histogram.
func CountColors(img *DecodedImage) Histogram {
	h := make(Histogram)
	if img == nil || img.pix == nil {
		return h
	}

	pix := img.pix
	w, ht := img.Width(), img.Height()
	for y := 0; y < ht; y++ {
		// Origin is (0,0), so row y starts at y*Stride.
		row := pix.Pix[y*pix.Stride : y*pix.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			h[NewColor(row[x], row[x+1], row[x+2])]++
		}
	}
	return h
}

// TopColors returns the k most frequent colors of h, most frequent first.
//
// Parameters:
//   - h: The histogram to rank.
//   - k: How many colors to keep. Zero or negative returns nil.
//
// Returns:
//   - []ColorCount: At most k entries. If h holds fewer than k colors, all of
//     them are returned.
//
// # Ordering
//
// Entries are sorted by count, highest first. Colors with equal counts are
// ordered by ascending numeric value, so the result does not depend on map
// iteration order. Selection is a single pass over h keeping a sorted window
// of k entries; the histogram is never sorted as a whole.
//
// # Example
//
//	for _, cc := range imaging.TopColors(imaging.CountColors(img), 5) {
//	    fmt.Println(cc.Color.Hex(), cc.Count)
//	}
func TopColors(h Histogram, k int) []ColorCount {
	if k <= 0 || len(h) == 0 {
		return nil
	}

	top := make([]ColorCount, 0, k+1)
	for c, n := range h {
		cc := ColorCount{Color: c, Count: n}
		if len(top) == k && !ranksBefore(cc, top[k-1]) {
			continue
		}
		i := sort.Search(len(top), func(i int) bool {
			return ranksBefore(cc, top[i])
		})
		top = append(top, ColorCount{})
		copy(top[i+1:], top[i:])
		top[i] = cc
		if len(top) > k {
			top = top[:k]
		}
	}
	return top
}

// ranksBefore reports whether a sorts ahead of b: higher count first, then
// lower color value.
func ranksBefore(a, b ColorCount) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Color < b.Color
}

// Top3 returns up to three of the image's most frequent colors, most frequent
// first. Images with fewer than three distinct colors return fewer entries
// and a zero-area image returns none.
func Top3(img *DecodedImage) []Color {
	top := TopColors(CountColors(img), 3)
	colors := make([]Color, len(top))
	for i, cc := range top {
		colors[i] = cc.Color
	}
	return colors
}

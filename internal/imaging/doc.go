// Package imaging fetches images over HTTP and finds their most frequent colors.
//
// The package has two halves. Fetcher performs one blocking GET per URL and
// decodes the body into a DecodedImage. CountColors and TopColors then turn a
// DecodedImage into a color histogram and pick the most frequent entries.
// Both halves are per-item transforms with no shared mutable state.
//
// # Color Representation
//
// Colors are 24-bit packed RGB values (see Color). Pixels are read with
// straight (non-premultiplied) alpha and the alpha channel is dropped, so a
// half-transparent red pixel counts as red. Hex formatting is always
// "#RRGGBB", uppercase and zero-padded to six digits.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Thread Safety
//
// A Fetcher is safe for concurrent use and is meant to be shared by every
// worker of a run. A DecodedImage and the Histogram built from it belong to
// one goroutine and must not be shared.
//
// # Error Handling
//
// Fetch errors wrap one of two sentinels:
//   - ErrFetch: invalid URL, failed or interrupted request, non-2xx status
//   - ErrDecode: the body arrived in full but is not a usable image
//
// # Memory Considerations
//
// The encoded body is held in memory until it has been decoded. A decoded
// image costs four bytes per pixel plus its histogram. Call
// DecodedImage.Release as soon as the colors have been counted.
package imaging

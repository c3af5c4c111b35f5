// Package display models the 128x48 monochrome panel and renders it as
// braille cells for the terminal.
package display

import "rf-scope.dev/internal/config"

// Frame is a 1-bit framebuffer the size of the panel. All drawing clips at
// the edges, so callers never bounds-check.
type Frame struct {
	bits [config.DisplayHeight][config.DisplayWidth / 8]byte
}

// NewFrame returns a cleared framebuffer.
func NewFrame() *Frame {
	return &Frame{}
}

// Clear turns every pixel off.
func (f *Frame) Clear() {
	*f = Frame{}
}

// PutPixel turns on the pixel at (x, y). Out-of-range coordinates are
// ignored.
func (f *Frame) PutPixel(x, y int) {
	if x < 0 || x >= config.DisplayWidth || y < 0 || y >= config.DisplayHeight {
		return
	}
	f.bits[y][x>>3] |= 1 << (7 - uint(x&7))
}

// On reports whether the pixel at (x, y) is lit.
func (f *Frame) On(x, y int) bool {
	if x < 0 || x >= config.DisplayWidth || y < 0 || y >= config.DisplayHeight {
		return false
	}
	return f.bits[y][x>>3]&(1<<(7-uint(x&7))) != 0
}

// VLine draws a vertical line at column x from y0 to y1 inclusive, in either
// order.
func (f *Frame) VLine(x, y0, y1 int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		f.PutPixel(x, y)
	}
}

// HLine draws a horizontal line at row y from x0 to x1 inclusive, in either
// order.
func (f *Frame) HLine(y, x0, x1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		f.PutPixel(x, y)
	}
}

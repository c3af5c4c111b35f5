package display

import (
	"strings"

	"rf-scope.dev/internal/config"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Braille renders the framebuffer as Unicode braille cells. Each cell is a
// 2x4 dot grid, so the 128x48 panel fits in a 64x12 character block.
func Braille(f *Frame) string {
	cols := config.DisplayWidth / 2
	rows := config.DisplayHeight / 4

	var out strings.Builder
	out.Grow(rows * (cols*3 + 1))
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var pattern uint
			for dx := 0; dx < 2; dx++ {
				for dy := 0; dy < 4; dy++ {
					if f.On(col*2+dx, row*4+dy) {
						pattern |= 1 << brailleBits[dx][dy]
					}
				}
			}
			out.WriteRune(rune(0x2800 + pattern))
		}
		if row < rows-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

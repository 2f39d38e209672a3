package luma

import "image"

// threshold quantizes a grayscale image to 0x00/0xFF in place, cutting at
// the given intensity.
func threshold(g *image.Gray, cut byte) {
	for i, v := range g.Pix {
		if v >= cut {
			g.Pix[i] = 0xFF
		} else {
			g.Pix[i] = 0x00
		}
	}
}

// floydSteinberg quantizes a grayscale image to 0x00/0xFF in place,
// diffusing the quantization error to unprocessed neighbours with the
// classic 7/16, 3/16, 5/16, 1/16 kernel. The scan order is fixed
// left-to-right, top-to-bottom, so output is deterministic for a given
// input.
func floydSteinberg(g *image.Gray) {
	w := g.Rect.Dx()
	h := g.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}

	// Running error for the current and next row, with one slot of slack on
	// each side so the kernel needs no boundary checks.
	cur := make([]int, w+2)
	next := make([]int, w+2)

	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x := 0; x < w; x++ {
			v := int(row[x]) + cur[x+1]
			out := 0
			if v >= 128 {
				out = 255
				row[x] = 0xFF
			} else {
				row[x] = 0x00
			}
			e := v - out
			cur[x+2] += e * 7 / 16
			next[x] += e * 3 / 16
			next[x+1] += e * 5 / 16
			next[x+2] += e * 1 / 16
		}
		cur, next = next, cur
		for i := range next {
			next[i] = 0
		}
	}
}

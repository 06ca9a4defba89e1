// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import "qmodel/palette"

// Skins often have a pure cyan or similar junk color around the actual
// artwork. The engine has always flood filled that border from (0,0)
// with the nearest artwork color before mipmapping, otherwise the junk
// bleeds into the smaller mip levels.

const (
	fifoSize = 0x1000
	fifoMask = fifoSize - 1
)

type span struct {
	x, y int
}

// opaque black, the color the border is considered part of
func filledColor() byte {
	for i := 0; i < 256; i++ {
		p := palette.Table[i*4 : i*4+4]
		if p[0] == 0 && p[1] == 0 && p[2] == 0 && p[3] == 255 {
			return byte(i)
		}
	}
	return 0
}

func floodFillSkin(skin []byte, width, height int) {
	filled := filledColor()
	fill := skin[0]
	if fill == filled || fill == 255 {
		// no border to fill, or the border is the transparent color
		return
	}

	fifo := make([]span, fifoSize)
	inpt, outpt := 0, 0
	fifo[inpt] = span{0, 0}
	inpt = (inpt + 1) & fifoMask

	for outpt != inpt {
		x, y := fifo[outpt].x, fifo[outpt].y
		outpt = (outpt + 1) & fifoMask
		fdc := filled
		pos := x + width*y

		step := func(off, dx, dy int) {
			switch skin[pos+off] {
			case fill:
				skin[pos+off] = 255 // visited marker
				fifo[inpt] = span{x + dx, y + dy}
				inpt = (inpt + 1) & fifoMask
			case 255:
			default:
				fdc = skin[pos+off]
			}
		}
		if x > 0 {
			step(-1, -1, 0)
		}
		if x < width-1 {
			step(1, 1, 0)
		}
		if y > 0 {
			step(-width, 0, -1)
		}
		if y < height-1 {
			step(width, 0, 1)
		}
		skin[pos] = fdc
	}
}

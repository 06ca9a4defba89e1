// SPDX-License-Identifier: GPL-2.0-or-later

package palette

import (
	"qmodel/filesystem"

	"github.com/pkg/errors"
)

// Table is the game palette as rgba, 4 bytes per color. Index 255 is the
// transparent color. Until Init ran it is all zeros, which the loaders
// tolerate.
var Table [256 * 4]uint8

func Init() error {
	b, err := filesystem.ReadFile("gfx/palette.lmp")
	if err != nil {
		return errors.New("couldn't load gfx/palette.lmp")
	}
	// b is rgb 8bit, we want rgba
	if 4*len(b) != 3*len(Table) {
		return errors.Errorf("palette has wrong size: %v", len(b))
	}
	bi := 0
	pi := 0
	for i := 0; i < 256; i++ {
		Table[pi] = b[bi]
		Table[pi+1] = b[bi+1]
		Table[pi+2] = b[bi+2]
		Table[pi+3] = 255
		pi += 4
		bi += 3
	}
	Table[256*4-1] = 0
	return nil
}

// SPDX-License-Identifier: GPL-2.0-or-later

package model

var (
	loaders     map[uint32]LoadFunc
	brushLoader BrushLoadFunc
)

func init() {
	loaders = make(map[uint32]LoadFunc)
}

// A LoadFunc turns one file into models. The slice has more than one
// entry when a single file describes several independently referenced
// models.
type LoadFunc func(name string, data []byte) ([]Model, error)

// A BrushLoadFunc additionally knows whether the model being loaded is
// the active world, which decides surface warp flag suppression.
type BrushLoadFunc func(name string, data []byte, world bool) ([]Model, error)

// Register installs f as the loader for files starting with the given
// 4-byte magic.
func Register(magic uint32, f LoadFunc) {
	loaders[magic] = f
}

// RegisterBrush installs the loader used for files with no known magic.
// Brush model files start with a plain version number, making them the
// default case.
func RegisterBrush(f BrushLoadFunc) {
	brushLoader = f
}

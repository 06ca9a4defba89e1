// SPDX-License-Identifier: GPL-2.0-or-later
package texture

import (
	"github.com/google/uuid"
)

type TexPref uint32

const (
	TexPrefMipMap TexPref = 1 << iota
	TexPrefLinear
	TexPrefNearest
	TexPrefAlpha
	TexPrefPad
	TexPrefPersist
	TexPrefOverwrite
	TexPrefNoPicMip
	TexPrefFullBright
	TexPrefNoBright
	TexPrefWarpImage
	TexPrefNone TexPref = 0
)

type ColorType int

const (
	ColorTypeIndexed ColorType = iota
	ColorTypeRGBA
	ColorTypeLightmap
)

// Texture is a texture as handed to the renderer. The renderer side is
// out of this module, NewTexture only registers the pixel data and hands
// out an opaque id; an uploader installed with SetUploader gets to see
// every new texture.
type Texture struct {
	id     uuid.UUID
	Width  int32 // mipmap can make it differ from source width
	Height int32
	flags  TexPref
	name   string
	Typ    ColorType
	Data   []byte
}

var uploader func(*Texture)

// SetUploader installs the callback that registers new textures with the
// renderer. A nil uploader is fine, textures then only exist in memory.
func SetUploader(f func(*Texture)) {
	uploader = f
}

func NewTexture(w, h int32, flags TexPref, name string, typ ColorType, data []byte) *Texture {
	t := &Texture{
		id:     uuid.New(),
		Width:  w,
		Height: h,
		flags:  flags,
		name:   name,
		Typ:    typ,
		Data:   data,
	}
	if uploader != nil {
		uploader(t)
	}
	return t
}

func (t *Texture) ID() uuid.UUID {
	return t.id
}

func (t *Texture) Name() string {
	return t.name
}

func (t *Texture) Texels() int {
	if t.Flags(TexPrefMipMap) {
		return int(t.Width * t.Height * 4 / 3)
	}
	return int(t.Width * t.Height)
}

func (t *Texture) Flags(f TexPref) bool {
	return t.flags&f != 0
}

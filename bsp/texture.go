// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"qmodel/palette"
	"qmodel/texture"
)

func (t *Texture) loadSkyTexture(data []byte, textureName, modelName string) {
	// d is a 256*128 texture with the left side being a masked overlay
	front := [128 * 128]byte{}
	back := [128 * 128]byte{}
	var r, g, b, count int
	for i := 0; i < 128; i++ {
		for j := 0; j < 128; j++ {
			sidx := i*256 + j
			didx := i*128 + j
			p := data[sidx]
			if p == 0 {
				front[didx] = 255
			} else {
				front[didx] = p
				pixel := palette.Table[int(p)*4 : int(p)*4+4]
				r += int(pixel[0])
				g += int(pixel[1])
				b += int(pixel[2])
				count++ // only count opaque colors
			}
			back[didx] = data[sidx+128]
		}
	}

	fn := fmt.Sprintf("%s:%s_front", modelName, textureName)
	bn := fmt.Sprintf("%s:%s_back", modelName, textureName)
	t.SolidSky = texture.NewTexture(128, 128, texture.TexPrefNone, fn, texture.ColorTypeIndexed, front[:])
	t.AlphaSky = texture.NewTexture(128, 128, texture.TexPrefAlpha, bn, texture.ColorTypeIndexed, back[:])

	t.FlatSky = Color{
		R: float32(r) / (float32(count) * 255),
		G: float32(g) / (float32(count) * 255),
		B: float32(b) / (float32(count) * 255),
	}
}

func checkFullbrights(data []byte) bool {
	for _, d := range data {
		if d > 223 {
			return true
		}
	}
	return false
}

func (t *Texture) loadBspTexture(data []byte, textureName, modelName string) {
	var extraFlag texture.TexPref
	if strings.HasPrefix(textureName, "{") {
		extraFlag = texture.TexPrefAlpha
	}

	if checkFullbrights(data) {
		tName := fmt.Sprintf("%s:%s", modelName, textureName)
		t.Texture = texture.NewTexture(
			int32(t.Width),
			int32(t.Height),
			texture.TexPrefMipMap|texture.TexPrefNoBright|extraFlag,
			tName,
			texture.ColorTypeIndexed,
			data)
		fbName := fmt.Sprintf("%s:%s_glow", modelName, textureName)
		t.Fullbright = texture.NewTexture(
			int32(t.Width),
			int32(t.Height),
			texture.TexPrefMipMap|texture.TexPrefFullBright|extraFlag,
			fbName,
			texture.ColorTypeIndexed,
			data)
	} else {
		t.Texture = texture.NewTexture(
			int32(t.Width),
			int32(t.Height),
			texture.TexPrefMipMap|extraFlag,
			textureName,
			texture.ColorTypeIndexed,
			data)
	}
}

// stand-in for faces whose texinfo points at nothing usable
var noTextureMip = func() *Texture {
	t := &Texture{name: "notexture", Width: 16, Height: 16}
	t.Data = make([]byte, 16*16/64*85)
	d := t.Data[:16*16]
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if (x < 8) != (y < 8) {
				d[y*16+x] = 0
			} else {
				d[y*16+x] = 0xff
			}
		}
	}
	return t
}()

// a texture advances to its next animation frame every animCycle tenths
const animCycle = 2

// animation frame index of a "+Nname" texture, alt reports the A-J set
func animFrame(name string) (frame int, alt bool, err error) {
	num := name[1]
	if num >= 'a' && num <= 'z' {
		num -= 'a' - 'A'
	}
	switch {
	case num >= '0' && num <= '9':
		return int(num - '0'), false, nil
	case num >= 'A' && num <= 'J':
		return int(num - 'A'), true, nil
	}
	return 0, false, errors.Errorf("Bad animating texture %s", name)
}

// sequenceAnimations links the "+0foo", "+1foo", ... textures of each
// animation into rings. Primary frames are digits, the alternate set
// triggered by entity state uses the letters a-j. A missing frame in
// either sequence is an error.
func (m *Model) sequenceAnimations() error {
	for i, tx := range m.Textures {
		if tx == nil || !strings.HasPrefix(tx.name, "+") {
			continue
		}
		if tx.AnimNext != nil {
			continue // already sequenced as part of an earlier ring
		}
		if len(tx.name) < 2 {
			return errors.Errorf("Bad animating texture %s", tx.name)
		}
		var anims, altanims [10]*Texture
		max, altmax := 0, 0
		add := func(t *Texture) error {
			frame, alt, err := animFrame(t.name)
			if err != nil {
				return err
			}
			if alt {
				altanims[frame] = t
				if frame+1 > altmax {
					altmax = frame + 1
				}
			} else {
				anims[frame] = t
				if frame+1 > max {
					max = frame + 1
				}
			}
			return nil
		}
		if err := add(tx); err != nil {
			return err
		}
		for _, tx2 := range m.Textures[i+1:] {
			if tx2 == nil || !strings.HasPrefix(tx2.name, "+") || len(tx2.name) < 2 {
				continue
			}
			if tx2.name[2:] != tx.name[2:] {
				continue // different sequence
			}
			if err := add(tx2); err != nil {
				return err
			}
		}
		for j := 0; j < max; j++ {
			t2 := anims[j]
			if t2 == nil {
				return errors.Errorf("Missing frame %d of %s", j, tx.name)
			}
			t2.AnimTotal = max * animCycle
			t2.AnimMin = j * animCycle
			t2.AnimMax = (j + 1) * animCycle
			t2.AnimNext = anims[(j+1)%max]
			if altmax != 0 {
				t2.AlternateAnims = altanims[0]
			}
		}
		for j := 0; j < altmax; j++ {
			t2 := altanims[j]
			if t2 == nil {
				return errors.Errorf("Missing frame %d of %s", j, tx.name)
			}
			t2.AnimTotal = altmax * animCycle
			t2.AnimMin = j * animCycle
			t2.AnimMax = (j + 1) * animCycle
			t2.AnimNext = altanims[(j+1)%altmax]
			if max != 0 {
				t2.AlternateAnims = anims[0]
			}
		}
	}
	return nil
}

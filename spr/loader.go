// SPDX-License-Identifier: GPL-2.0-or-later

package spr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"qmodel/math/vec"
	"qmodel/model"
	"qmodel/texture"
)

func init() {
	model.Register(Magic, Load)
}

func Load(name string, data []byte) ([]model.Model, error) {
	mod, err := load(name, data)
	if err != nil {
		return nil, err
	}
	return []model.Model{mod}, nil
}

type loadContext struct {
	name string
	r    *bytes.Reader
}

func (lc *loadContext) read(v any) error {
	return binary.Read(lc.r, binary.LittleEndian, v)
}

func load(name string, data []byte) (*Model, error) {
	lc := &loadContext{name: name, r: bytes.NewReader(data)}
	var h header
	if err := lc.read(&h); err != nil {
		return nil, errors.Wrap(err, "header")
	}
	if h.Version != spriteVersion {
		return nil, errors.Errorf("%s has wrong version number (%d should be %d)",
			name, h.Version, spriteVersion)
	}
	if h.FrameCount < 1 {
		return nil, errors.Errorf("Mod_LoadSpriteModel: Invalid # of frames: %d", h.FrameCount)
	}
	if h.Type < SPR_VP_PARALLEL_UPRIGHT || h.Type > SPR_VP_PARALLEL_ORIENTED {
		return nil, errors.Errorf("%s has bad sprite type %d", name, h.Type)
	}

	mod := &Model{
		name: name,
		mins: vec.Vec3{
			float32(-h.MaxWidth / 2),
			float32(-h.MaxWidth / 2),
			float32(-h.MaxHeight / 2),
		},
		maxs: vec.Vec3{
			float32(h.MaxWidth / 2),
			float32(h.MaxWidth / 2),
			float32(h.MaxHeight / 2),
		},
		SpriteType: int(h.Type),
		MaxWidth:   int(h.MaxWidth),
		MaxHeight:  int(h.MaxHeight),
		BeamLength: h.BeamLength,
		FrameCount: int(h.FrameCount),
		SyncType:   int(h.SyncType),
		data:       &SpriteData{},
	}

	for i := 0; i < int(h.FrameCount); i++ {
		var kind int32
		if err := lc.read(&kind); err != nil {
			return nil, errors.Wrapf(err, "frame %d type", i)
		}
		if kind == SPR_SINGLE {
			f, err := lc.readFrame(fmt.Sprintf("%s:frame%d", name, i))
			if err != nil {
				return nil, errors.Wrapf(err, "frame %d", i)
			}
			mod.data.Frames = append(mod.data.Frames, FrameEntry{Frame: f})
		} else {
			var count int32
			if err := lc.read(&count); err != nil {
				return nil, errors.Wrapf(err, "frame group %d", i)
			}
			if count < 1 {
				return nil, errors.Errorf("frame group %d has bad size %d", i, count)
			}
			g := &FrameGroup{Intervals: make([]float32, count)}
			if err := lc.read(g.Intervals); err != nil {
				return nil, errors.Wrapf(err, "frame group %d intervals", i)
			}
			for _, iv := range g.Intervals {
				if iv <= 0 {
					return nil, errors.Errorf("Mod_LoadSpriteGroup: interval <= 0")
				}
			}
			for j := 0; j < int(count); j++ {
				f, err := lc.readFrame(fmt.Sprintf("%s:frame%d_%d", name, i, j))
				if err != nil {
					return nil, errors.Wrapf(err, "frame group %d frame %d", i, j)
				}
				g.Frames = append(g.Frames, f)
			}
			mod.data.Frames = append(mod.data.Frames, FrameEntry{Group: g, Frame: g.Frames[0]})
		}
	}
	return mod, nil
}

func (lc *loadContext) readFrame(tname string) (*Frame, error) {
	var fh frame
	if err := lc.read(&fh); err != nil {
		return nil, err
	}
	if fh.Width <= 0 || fh.Height <= 0 {
		return nil, errors.Errorf("bad frame size %dx%d", fh.Width, fh.Height)
	}
	pix := make([]byte, int(fh.Width)*int(fh.Height))
	if _, err := io.ReadFull(lc.r, pix); err != nil {
		return nil, errors.Wrap(err, "frame pixels")
	}
	f := &Frame{
		Up:     float32(fh.Origin[1]),
		Down:   float32(fh.Origin[1] - fh.Height),
		Left:   float32(fh.Origin[0]),
		Right:  float32(fh.Origin[0] + fh.Width),
		Width:  int(fh.Width),
		Height: int(fh.Height),
		Data:   pix,
	}
	f.Texture = texture.NewTexture(fh.Width, fh.Height,
		texture.TexPrefPad|texture.TexPrefAlpha|texture.TexPrefNoPicMip,
		tname, texture.ColorTypeIndexed, pix)
	return f, nil
}

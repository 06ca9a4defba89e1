// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"qmodel/crc"
	"qmodel/model"
	"qmodel/texture"
)

func init() {
	model.Register(Magic, Load)
}

type loadContext struct {
	name    string
	r       *bytes.Reader
	hdr     *AliasHeader
	posenum int
}

func (lc *loadContext) read(v any) error {
	return binary.Read(lc.r, binary.LittleEndian, v)
}

func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func Load(name string, data []byte) ([]model.Model, error) {
	mod, err := load(name, data)
	if err != nil {
		return nil, err
	}
	return []model.Model{mod}, nil
}

func load(name string, data []byte) (*Model, error) {
	r := bytes.NewReader(data)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "header")
	}
	if h.Version != aliasVersion {
		return nil, errors.Errorf("%s has wrong version number (%d should be %d)",
			name, h.Version, aliasVersion)
	}
	switch {
	case h.SkinWidth <= 0 || h.SkinHeight <= 0:
		return nil, errors.Errorf("model %s has a bad skin size", name)
	case h.SkinHeight > maxSkinHeight:
		return nil, errors.Errorf("model %s has a skin taller than %d", name, maxSkinHeight)
	case h.VerticeCount <= 0:
		return nil, errors.Errorf("model %s has no vertices", name)
	case h.VerticeCount > maxAliasVerts:
		return nil, errors.Errorf("model %s has too many vertices", name)
	case h.TriangleCount <= 0:
		return nil, errors.Errorf("model %s has no triangles", name)
	case h.TriangleCount > maxAliasTris:
		return nil, errors.Errorf("model %s has too many triangles", name)
	case h.FrameCount < 1:
		return nil, errors.Errorf("model %s has no frames", name)
	case h.SkinCount < 1 || h.SkinCount > maxSkins:
		return nil, errors.Errorf("model %s has invalid # of skins: %d", name, h.SkinCount)
	}

	hdr := &AliasHeader{
		Scale:         h.Scale,
		ScaleOrigin:   h.ScaleOrigin,
		SkinWidth:     int(h.SkinWidth),
		SkinHeight:    int(h.SkinHeight),
		VerticeCount:  int(h.VerticeCount),
		TriangleCount: int(h.TriangleCount),
	}
	lc := &loadContext{name: name, r: r, hdr: hdr}
	if err := lc.loadSkins(int(h.SkinCount)); err != nil {
		return nil, err
	}
	if err := lc.loadSTVerts(); err != nil {
		return nil, err
	}
	if err := lc.loadTriangles(); err != nil {
		return nil, err
	}
	if err := lc.loadFrames(int(h.FrameCount)); err != nil {
		return nil, err
	}
	hdr.PoseCount = lc.posenum

	mod := &Model{
		name:       name,
		flags:      int(h.Flags),
		FrameCount: int(h.FrameCount),
		SyncType:   int(h.SyncType),
		hdr:        hdr,
		size:       int64(len(data)),
	}
	calcAliasBounds(mod, hdr)
	if name == "progs/player.mdl" || name == "progs/eyes.mdl" {
		mod.CRC = crc.Update(data)
	}
	return mod, nil
}

func checkFullbrights(data []byte) bool {
	for _, d := range data {
		if d > 223 {
			return true
		}
	}
	return false
}

func (lc *loadContext) skinTextures(skin []byte, tname string) (*texture.Texture, *texture.Texture) {
	w := int32(lc.hdr.SkinWidth)
	h := int32(lc.hdr.SkinHeight)
	if checkFullbrights(skin) {
		t := texture.NewTexture(w, h,
			texture.TexPrefMipMap|texture.TexPrefNoBright|texture.TexPrefPad,
			tname, texture.ColorTypeIndexed, skin)
		fb := texture.NewTexture(w, h,
			texture.TexPrefMipMap|texture.TexPrefFullBright|texture.TexPrefPad,
			tname+"_glow", texture.ColorTypeIndexed, skin)
		return t, fb
	}
	t := texture.NewTexture(w, h,
		texture.TexPrefMipMap|texture.TexPrefPad,
		tname, texture.ColorTypeIndexed, skin)
	return t, nil
}

func (lc *loadContext) readSkin() ([]byte, error) {
	h := lc.hdr
	skin := make([]byte, h.SkinWidth*h.SkinHeight)
	if _, err := io.ReadFull(lc.r, skin); err != nil {
		return nil, errors.Wrap(err, "skin pixels")
	}
	floodFillSkin(skin, h.SkinWidth, h.SkinHeight)
	return skin, nil
}

func (lc *loadContext) loadSkins(count int) error {
	h := lc.hdr
	h.Skins = make([]Skin, count)
	for i := 0; i < count; i++ {
		var kind int32
		if err := lc.read(&kind); err != nil {
			return errors.Wrapf(err, "skin %d type", i)
		}
		s := &h.Skins[i]
		if kind == ALIAS_SKIN_SINGLE {
			skin, err := lc.readSkin()
			if err != nil {
				return errors.Wrapf(err, "skin %d", i)
			}
			if h.Texels == nil {
				h.Texels = skin
			}
			t, fb := lc.skinTextures(skin, fmt.Sprintf("%s:%d", lc.name, i))
			for j := 0; j < 4; j++ {
				s.Textures[j] = t
				s.Fullbright[j] = fb
			}
			continue
		}
		var groupskins int32
		if err := lc.read(&groupskins); err != nil {
			return errors.Wrapf(err, "skin %d group", i)
		}
		if groupskins < 1 {
			return errors.Errorf("skin %d has bad group size %d", i, groupskins)
		}
		intervals := make([]float32, groupskins)
		if err := lc.read(intervals); err != nil {
			return errors.Wrapf(err, "skin %d intervals", i)
		}
		for _, iv := range intervals {
			if iv <= 0 {
				return errors.Errorf("skin %d has an interval <= 0", i)
			}
		}
		j := 0
		for ; j < int(groupskins); j++ {
			skin, err := lc.readSkin()
			if err != nil {
				return errors.Wrapf(err, "skin %d_%d", i, j)
			}
			if h.Texels == nil {
				h.Texels = skin
			}
			t, fb := lc.skinTextures(skin, fmt.Sprintf("%s:%d_%d", lc.name, i, j))
			s.Textures[j&3] = t
			s.Fullbright[j&3] = fb
		}
		// short groups repeat to fill the four slots
		for k := j; j < 4; j++ {
			s.Textures[j&3] = s.Textures[j-k]
			s.Fullbright[j&3] = s.Fullbright[j-k]
		}
	}
	return nil
}

func (lc *loadContext) loadSTVerts() error {
	h := lc.hdr
	h.STVerts = make([]STVert, h.VerticeCount)
	if err := lc.read(h.STVerts); err != nil {
		return errors.Wrap(err, "texture coordinates")
	}
	return nil
}

func (lc *loadContext) loadTriangles() error {
	h := lc.hdr
	h.Triangles = make([]Triangle, h.TriangleCount)
	if err := lc.read(h.Triangles); err != nil {
		return errors.Wrap(err, "triangles")
	}
	for i, tri := range h.Triangles {
		for _, v := range tri.Vertices {
			if v < 0 || int(v) >= h.VerticeCount {
				return errors.Errorf("triangle %d has bad vertex index %d", i, v)
			}
		}
	}
	return nil
}

func (lc *loadContext) readPose() ([]FrameVertex, error) {
	out := make([]FrameVertex, lc.hdr.VerticeCount)
	if err := lc.read(out); err != nil {
		return nil, errors.Wrap(err, "frame vertices")
	}
	return out, nil
}

// loadFrames reads the frame list. Groups and single frames share one
// running pose counter, so a frame's poses are always the contiguous
// range [FirstPose, FirstPose+PoseCount).
func (lc *loadContext) loadFrames(count int) error {
	h := lc.hdr
	h.Frames = make([]Frame, count)
	for i := range h.Frames {
		var kind int32
		if err := lc.read(&kind); err != nil {
			return errors.Wrapf(err, "frame %d type", i)
		}
		f := &h.Frames[i]
		f.FirstPose = lc.posenum
		if kind == ALIAS_SINGLE {
			var fh frameSingle
			if err := lc.read(&fh); err != nil {
				return errors.Wrapf(err, "frame %d", i)
			}
			f.Name = cstr(fh.Name[:])
			f.BBoxMin = fh.BBoxMin.PackedPosition
			f.BBoxMax = fh.BBoxMax.PackedPosition
			f.PoseCount = 1
			verts, err := lc.readPose()
			if err != nil {
				return errors.Wrapf(err, "frame %d", i)
			}
			h.PoseVerts = append(h.PoseVerts, verts)
			lc.posenum++
		} else {
			var gh frameGroup
			if err := lc.read(&gh); err != nil {
				return errors.Wrapf(err, "frame group %d", i)
			}
			if gh.FrameCount < 1 {
				return errors.Errorf("frame group %d has bad size %d", i, gh.FrameCount)
			}
			f.BBoxMin = gh.BBoxMin.PackedPosition
			f.BBoxMax = gh.BBoxMax.PackedPosition
			f.PoseCount = int(gh.FrameCount)
			intervals := make([]float32, gh.FrameCount)
			if err := lc.read(intervals); err != nil {
				return errors.Wrapf(err, "frame group %d intervals", i)
			}
			for _, iv := range intervals {
				if iv <= 0 {
					return errors.Errorf("frame group %d has an interval <= 0", i)
				}
			}
			f.Intervals = intervals
			for j := 0; j < int(gh.FrameCount); j++ {
				var fh frameSingle
				if err := lc.read(&fh); err != nil {
					return errors.Wrapf(err, "frame group %d frame %d", i, j)
				}
				if j == 0 {
					f.Name = cstr(fh.Name[:])
				}
				verts, err := lc.readPose()
				if err != nil {
					return errors.Wrapf(err, "frame group %d frame %d", i, j)
				}
				h.PoseVerts = append(h.PoseVerts, verts)
				lc.posenum++
			}
		}
		if lc.posenum > maxAliasFrames {
			return errors.Errorf("model %s has too many poses", lc.name)
		}
	}
	return nil
}

func calcAliasBounds(mod *Model, h *AliasHeader) {
	mod.mins = [3]float32{999999, 999999, 999999}
	mod.maxs = [3]float32{-999999, -999999, -999999}
	for _, pose := range h.PoseVerts {
		for _, pv := range pose {
			for k := 0; k < 3; k++ {
				v := float32(pv.PackedPosition[k])*h.Scale[k] + h.ScaleOrigin[k]
				mod.mins[k] = math32.Min(mod.mins[k], v)
				mod.maxs[k] = math32.Max(mod.maxs[k], v)
			}
		}
	}
	var corner [3]float32
	for k := 0; k < 3; k++ {
		corner[k] = math32.Max(math32.Abs(mod.mins[k]), math32.Abs(mod.maxs[k]))
	}
	mod.Radius = math32.Sqrt(corner[0]*corner[0] + corner[1]*corner[1] + corner[2]*corner[2])
}

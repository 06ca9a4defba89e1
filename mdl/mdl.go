// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import (
	"qmodel/math/vec"
	"qmodel/model"
	"qmodel/texture"
)

// Skin holds the four animation slots of one skin. A single skin fills
// all four, a skin group cycles through them.
type Skin struct {
	Textures   [4]*texture.Texture
	Fullbright [4]*texture.Texture
}

// Frame is one entry of the frame list. Groups cover several poses,
// single frames exactly one.
type Frame struct {
	Name      string
	FirstPose int
	PoseCount int
	Intervals []float32 // per pose display times, nil for single frames
	BBoxMin   [3]byte
	BBoxMax   [3]byte
}

// AliasHeader is the bulk payload of an alias model. It lives in the
// registry's content cache and can be evicted there, the Model itself
// keeps only scalar metadata.
type AliasHeader struct {
	Scale       vec.Vec3
	ScaleOrigin vec.Vec3

	SkinWidth     int
	SkinHeight    int
	VerticeCount  int
	TriangleCount int
	PoseCount     int

	STVerts   []STVert
	Triangles []Triangle
	Frames    []Frame
	// PoseCount rows of VerticeCount packed vertices
	PoseVerts [][]FrameVertex
	Skins     []Skin
	// indexed pixels of the first skin, kept for color translation
	Texels []byte
}

type Model struct {
	name   string
	mins   vec.Vec3
	maxs   vec.Vec3
	Radius float32

	flags      int
	FrameCount int
	SyncType   int
	// file checksum, only computed for the models the protocol verifies
	CRC uint16

	hdr  *AliasHeader
	size int64
}

func (m *Model) Name() string        { return m.name }
func (m *Model) Type() model.ModType { return model.ModAlias }
func (m *Model) Mins() vec.Vec3      { return m.mins }
func (m *Model) Maxs() vec.Vec3      { return m.maxs }
func (m *Model) Flags() int          { return m.flags }

// TakeCacheData hands the payload over to the registry's cache. It
// returns nil once the payload has been taken.
func (m *Model) TakeCacheData() (any, int64) {
	if m.hdr == nil {
		return nil, 0
	}
	h := m.hdr
	m.hdr = nil
	return h, m.size
}

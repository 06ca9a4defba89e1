// SPDX-License-Identifier: GPL-2.0-or-later

package spr

import (
	"qmodel/math/vec"
	"qmodel/model"
	"qmodel/texture"
)

// Frame is one drawable sprite image with its placement relative to the
// sprite origin.
type Frame struct {
	Up, Down    float32
	Left, Right float32
	Width       int
	Height      int
	Texture     *texture.Texture
	Data        []byte // indexed pixels
}

// FrameGroup is a self animating list of frames with display times.
type FrameGroup struct {
	Intervals []float32
	Frames    []*Frame
}

// FrameEntry is one slot of the frame list. Group is nil for single
// frames, Frame then holds the image. For groups Frame is the first
// image of the group.
type FrameEntry struct {
	Group *FrameGroup
	Frame *Frame
}

// SpriteData is the payload of a sprite model. It is dropped on level
// change and rebuilt on the next load.
type SpriteData struct {
	Frames []FrameEntry
}

type Model struct {
	name string
	mins vec.Vec3
	maxs vec.Vec3

	SpriteType int // orientation
	MaxWidth   int
	MaxHeight  int
	BeamLength float32
	FrameCount int
	SyncType   int

	data *SpriteData
}

func (m *Model) Name() string        { return m.name }
func (m *Model) Type() model.ModType { return model.ModSprite }
func (m *Model) Mins() vec.Vec3      { return m.mins }
func (m *Model) Maxs() vec.Vec3      { return m.maxs }
func (m *Model) Flags() int          { return 0 }

// Data returns the frame payload, nil after DropCacheData.
func (m *Model) Data() *SpriteData { return m.data }

// DropCacheData releases the frame payload. Sprites are reloaded from
// disk when needed again.
func (m *Model) DropCacheData() { m.data = nil }

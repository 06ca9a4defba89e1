// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"qmodel/math/vec"
	"qmodel/model"
	"qmodel/texture"
)

// Would be great to type these but positive values are node numbers or so....
const (
	_ = -iota
	CONTENTS_EMPTY
	CONTENTS_SOLID
	CONTENTS_WATER
	CONTENTS_SLIME
	CONTENTS_LAVA
	CONTENTS_SKY
	CONTENTS_ORIGIN
	CONTENTS_CLIP
	CONTENTS_CURRENT_0
	CONTENTS_CURRENT_90
	CONTENTS_CURRENT_180
	CONTENTS_CURRENT_270
	CONTENTS_CURRENT_UP
	CONTENTS_CURRENT_DOWN
)

const (
	SurfaceNone        = 1 << iota
	SurfacePlaneBack   // 0x0002
	SurfaceDrawSky     // 0x0004
	SurfaceDrawSprite  // 0x0008
	SurfaceDrawTurb    // 0x0010
	SurfaceDrawTiled   // 0x0020
	SurfaceDrawBackground
	SurfaceUnderWater // 0x0080
	SurfaceDontWarp   // 0x0100
	SurfaceNoTexture
)

type ST byte

const (
	S ST = iota
	T
)

type Color struct {
	R float32
	G float32
	B float32
	A float32
}

type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	Type     byte
	SignBits byte
}

type ClipNode struct {
	Plane    *Plane
	Children [2]int // negative numbers are contents
}

type NodeBase struct {
	contents int // 0 to differentiate from leafs
	parent   *MNode

	minMaxs [6]float32
}

func NewNodeBase(contents int, minmax [6]float32) NodeBase {
	return NodeBase{
		contents: contents,
		minMaxs:  minmax,
	}
}

type Node interface {
	Contents() int
	Parent() *MNode
}

func (n *NodeBase) Contents() int {
	return n.contents
}

func (n *NodeBase) Parent() *MNode {
	return n.parent
}

type MNode struct {
	NodeBase
	Children [2]Node
	Plane    *Plane
	Surfaces []*Surface
}

type MLeaf struct {
	NodeBase
	CompressedVis     []byte // nil when the leaf has no vis info
	MarkSurfaces      []*Surface
	AmbientSoundLevel [4]byte
}

type Surface struct {
	Plane *Plane
	Flags int

	FirstEdge int // index into Model.SurfaceEdges
	NumEdges  int

	textureMins [2]int
	extents     [2]int

	TexInfo *TexInfo

	Styles       [4]byte
	LightSamples []byte // RGB triples, nil for unlit surfaces
}

func (s *Surface) TextureMins() [2]int {
	return s.textureMins
}

func (s *Surface) Extents() [2]int {
	return s.extents
}

type TexInfoPos struct {
	Pos    vec.Vec3
	Offset float32
}

type TexInfo struct {
	Vecs      [2]TexInfoPos
	Texture   *Texture
	Flags     uint32
	MipAdjust int
}

type Texture struct {
	Width      int
	Height     int
	name       string
	Texture    *texture.Texture
	Fullbright *texture.Texture
	SolidSky   *texture.Texture
	AlphaSky   *texture.Texture
	FlatSky    Color
	Data       []byte // the largest mip level, indexed colors

	// frame animation sequence, AnimNext forms a ring
	AnimTotal      int // total tenths in sequence, 0 when not animated
	AnimMin        int // time from AnimMin to AnimMax is this frame
	AnimMax        int
	AnimNext       *Texture
	AlternateAnims *Texture
}

func (t *Texture) Name() string {
	return t.name
}

const (
	MaxMapHulls = 4
	MaxMapLeafs = 70000
)

type Hull struct {
	ClipNodes     []*ClipNode
	Planes        []*Plane
	FirstClipNode int
	LastClipNode  int
	ClipMins      vec.Vec3
	ClipMaxs      vec.Vec3
}

type Submodel struct {
	Mins         vec.Vec3
	Maxs         vec.Vec3
	Origin       vec.Vec3
	HeadNode     [4]int
	VisLeafCount int
	FirstFace    int
	FaceCount    int
}

type MVertex struct {
	Position vec.Vec3
}

type MEdge struct {
	V [2]int
}

type Model struct {
	name string

	mins   vec.Vec3
	maxs   vec.Vec3
	Radius float32

	Submodels    []*Submodel
	Planes       []*Plane
	Leafs        []*MLeaf
	Vertexes     []*MVertex
	Edges        []*MEdge
	Nodes        []*MNode
	TexInfos     []*TexInfo
	Surfaces     []*Surface
	SurfaceEdges []int32
	ClipNodes    []*ClipNode
	MarkSurfaces []*Surface
	Textures     []*Texture

	FrameCount int

	Hulls   [MaxMapHulls]Hull
	VisData []byte
	// expanded to RGB triples, either from a .lit or from the mono lump
	lightData []byte

	Entities []*Entity

	// the surfaces of this (sub)model within Surfaces
	FirstModelSurface int
	NumModelSurfaces  int
	// leafs of this (sub)model, not counting the solid leaf 0
	VisLeafCount int

	Node Node
}

func (q *Model) Mins() vec.Vec3 {
	return q.mins
}
func (q *Model) Maxs() vec.Vec3 {
	return q.maxs
}
func (q *Model) Name() string {
	return q.name
}
func (q *Model) Flags() int {
	return 0
}
func (q *Model) Type() model.ModType {
	return model.ModBrush
}

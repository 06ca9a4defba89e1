// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// the brush format carries no magic, just this version number
const bspVersion = 29

// lump order in the header, as on disk
const (
	lumpEntities = iota
	lumpPlanes
	lumpTextures
	lumpVertexes
	lumpVisibility
	lumpNodes
	lumpTexinfo
	lumpFaces
	lumpLighting
	lumpClipNodes
	lumpLeafs
	lumpMarkSurfaces
	lumpEdges
	lumpSurfaceEdges
	lumpModels
	lumpCount
)

var lumpNames = [lumpCount]string{
	"entities", "planes", "textures", "vertexes", "visibility",
	"nodes", "texinfo", "faces", "lighting", "clipnodes",
	"leafs", "marksurfaces", "edges", "surfedges", "models",
}

// called lump_t in the original
type directory struct {
	Offset int32
	Size   int32
}

type header struct {
	Version int32
	Lumps   [lumpCount]directory
}

type vertex struct {
	Point [3]float32
}

// the first edge of the list is never used, edge 0 stands for "no edge"
type edge struct {
	V [2]uint16 // vertex ids, must be in [0,numvertices[
}

type plane struct {
	Normal [3]float32
	Dist   float32
	Type   int32 // 0,1,2: axial in X,Y,Z; 3,4,5: dominant in X,Y,Z
}

const texSpecial = 1 // sky or slime, no lightmap, no 256 extent check

type texinfo struct {
	Vecs   [2][4]float32 // [s/t][xyz offset]
	MipTex int32         // index into the texture lump, must be in [0,numtex[
	Flags  int32
}

type face struct {
	PlaneID   int16 // must be in [0,numplanes[
	Side      int16 // nonzero when the face is on the back of its plane
	FirstEdge int32 // index into the surfedge list
	EdgeCount int16
	TexInfoID int16
	Styles    [4]uint8
	LightOfs  int32 // offset into the lighting lump, or -1
}

const mipTexSize = 40 // bytes of mipTex on disk, the pixels follow

type mipTex struct {
	Name    [16]byte
	Width   uint32
	Height  uint32
	Offsets [4]uint32 // relative to the mipTex start, one per mip level
}

type node struct {
	PlaneID   int32
	Children  [2]int16 // negative p means leaf -(p)-1
	Box       [6]int16
	FirstFace uint16
	FaceCount uint16
}

type leaf struct {
	Contents         int32
	VisOfs           int32 // offset into the visibility lump, or -1
	Box              [6]int16
	FirstMarkSurface uint16
	MarkSurfaceCount uint16
	Ambients         [4]byte
}

type clipNode struct {
	PlaneID  int32
	Children [2]int16 // negative values are content ids
}

// one per submodel; the world plus the movable inline parts of a map
type dmodel struct {
	BoundingBox  [6]float32
	Origin       [3]float32
	HeadNode     [4]int32
	VisLeafCount int32 // not including the solid leaf 0
	FirstFace    int32
	FaceCount    int32
}

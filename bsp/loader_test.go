// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestQLit(t *testing.T) {
	litData := []byte{'Q', 'L', 'I', 'T'}
	buf := bytes.NewReader(litData)
	var magic uint32
	binary.Read(buf, binary.LittleEndian, &magic)
	if qlit != magic {
		t.Error("qlit != litdata")
	}
}

func le(vs ...interface{}) []byte {
	buf := &bytes.Buffer{}
	for _, v := range vs {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

// a one node map, the yz plane splits an empty leaf in front from a
// water leaf in back, both sharing one 17x1 quad surface
func testMap() [lumpCount][]byte {
	var l [lumpCount][]byte
	l[lumpVertexes] = le(
		vertex{Point: [3]float32{0, 0, 0}},
		vertex{Point: [3]float32{17, 0, 0}},
		vertex{Point: [3]float32{17, 1, 0}},
		vertex{Point: [3]float32{0, 1, 0}},
	)
	l[lumpEdges] = le(
		edge{V: [2]uint16{0, 1}},
		edge{V: [2]uint16{1, 2}},
		edge{V: [2]uint16{2, 3}},
		edge{V: [2]uint16{3, 0}},
	)
	l[lumpSurfaceEdges] = le([]int32{0, 1, 2, 3})
	l[lumpPlanes] = le(plane{Normal: [3]float32{1, 0, 0}, Dist: 0, Type: 0})
	l[lumpTexinfo] = le(texinfo{
		Vecs: [2][4]float32{{1, 0, 0, 0}, {0, 1, 0, 0}},
	})
	l[lumpFaces] = le(face{
		PlaneID:   0,
		FirstEdge: 0,
		EdgeCount: 4,
		Styles:    [4]uint8{255, 255, 255, 255},
		LightOfs:  -1,
	})
	l[lumpMarkSurfaces] = le([]uint16{0})
	l[lumpLeafs] = le(
		leaf{Contents: CONTENTS_SOLID, VisOfs: -1},
		leaf{Contents: CONTENTS_EMPTY, VisOfs: -1,
			FirstMarkSurface: 0, MarkSurfaceCount: 1},
		leaf{Contents: CONTENTS_WATER, VisOfs: -1,
			FirstMarkSurface: 0, MarkSurfaceCount: 1},
	)
	l[lumpNodes] = le(node{PlaneID: 0, Children: [2]int16{-2, -3}})
	l[lumpModels] = le(dmodel{
		BoundingBox:  [6]float32{0, 0, 0, 17, 1, 0},
		VisLeafCount: 2,
		FaceCount:    1,
	})
	return l
}

func buildBSP(lumps [lumpCount][]byte) []byte {
	var h header
	h.Version = bspVersion
	ofs := 4 + lumpCount*8
	for i := range lumps {
		h.Lumps[i] = directory{Offset: int32(ofs), Size: int32(len(lumps[i]))}
		ofs += len(lumps[i])
	}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, &h)
	for i := range lumps {
		buf.Write(lumps[i])
	}
	return buf.Bytes()
}

func loadTestMap(t *testing.T, lumps [lumpCount][]byte, world bool) *Model {
	t.Helper()
	mods, err := Load("maps/test.bsp", buildBSP(lumps), world)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mods) == 0 {
		t.Fatal("Load returned no models")
	}
	return mods[0].(*Model)
}

func TestLoadMinimalMap(t *testing.T) {
	m := loadTestMap(t, testMap(), true)
	if len(m.Leafs) != 3 || len(m.Nodes) != 1 || len(m.Surfaces) != 1 {
		t.Fatalf("got %d leafs, %d nodes, %d surfaces",
			len(m.Leafs), len(m.Nodes), len(m.Surfaces))
	}
	if m.VisLeafCount != 2 {
		t.Errorf("VisLeafCount = %d, want 2", m.VisLeafCount)
	}
	// bounds get padded by one unit on each side
	if m.Mins() != (vecOf(-1, -1, -1)) || m.Maxs() != (vecOf(18, 2, 1)) {
		t.Errorf("bounds = %v %v", m.Mins(), m.Maxs())
	}
	if m.TexInfos[0].MipAdjust != 1 {
		t.Errorf("MipAdjust = %d, want 1", m.TexInfos[0].MipAdjust)
	}
}

func TestSurfaceExtents(t *testing.T) {
	m := loadTestMap(t, testMap(), true)
	s := m.Surfaces[0]
	// a 17 unit span crosses two 16 unit blocks
	if got := s.Extents(); got != [2]int{32, 16} {
		t.Errorf("extents = %v, want [32 16]", got)
	}
	if got := s.TextureMins(); got != [2]int{0, 0} {
		t.Errorf("texturemins = %v, want [0 0]", got)
	}
}

func TestSurfaceExtentsTooLarge(t *testing.T) {
	lumps := testMap()
	lumps[lumpVertexes] = le(
		vertex{Point: [3]float32{0, 0, 0}},
		vertex{Point: [3]float32{400, 0, 0}},
		vertex{Point: [3]float32{400, 1, 0}},
		vertex{Point: [3]float32{0, 1, 0}},
	)
	if _, err := Load("maps/test.bsp", buildBSP(lumps), true); err == nil {
		t.Error("no error for surface extents beyond 256")
	}
}

func TestWrongVersion(t *testing.T) {
	data := buildBSP(testMap())
	binary.LittleEndian.PutUint32(data, 28)
	if _, err := Load("maps/test.bsp", data, true); err == nil {
		t.Error("no error for wrong version")
	}
}

func TestLumpOverlap(t *testing.T) {
	data := buildBSP(testMap())
	// move the edge lump on top of the vertex lump
	vofs := binary.LittleEndian.Uint32(data[4+8*lumpVertexes:])
	binary.LittleEndian.PutUint32(data[4+8*lumpEdges:], vofs)
	if _, err := Load("maps/test.bsp", data, true); err == nil {
		t.Error("no error for overlapping lumps")
	}
}

func TestLumpPastEnd(t *testing.T) {
	data := buildBSP(testMap())
	binary.LittleEndian.PutUint32(data[4+8*lumpVertexes+4:], 1<<30)
	if _, err := Load("maps/test.bsp", data, true); err == nil {
		t.Error("no error for lump extending past end of file")
	}
}

func TestBadPlaneIndex(t *testing.T) {
	lumps := testMap()
	lumps[lumpFaces] = le(face{
		PlaneID:   7,
		FirstEdge: 0,
		EdgeCount: 4,
		LightOfs:  -1,
	})
	if _, err := Load("maps/test.bsp", buildBSP(lumps), true); err == nil {
		t.Error("no error for face with bad plane index")
	}
}

func TestSubmodelClones(t *testing.T) {
	lumps := testMap()
	lumps[lumpModels] = le(
		dmodel{BoundingBox: [6]float32{0, 0, 0, 17, 1, 0}, VisLeafCount: 2, FaceCount: 1},
		dmodel{BoundingBox: [6]float32{0, 0, 0, 8, 1, 0}, FaceCount: 1},
		dmodel{BoundingBox: [6]float32{0, 0, 0, 4, 1, 0}, FaceCount: 1},
	)
	mods, err := Load("maps/test.bsp", buildBSP(lumps), true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mods) != 3 {
		t.Fatalf("got %d models, want 3", len(mods))
	}
	wantNames := []string{"maps/test.bsp", "*1", "*2"}
	for i, w := range wantNames {
		if mods[i].Name() != w {
			t.Errorf("mods[%d].Name() = %q, want %q", i, mods[i].Name(), w)
		}
	}
	m1 := mods[1].(*Model)
	if m1.Maxs()[0] != 9 { // 8 plus one unit of padding
		t.Errorf("submodel 1 maxs[0] = %v, want 9", m1.Maxs()[0])
	}
	// the clones share the level wide arrays
	m0 := mods[0].(*Model)
	if m1.Planes[0] != m0.Planes[0] {
		t.Error("clone does not share planes")
	}
}

func TestUnderwaterAndWarpFlags(t *testing.T) {
	m := loadTestMap(t, testMap(), true)
	s := m.Surfaces[0]
	if s.Flags&SurfaceUnderWater == 0 {
		t.Error("surface in a water leaf not marked underwater")
	}
	if s.Flags&SurfaceDontWarp != 0 {
		t.Error("world surface marked dontwarp")
	}
	m = loadTestMap(t, testMap(), false)
	if m.Surfaces[0].Flags&SurfaceDontWarp == 0 {
		t.Error("non world surface not marked dontwarp")
	}
}

func TestMakeHull0(t *testing.T) {
	m := loadTestMap(t, testMap(), true)
	h := &m.Hulls[0]
	if len(h.ClipNodes) != len(m.Nodes) {
		t.Fatalf("hull 0 has %d clipnodes, want %d", len(h.ClipNodes), len(m.Nodes))
	}
	if got := h.PointContents(h.FirstClipNode, vecOf(5, 0, 0)); got != CONTENTS_EMPTY {
		t.Errorf("front contents = %d, want %d", got, CONTENTS_EMPTY)
	}
	if got := h.PointContents(h.FirstClipNode, vecOf(-5, 0, 0)); got != CONTENTS_WATER {
		t.Errorf("back contents = %d, want %d", got, CONTENTS_WATER)
	}
}

func TestLightingExpansion(t *testing.T) {
	lumps := testMap()
	lumps[lumpLighting] = []byte{10, 20}
	lumps[lumpFaces] = le(face{
		PlaneID:   0,
		FirstEdge: 0,
		EdgeCount: 4,
		Styles:    [4]uint8{0, 255, 255, 255},
		LightOfs:  1,
	})
	m := loadTestMap(t, lumps, true)
	s := m.Surfaces[0]
	// sample 1 expanded to an RGB triple
	if len(s.LightSamples) < 3 ||
		s.LightSamples[0] != 20 || s.LightSamples[1] != 20 || s.LightSamples[2] != 20 {
		t.Errorf("LightSamples start = %v", s.LightSamples[:3])
	}
}

func texLump(names ...string) []byte {
	const pix = 16 * 16 / 64 * 85
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, int32(len(names)))
	ofs := 4 + 4*len(names)
	for i := range names {
		binary.Write(buf, binary.LittleEndian, int32(ofs+i*(mipTexSize+pix)))
	}
	for _, name := range names {
		var mt mipTex
		copy(mt.Name[:], name)
		mt.Width = 16
		mt.Height = 16
		mt.Offsets = [4]uint32{40, 40 + 256, 40 + 256 + 64, 40 + 256 + 64 + 16}
		binary.Write(buf, binary.LittleEndian, &mt)
		buf.Write(make([]byte, pix))
	}
	return buf.Bytes()
}

func TestAnimationSequence(t *testing.T) {
	lumps := testMap()
	lumps[lumpTextures] = texLump("+0abc", "+1abc", "+2abc")
	m := loadTestMap(t, lumps, true)
	t0, t1, t2 := m.Textures[0], m.Textures[1], m.Textures[2]
	for i, tx := range []*Texture{t0, t1, t2} {
		if tx.AnimTotal != 3*animCycle {
			t.Errorf("frame %d: AnimTotal = %d, want %d", i, tx.AnimTotal, 3*animCycle)
		}
		if tx.AnimMin != i*animCycle || tx.AnimMax != (i+1)*animCycle {
			t.Errorf("frame %d: window [%d,%d)", i, tx.AnimMin, tx.AnimMax)
		}
	}
	// the sequence is circular
	if t0.AnimNext != t1 || t1.AnimNext != t2 || t2.AnimNext != t0 {
		t.Error("animation ring is not circular")
	}
}

func TestAnimationGap(t *testing.T) {
	lumps := testMap()
	lumps[lumpTextures] = texLump("+0abc", "+2abc")
	if _, err := Load("maps/test.bsp", buildBSP(lumps), true); err == nil {
		t.Error("no error for animation sequence with a missing frame")
	}
}

func TestAlternateAnims(t *testing.T) {
	lumps := testMap()
	lumps[lumpTextures] = texLump("+0abc", "+1abc", "+aabc")
	m := loadTestMap(t, lumps, true)
	if m.Textures[0].AlternateAnims != m.Textures[2] {
		t.Error("primary frames not linked to the alternate set")
	}
	if m.Textures[2].AlternateAnims != m.Textures[0] {
		t.Error("alternate frame not linked back to the primary set")
	}
	if m.Textures[2].AnimNext != m.Textures[2] {
		t.Error("single alternate frame should loop on itself")
	}
}

func TestMissingTextureFallback(t *testing.T) {
	m := loadTestMap(t, testMap(), true)
	ti := m.TexInfos[0]
	if ti.Texture == nil || !strings.HasPrefix(ti.Texture.Name(), "notexture") {
		t.Errorf("texinfo without textures bound to %v", ti.Texture)
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"qmodel/filesystem"
	"qmodel/math/vec"
	"qmodel/model"
)

// magic of the external colored lighting files
const qlit = 'Q' | 'L'<<8 | 'I'<<16 | 'T'<<24

const litVersion = 1

func init() {
	model.RegisterBrush(Load)
}

type loadContext struct {
	name  string
	world bool
	data  []byte
	mod   *Model
}

func readLump[T any](lc *loadContext, l directory, what string) ([]T, error) {
	var zero T
	rec := binary.Size(zero)
	if int(l.Size)%rec != 0 {
		return nil, errors.Errorf("funny lump size in %s lump", what)
	}
	out := make([]T, int(l.Size)/rec)
	r := bytes.NewReader(lc.data[int(l.Offset) : int(l.Offset)+int(l.Size)])
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, errors.Wrapf(err, "%s lump", what)
	}
	return out, nil
}

func checkLumps(h *header, fileLen int) error {
	for i, l := range h.Lumps {
		off, size := int(l.Offset), int(l.Size)
		if off < 0 || size < 0 || off+size > fileLen {
			return errors.Errorf("%s lump extends past end of file", lumpNames[i])
		}
	}
	for i := 0; i < lumpCount; i++ {
		a := h.Lumps[i]
		if a.Size == 0 {
			continue
		}
		for j := i + 1; j < lumpCount; j++ {
			b := h.Lumps[j]
			if b.Size == 0 {
				continue
			}
			if int(a.Offset) < int(b.Offset)+int(b.Size) &&
				int(b.Offset) < int(a.Offset)+int(a.Size) {
				return errors.Errorf("%s and %s lumps overlap", lumpNames[i], lumpNames[j])
			}
		}
	}
	return nil
}

// Load reads a brush model file. The returned slice holds the model
// itself followed by its inline submodels under the names "*1", "*2"
// and so on. Surfaces of anything but the active world are marked to
// not warp.
func Load(name string, data []byte, world bool) ([]model.Model, error) {
	var h header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrapf(err, "%s: header", name)
	}
	if h.Version != bspVersion {
		return nil, errors.Errorf("%s has wrong version number (%d should be %d)",
			name, h.Version, bspVersion)
	}
	if err := checkLumps(&h, len(data)); err != nil {
		return nil, errors.Wrap(err, name)
	}

	lc := &loadContext{
		name:  name,
		world: world,
		data:  data,
		mod:   &Model{name: name, FrameCount: 2},
	}
	m := lc.mod

	// order matters, later lumps index into earlier ones
	steps := []struct {
		lump int
		fn   func(directory) error
	}{
		{lumpVertexes, lc.loadVertexes},
		{lumpEdges, lc.loadEdges},
		{lumpSurfaceEdges, lc.loadSurfaceEdges},
		{lumpTextures, lc.loadTextures},
		{lumpLighting, lc.loadLighting},
		{lumpPlanes, lc.loadPlanes},
		{lumpTexinfo, lc.loadTexinfo},
		{lumpFaces, lc.loadFaces},
		{lumpMarkSurfaces, lc.loadMarkSurfaces},
		{lumpVisibility, lc.loadVisibility},
		{lumpLeafs, lc.loadLeafs},
		{lumpNodes, lc.loadNodes},
		{lumpClipNodes, lc.loadClipNodes},
		{lumpEntities, lc.loadEntities},
		{lumpModels, lc.loadSubmodels},
	}
	for _, s := range steps {
		if err := s.fn(h.Lumps[s.lump]); err != nil {
			return nil, errors.Wrap(err, name)
		}
	}
	lc.makeHull0()

	var mods []model.Model
	cur := m
	for i, bm := range m.Submodels {
		cur.Hulls[0].FirstClipNode = bm.HeadNode[0]
		for j := 1; j < MaxMapHulls; j++ {
			cur.Hulls[j].FirstClipNode = bm.HeadNode[j]
			cur.Hulls[j].LastClipNode = len(m.ClipNodes) - 1
		}
		cur.FirstModelSurface = bm.FirstFace
		cur.NumModelSurfaces = bm.FaceCount
		if bm.HeadNode[0] < 0 || bm.HeadNode[0] >= len(m.Nodes) {
			return nil, errors.Errorf("%s: bad headnode %d", name, bm.HeadNode[0])
		}
		cur.Node = m.Nodes[bm.HeadNode[0]]
		cur.mins = bm.Mins
		cur.maxs = bm.Maxs
		cur.Radius = radiusFromBounds(cur.mins, cur.maxs)
		cur.VisLeafCount = bm.VisLeafCount
		mods = append(mods, cur)
		if i+1 < len(m.Submodels) {
			// the inline parts get registered under their own names
			clone := *cur
			clone.name = fmt.Sprintf("*%d", i+1)
			cur = &clone
		}
	}
	return mods, nil
}

func radiusFromBounds(mins, maxs vec.Vec3) float32 {
	var corner vec.Vec3
	for i := 0; i < 3; i++ {
		corner[i] = math32.Max(math32.Abs(mins[i]), math32.Abs(maxs[i]))
	}
	return corner.Length()
}

func (lc *loadContext) loadVertexes(l directory) error {
	vs, err := readLump[vertex](lc, l, "vertex")
	if err != nil {
		return err
	}
	out := make([]MVertex, len(vs))
	lc.mod.Vertexes = make([]*MVertex, len(vs))
	for i, v := range vs {
		out[i].Position = vec.VFromA(v.Point)
		lc.mod.Vertexes[i] = &out[i]
	}
	return nil
}

func (lc *loadContext) loadEdges(l directory) error {
	es, err := readLump[edge](lc, l, "edge")
	if err != nil {
		return err
	}
	// one spare at the end, some tools index one past the count
	out := make([]MEdge, len(es)+1)
	lc.mod.Edges = make([]*MEdge, len(es)+1)
	for i := range out {
		lc.mod.Edges[i] = &out[i]
	}
	for i, e := range es {
		out[i].V[0] = int(e.V[0])
		out[i].V[1] = int(e.V[1])
	}
	return nil
}

func (lc *loadContext) loadSurfaceEdges(l directory) error {
	se, err := readLump[int32](lc, l, "surfedge")
	if err != nil {
		return err
	}
	lc.mod.SurfaceEdges = se
	return nil
}

func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (lc *loadContext) loadTextures(l directory) error {
	m := lc.mod
	if l.Size == 0 {
		m.Textures = nil
		return nil
	}
	r := bytes.NewReader(lc.data[int(l.Offset) : int(l.Offset)+int(l.Size)])
	var num int32
	if err := binary.Read(r, binary.LittleEndian, &num); err != nil {
		return errors.Wrap(err, "texture lump")
	}
	if num < 0 || int(num) > int(l.Size)/4 {
		return errors.Errorf("texture lump has bad count %d", num)
	}
	offsets := make([]int32, num)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return errors.Wrap(err, "texture lump")
	}
	m.Textures = make([]*Texture, num)
	for i, ofs := range offsets {
		if ofs == -1 {
			continue
		}
		if ofs < 0 || int(ofs)+mipTexSize > int(l.Size) {
			return errors.Errorf("texture %d out of bounds", i)
		}
		var mt mipTex
		mr := bytes.NewReader(lc.data[int(l.Offset)+int(ofs):])
		if err := binary.Read(mr, binary.LittleEndian, &mt); err != nil {
			return errors.Wrapf(err, "texture %d", i)
		}
		name := cstr(mt.Name[:])
		w, hgt := int(mt.Width), int(mt.Height)
		if w <= 0 || hgt <= 0 || w&15 != 0 || hgt&15 != 0 {
			return errors.Errorf("Texture %s is not 16 aligned", name)
		}
		// the four mip levels follow the header back to back
		pixels := w * hgt / 64 * 85
		pixelOfs := int(mt.Offsets[0])
		if pixelOfs < mipTexSize || int(ofs)+pixelOfs+pixels > int(l.Size) {
			return errors.Errorf("Texture %s extends past texture lump", name)
		}
		tx := &Texture{
			name:   name,
			Width:  w,
			Height: hgt,
			Data:   make([]byte, pixels),
		}
		base := int(l.Offset) + int(ofs) + pixelOfs
		copy(tx.Data, lc.data[base:base+pixels])
		m.Textures[i] = tx
		top := tx.Data[:w*hgt]
		if strings.HasPrefix(name, "sky") && w == 256 && hgt == 128 {
			tx.loadSkyTexture(top, name, m.name)
		} else {
			tx.loadBspTexture(top, name, m.name)
		}
	}
	return m.sequenceAnimations()
}

func (lc *loadContext) loadLighting(l directory) error {
	m := lc.mod
	m.lightData = nil
	if l.Size == 0 {
		return nil
	}
	// a .lit file beside the map replaces the mono lightmap with colors
	litName := filesystem.StripExt(lc.name) + ".lit"
	if b, err := filesystem.ReadFile(litName); err == nil {
		if len(b) >= 8 && binary.LittleEndian.Uint32(b) == qlit {
			switch {
			case binary.LittleEndian.Uint32(b[4:]) != litVersion:
				log.Printf("Unknown .lit file version (%d)", binary.LittleEndian.Uint32(b[4:]))
			case len(b)-8 != int(l.Size)*3:
				log.Printf("Outdated .lit file (%s should be %d bytes, not %d)",
					litName, 8+int(l.Size)*3, len(b))
			default:
				m.lightData = b[8:]
				return nil
			}
		} else {
			log.Printf("Corrupt .lit file (%s), ignoring", litName)
		}
	}
	// no .lit, expand the white lighting into equal intensity colors
	src := lc.data[int(l.Offset) : int(l.Offset)+int(l.Size)]
	m.lightData = make([]byte, len(src)*3)
	for i, d := range src {
		m.lightData[i*3] = d
		m.lightData[i*3+1] = d
		m.lightData[i*3+2] = d
	}
	return nil
}

func (lc *loadContext) loadPlanes(l directory) error {
	ps, err := readLump[plane](lc, l, "plane")
	if err != nil {
		return err
	}
	// extra capacity as hull synthesis historically grows this array
	out := make([]Plane, len(ps), len(ps)*2)
	lc.mod.Planes = make([]*Plane, len(ps))
	for i, p := range ps {
		var bits byte
		for j := 0; j < 3; j++ {
			if p.Normal[j] < 0 {
				bits |= 1 << uint(j)
			}
		}
		out[i] = Plane{
			Normal:   vec.VFromA(p.Normal),
			Dist:     p.Dist,
			Type:     byte(p.Type),
			SignBits: bits,
		}
		lc.mod.Planes[i] = &out[i]
	}
	return nil
}

func (lc *loadContext) loadTexinfo(l directory) error {
	m := lc.mod
	tis, err := readLump[texinfo](lc, l, "texinfo")
	if err != nil {
		return err
	}
	out := make([]TexInfo, len(tis))
	m.TexInfos = make([]*TexInfo, len(tis))
	for i, ti := range tis {
		o := &out[i]
		m.TexInfos[i] = o
		for j := 0; j < 2; j++ {
			o.Vecs[j] = TexInfoPos{
				Pos:    vec.Vec3{ti.Vecs[j][0], ti.Vecs[j][1], ti.Vecs[j][2]},
				Offset: ti.Vecs[j][3],
			}
		}
		o.Flags = uint32(ti.Flags)
		ls := o.Vecs[S].Pos.Length()
		lt := o.Vecs[T].Pos.Length()
		avg := (ls + lt) / 2
		switch {
		case avg < 0.32:
			o.MipAdjust = 4
		case avg < 0.49:
			o.MipAdjust = 3
		case avg < 0.99:
			o.MipAdjust = 2
		default:
			o.MipAdjust = 1
		}
		if m.Textures == nil {
			o.Texture = noTextureMip
			o.Flags = 0
			continue
		}
		idx := int(ti.MipTex)
		if idx < 0 || idx >= len(m.Textures) {
			return errors.Errorf("texinfo %d: miptex %d out of bounds", i, idx)
		}
		o.Texture = m.Textures[idx]
		if o.Texture == nil {
			o.Texture = noTextureMip
			o.Flags = 0
		}
	}
	return nil
}

func (lc *loadContext) calcSurfaceExtents(s *Surface) error {
	m := lc.mod
	mins := [2]float32{math32.MaxFloat32, math32.MaxFloat32}
	maxs := [2]float32{-math32.MaxFloat32, -math32.MaxFloat32}
	tex := s.TexInfo
	for i := 0; i < s.NumEdges; i++ {
		idx := s.FirstEdge + i
		if idx < 0 || idx >= len(m.SurfaceEdges) {
			return errors.New("CalcSurfaceExtents: bad surfedge index")
		}
		e := int(m.SurfaceEdges[idx])
		var vi int
		if e >= 0 {
			if e >= len(m.Edges) {
				return errors.New("CalcSurfaceExtents: bad edge index")
			}
			vi = m.Edges[e].V[0]
		} else {
			if -e >= len(m.Edges) {
				return errors.New("CalcSurfaceExtents: bad edge index")
			}
			vi = m.Edges[-e].V[1]
		}
		if vi >= len(m.Vertexes) {
			return errors.New("CalcSurfaceExtents: bad vertex index")
		}
		v := m.Vertexes[vi]
		for j := 0; j < 2; j++ {
			val := v.Position[0]*tex.Vecs[j].Pos[0] +
				v.Position[1]*tex.Vecs[j].Pos[1] +
				v.Position[2]*tex.Vecs[j].Pos[2] +
				tex.Vecs[j].Offset
			if val < mins[j] {
				mins[j] = val
			}
			if val > maxs[j] {
				maxs[j] = val
			}
		}
	}
	for i := 0; i < 2; i++ {
		// snap to the 16 unit lightmap grid
		bmins := math32.Floor(mins[i] / 16)
		bmaxs := math32.Ceil(maxs[i] / 16)
		s.textureMins[i] = int(bmins) * 16
		s.extents[i] = int(bmaxs-bmins) * 16
		if tex.Flags&texSpecial == 0 && s.extents[i] > 256 {
			return errors.New("Bad surface extents")
		}
	}
	return nil
}

func (lc *loadContext) loadFaces(l directory) error {
	m := lc.mod
	fs, err := readLump[face](lc, l, "face")
	if err != nil {
		return err
	}
	out := make([]Surface, len(fs))
	m.Surfaces = make([]*Surface, len(fs))
	for i := range fs {
		in := &fs[i]
		s := &out[i]
		m.Surfaces[i] = s
		s.FirstEdge = int(in.FirstEdge)
		s.NumEdges = int(in.EdgeCount)
		if in.Side != 0 {
			s.Flags |= SurfacePlaneBack
		}
		pn := int(in.PlaneID)
		if pn < 0 || pn >= len(m.Planes) {
			return errors.Errorf("face %d: bad plane number %d", i, pn)
		}
		s.Plane = m.Planes[pn]
		tn := int(in.TexInfoID)
		if tn < 0 || tn >= len(m.TexInfos) {
			return errors.Errorf("face %d: bad texinfo number %d", i, tn)
		}
		s.TexInfo = m.TexInfos[tn]
		if err := lc.calcSurfaceExtents(s); err != nil {
			return err
		}
		s.Styles = in.Styles
		if in.LightOfs != -1 {
			// lightData holds RGB triples, the disk offset counts samples
			lo := int(in.LightOfs) * 3
			if lo < 0 || lo >= len(m.lightData) {
				return errors.Errorf("face %d: bad light offset", i)
			}
			s.LightSamples = m.lightData[lo:]
		}
		name := s.TexInfo.Texture.Name()
		switch {
		case strings.HasPrefix(name, "sky"):
			s.Flags |= SurfaceDrawSky | SurfaceDrawTiled
		case strings.HasPrefix(name, "*"):
			s.Flags |= SurfaceDrawTurb | SurfaceDrawTiled
			for j := 0; j < 2; j++ {
				s.extents[j] = 16384
				s.textureMins[j] = -8192
			}
		}
	}
	return nil
}

func (lc *loadContext) loadMarkSurfaces(l directory) error {
	m := lc.mod
	ms, err := readLump[uint16](lc, l, "marksurface")
	if err != nil {
		return err
	}
	m.MarkSurfaces = make([]*Surface, len(ms))
	for i, idx := range ms {
		if int(idx) >= len(m.Surfaces) {
			return errors.New("Mod_LoadMarksurfaces: bad surface number")
		}
		m.MarkSurfaces[i] = m.Surfaces[idx]
	}
	return nil
}

func (lc *loadContext) loadVisibility(l directory) error {
	if l.Size == 0 {
		lc.mod.VisData = nil
		return nil
	}
	lc.mod.VisData = make([]byte, l.Size)
	copy(lc.mod.VisData, lc.data[int(l.Offset):int(l.Offset)+int(l.Size)])
	return nil
}

func (lc *loadContext) loadLeafs(l directory) error {
	m := lc.mod
	ls, err := readLump[leaf](lc, l, "leaf")
	if err != nil {
		return err
	}
	if len(ls) > MaxMapLeafs {
		return errors.Errorf("%d leafs exceeds limit of %d", len(ls), MaxMapLeafs)
	}
	out := make([]MLeaf, len(ls))
	m.Leafs = make([]*MLeaf, len(ls))
	for i := range ls {
		in := &ls[i]
		o := &out[i]
		m.Leafs[i] = o
		if in.Contents >= 0 {
			return errors.Errorf("leaf %d has non leaf contents %d", i, in.Contents)
		}
		var mm [6]float32
		for j := 0; j < 6; j++ {
			mm[j] = float32(in.Box[j])
		}
		o.NodeBase = NewNodeBase(int(in.Contents), mm)
		fms, cnt := int(in.FirstMarkSurface), int(in.MarkSurfaceCount)
		if fms+cnt > len(m.MarkSurfaces) {
			return errors.New("Mod_LoadLeafs: bad marksurface range")
		}
		o.MarkSurfaces = m.MarkSurfaces[fms : fms+cnt]
		if in.VisOfs != -1 {
			vo := int(in.VisOfs)
			if vo < 0 || vo >= len(m.VisData) {
				return errors.New("Mod_LoadLeafs: bad visofs")
			}
			o.CompressedVis = m.VisData[vo:]
		}
		o.AmbientSoundLevel = in.Ambients
		if in.Contents != CONTENTS_EMPTY {
			for _, srf := range o.MarkSurfaces {
				srf.Flags |= SurfaceUnderWater
			}
		}
		if !lc.world {
			for _, srf := range o.MarkSurfaces {
				srf.Flags |= SurfaceDontWarp
			}
		}
	}
	return nil
}

func setParent(n Node, parent *MNode) {
	switch t := n.(type) {
	case *MNode:
		t.parent = parent
		setParent(t.Children[0], t)
		setParent(t.Children[1], t)
	case *MLeaf:
		t.parent = parent
	}
}

func (lc *loadContext) loadNodes(l directory) error {
	m := lc.mod
	ns, err := readLump[node](lc, l, "node")
	if err != nil {
		return err
	}
	out := make([]MNode, len(ns))
	m.Nodes = make([]*MNode, len(ns))
	for i := range out {
		m.Nodes[i] = &out[i]
	}
	for i := range ns {
		in := &ns[i]
		o := &out[i]
		var mm [6]float32
		for j := 0; j < 6; j++ {
			mm[j] = float32(in.Box[j])
		}
		o.NodeBase = NewNodeBase(0, mm)
		pn := int(in.PlaneID)
		if pn < 0 || pn >= len(m.Planes) {
			return errors.Errorf("node %d: bad plane number %d", i, pn)
		}
		o.Plane = m.Planes[pn]
		ff, fc := int(in.FirstFace), int(in.FaceCount)
		if ff+fc > len(m.Surfaces) {
			return errors.New("Mod_LoadNodes: bad face range")
		}
		o.Surfaces = m.Surfaces[ff : ff+fc]
		for j := 0; j < 2; j++ {
			p := int(in.Children[j])
			if p >= 0 {
				if p >= len(m.Nodes) {
					return errors.New("Mod_LoadNodes: bad node number")
				}
				o.Children[j] = m.Nodes[p]
			} else {
				li := -1 - p
				if li >= len(m.Leafs) {
					return errors.New("Mod_LoadNodes: bad leaf number")
				}
				o.Children[j] = m.Leafs[li]
			}
		}
	}
	if len(m.Nodes) > 0 {
		setParent(m.Nodes[0], nil)
		m.Node = m.Nodes[0]
	}
	return nil
}

func (lc *loadContext) loadClipNodes(l directory) error {
	m := lc.mod
	cs, err := readLump[clipNode](lc, l, "clipnode")
	if err != nil {
		return err
	}
	out := make([]ClipNode, len(cs))
	m.ClipNodes = make([]*ClipNode, len(cs))
	for i := range cs {
		pn := int(cs[i].PlaneID)
		if pn < 0 || pn >= len(m.Planes) {
			return errors.New("Mod_LoadClipnodes: planenum out of bounds")
		}
		out[i].Plane = m.Planes[pn]
		for j := 0; j < 2; j++ {
			c := int(cs[i].Children[j])
			if c >= len(cs) {
				return errors.New("Mod_LoadClipnodes: bad node number")
			}
			out[i].Children[j] = c
		}
		m.ClipNodes[i] = &out[i]
	}
	// player and shambler sized hulls share the clipnode tree, only the
	// box they are expanded by differs
	h1 := &m.Hulls[1]
	h1.ClipNodes = m.ClipNodes
	h1.FirstClipNode = 0
	h1.LastClipNode = len(cs) - 1
	h1.Planes = m.Planes
	h1.ClipMins = vec.Vec3{-16, -16, -24}
	h1.ClipMaxs = vec.Vec3{16, 16, 32}
	h2 := &m.Hulls[2]
	h2.ClipNodes = m.ClipNodes
	h2.FirstClipNode = 0
	h2.LastClipNode = len(cs) - 1
	h2.Planes = m.Planes
	h2.ClipMins = vec.Vec3{-32, -32, -24}
	h2.ClipMaxs = vec.Vec3{32, 32, 64}
	return nil
}

// makeHull0 duplicates the render node tree as the point sized clip
// hull, so collision code only ever walks clipnodes.
func (lc *loadContext) makeHull0() {
	m := lc.mod
	hull := &m.Hulls[0]
	index := make(map[*MNode]int, len(m.Nodes))
	for i, n := range m.Nodes {
		index[n] = i
	}
	out := make([]ClipNode, len(m.Nodes))
	hull.ClipNodes = make([]*ClipNode, len(m.Nodes))
	hull.FirstClipNode = 0
	hull.LastClipNode = len(m.Nodes) - 1
	hull.Planes = m.Planes
	for i, n := range m.Nodes {
		out[i].Plane = n.Plane
		for j, child := range n.Children {
			if child.Contents() < 0 {
				out[i].Children[j] = child.Contents()
			} else {
				out[i].Children[j] = index[child.(*MNode)]
			}
		}
		hull.ClipNodes[i] = &out[i]
	}
}

func (lc *loadContext) loadEntities(l directory) error {
	if l.Size == 0 {
		return nil
	}
	lc.mod.Entities = ParseEntities(lc.data[int(l.Offset) : int(l.Offset)+int(l.Size)])
	return nil
}

func (lc *loadContext) loadSubmodels(l directory) error {
	m := lc.mod
	ds, err := readLump[dmodel](lc, l, "submodel")
	if err != nil {
		return err
	}
	if len(ds) == 0 {
		return errors.New("model has no submodels")
	}
	m.Submodels = make([]*Submodel, len(ds))
	for i := range ds {
		in := &ds[i]
		sm := &Submodel{
			Origin:       vec.VFromA(in.Origin),
			VisLeafCount: int(in.VisLeafCount),
			FirstFace:    int(in.FirstFace),
			FaceCount:    int(in.FaceCount),
		}
		for j := 0; j < 3; j++ {
			// spread the bounds slightly to avoid zero sized hulls
			sm.Mins[j] = in.BoundingBox[j] - 1
			sm.Maxs[j] = in.BoundingBox[3+j] + 1
		}
		for j := 0; j < MaxMapHulls; j++ {
			sm.HeadNode[j] = int(in.HeadNode[j])
		}
		m.Submodels[i] = sm
	}
	return nil
}

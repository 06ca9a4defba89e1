// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"log"

	"github.com/pkg/errors"

	"qmodel/math/vec"
)

// PointInLeaf descends the render tree to the leaf containing p. Points
// exactly on a partition plane count as being on the front side.
func (m *Model) PointInLeaf(p vec.Vec3) (*MLeaf, error) {
	if m == nil || m.Node == nil {
		return nil, errors.New("Mod_PointInLeaf: bad model")
	}

	node := m.Node
	for {
		if node.Contents() < 0 {
			return node.(*MLeaf), nil
		}
		n := node.(*MNode)
		plane := n.Plane
		d := vec.Dot(p, plane.Normal) - plane.Dist
		if d > 0 {
			node = n.Children[0]
		} else {
			node = n.Children[1]
		}
	}
}

// DecompressVis expands one run length encoded visibility row to
// (visleafs+7)/8 bytes, one bit per leaf. A zero byte is followed by
// the count of zero bytes it stands for. The returned slice is a shared
// static, valid until the next call.
func (m *Model) DecompressVis(in []byte) []byte {
	row := (m.VisLeafCount + 7) / 8

	if len(in) == 0 {
		// no vis info, so make all visible
		for i := 0; i < row; i++ {
			decompressedVis[i] = 0xff
		}
		return decompressedVis[:row]
	}

	j := 0
	for i := 0; i < len(in) && j < row; i++ {
		if in[i] != 0 {
			decompressedVis[j] = in[i]
			j++
		} else {
			i++
			if i >= len(in) {
				log.Printf("Faulty vis data in model %s", m.Name())
				break
			}
			for c := in[i]; c > 0 && j < row; c-- {
				decompressedVis[j] = 0
				j++
			}
		}
	}
	return decompressedVis[:row]
}

var (
	NoVis           []byte
	decompressedVis []byte
	fatpvs          []byte
)

func init() {
	NoVis = bytes.Repeat([]byte{0xff}, MaxMapLeafs/8)
	decompressedVis = make([]byte, MaxMapLeafs/8)
	fatpvs = make([]byte, MaxMapLeafs/8)
}

// LeafPVS returns the set of potentially visible leafs as a bit row.
// The solid leaf 0 has no row of its own and sees everything.
func (m *Model) LeafPVS(leaf *MLeaf) []byte {
	if leaf == m.Leafs[0] {
		return NoVis
	}
	return m.DecompressVis(leaf.CompressedVis)
}

/*
The PVS must include a small area around the client to allow head bobbing
or other small motion on the client side.  Otherwise, a bob might cause an
entity that should be visible to not show up, especially when the bob
crosses a waterline.
*/
func (m *Model) addToFatPVS(org vec.Vec3, n Node, fpvs *[]byte) {
	node := n
	for {
		if node.Contents() < 0 {
			// if this is a leaf, accumulate the pvs bits
			if node.Contents() != CONTENTS_SOLID {
				pvs := m.LeafPVS(node.(*MLeaf))
				for i := range *fpvs {
					(*fpvs)[i] |= pvs[i]
				}
			}
			return
		}
		no := node.(*MNode)
		plane := no.Plane
		d := vec.Dot(org, plane.Normal) - plane.Dist
		if d > 8 {
			node = no.Children[0]
		} else if d < -8 {
			node = no.Children[1]
		} else { // go down both
			m.addToFatPVS(org, no.Children[0], fpvs)
			node = no.Children[1]
		}
	}
}

// FatPVS calculates a PVS that is the inclusive or of all leafs within
// 8 units of the given point. The returned slice is a shared static.
func (m *Model) FatPVS(org vec.Vec3) []byte {
	fatbytes := (m.VisLeafCount + 7) / 8
	pvs := fatpvs[:fatbytes]
	for i := range pvs {
		pvs[i] = 0
	}
	m.addToFatPVS(org, m.Node, &pvs)
	return pvs
}

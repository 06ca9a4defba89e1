// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"testing"

	"qmodel/math/vec"
)

func vecOf(x, y, z float32) vec.Vec3 {
	return vec.Vec3{x, y, z}
}

func TestVisDecompress(t *testing.T) {
	m := Model{VisLeafCount: 12 * 8}
	in := []byte{0x7, 0x0, 0x5, 0x5, 0x0, 0x3, 0x1, 0x1}
	got := m.DecompressVis(in)
	want := []byte{0x7, 0x0, 0x0, 0x0, 0x0, 0x0, 0x5, 0x0, 0x0, 0x0, 0x1, 0x1}
	if !bytes.Equal(got, want) {
		t.Errorf("Decompress(%v) = %v, want %v", in, got, want)
	}
}

func TestVisDecompressRun(t *testing.T) {
	m := Model{VisLeafCount: 32}
	in := []byte{0x00, 0x03, 0xff}
	got := m.DecompressVis(in)
	want := []byte{0x00, 0x00, 0x00, 0xff}
	if !bytes.Equal(got, want) {
		t.Errorf("Decompress(%v) = %v, want %v", in, got, want)
	}
}

func TestVisDecompressEmpty(t *testing.T) {
	m := Model{VisLeafCount: 32}
	got := m.DecompressVis(nil)
	want := bytes.Repeat([]byte{0xff}, 4)
	if !bytes.Equal(got, want) {
		t.Errorf("Decompress(nil) = %v, want %v", got, want)
	}
}

func TestLeafPVS(t *testing.T) {
	m := loadTestMap(t, testMap(), true)
	// the solid leaf 0 sees everything
	if got := m.LeafPVS(m.Leafs[0]); got[0] != 0xff {
		t.Errorf("solid leaf pvs starts with %#x", got[0])
	}
	// leafs without vis info see everything too
	if got := m.LeafPVS(m.Leafs[1]); got[0] != 0xff {
		t.Errorf("no-vis leaf pvs starts with %#x", got[0])
	}
}

func TestPointInLeaf(t *testing.T) {
	m := loadTestMap(t, testMap(), true)
	front, err := m.PointInLeaf(vecOf(5, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if front.Contents() != CONTENTS_EMPTY {
		t.Errorf("front leaf contents = %d, want %d", front.Contents(), CONTENTS_EMPTY)
	}
	back, err := m.PointInLeaf(vecOf(-5, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if back.Contents() != CONTENTS_WATER {
		t.Errorf("back leaf contents = %d, want %d", back.Contents(), CONTENTS_WATER)
	}
	// a point exactly on the plane is not in front of it
	on, err := m.PointInLeaf(vecOf(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if on != back {
		t.Error("point on the plane did not land in the back leaf")
	}
}

func TestPointInLeafBadModel(t *testing.T) {
	var m *Model
	if _, err := m.PointInLeaf(vecOf(0, 0, 0)); err == nil {
		t.Error("no error for nil model")
	}
	if _, err := (&Model{}).PointInLeaf(vecOf(0, 0, 0)); err == nil {
		t.Error("no error for model without nodes")
	}
}

func TestParentLinks(t *testing.T) {
	m := loadTestMap(t, testMap(), true)
	root := m.Nodes[0]
	if root.Parent() != nil {
		t.Error("root node has a parent")
	}
	for i, c := range root.Children {
		if c.Parent() != root {
			t.Errorf("child %d does not point back at the root", i)
		}
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later
package mdl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"qmodel/crc"
)

func nameBytes(s string) [16]byte {
	var b [16]byte
	copy(b[:], s)
	return b
}

// one single frame plus a group of three, three vertices, one triangle
func testModel() []byte {
	buf := &bytes.Buffer{}
	w := func(v any) {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	h := header{
		ID:            Magic,
		Version:       aliasVersion,
		Scale:         [3]float32{1, 1, 1},
		SkinCount:     1,
		SkinWidth:     8,
		SkinHeight:    8,
		VerticeCount:  3,
		TriangleCount: 1,
		FrameCount:    2,
	}
	w(&h)
	w(int32(ALIAS_SKIN_SINGLE))
	buf.Write(make([]byte, 8*8))
	for i := 0; i < 3; i++ {
		w(STVert{S: int32(i), T: int32(i)})
	}
	w(Triangle{Vertices: [3]int32{0, 1, 2}})
	w(int32(ALIAS_SINGLE))
	w(frameSingle{Name: nameBytes("stand")})
	for i := 0; i < 3; i++ {
		w(FrameVertex{})
	}
	w(int32(ALIAS_GROUP))
	w(frameGroup{FrameCount: 3})
	w([]float32{0.1, 0.2, 0.3})
	for j := 0; j < 3; j++ {
		w(frameSingle{Name: nameBytes(fmt.Sprintf("run%d", j))})
		for i := 0; i < 3; i++ {
			w(FrameVertex{PackedPosition: [3]byte{byte(10 * (j + 1)), 0, 0}})
		}
	}
	return buf.Bytes()
}

func TestPoseCursor(t *testing.T) {
	m, err := load("progs/test.mdl", testModel())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	h := m.hdr
	if h.PoseCount != 4 {
		t.Fatalf("PoseCount = %d, want 4", h.PoseCount)
	}
	if len(h.PoseVerts) != 4 {
		t.Fatalf("len(PoseVerts) = %d, want 4", len(h.PoseVerts))
	}
	f0, f1 := h.Frames[0], h.Frames[1]
	if f0.FirstPose != 0 || f0.PoseCount != 1 {
		t.Errorf("frame 0 poses [%d,%d)", f0.FirstPose, f0.FirstPose+f0.PoseCount)
	}
	if f1.FirstPose != 1 || f1.PoseCount != 3 {
		t.Errorf("frame 1 poses [%d,%d)", f1.FirstPose, f1.FirstPose+f1.PoseCount)
	}
	if f0.Name != "stand" || f1.Name != "run0" {
		t.Errorf("frame names %q, %q", f0.Name, f1.Name)
	}
	if len(f1.Intervals) != 3 || f1.Intervals[0] != 0.1 {
		t.Errorf("frame 1 intervals %v", f1.Intervals)
	}
}

func TestAliasBounds(t *testing.T) {
	m, err := load("progs/test.mdl", testModel())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// the widest pose reaches x = 30, scale 1, origin 0
	if m.Maxs()[0] != 30 || m.Mins()[0] != 0 {
		t.Errorf("x bounds [%v,%v], want [0,30]", m.Mins()[0], m.Maxs()[0])
	}
	if m.Radius == 0 {
		t.Error("Radius not computed")
	}
}

func TestWrongVersion(t *testing.T) {
	data := testModel()
	binary.LittleEndian.PutUint32(data[4:], 5)
	if _, err := load("progs/test.mdl", data); err == nil {
		t.Error("no error for wrong version")
	}
}

func TestNonPositiveInterval(t *testing.T) {
	data := testModel()
	// the group intervals sit right after the group header
	idx := bytes.Index(data, le32f(0.1))
	if idx < 0 {
		t.Fatal("interval not found in test data")
	}
	copy(data[idx:], le32f(0))
	if _, err := load("progs/test.mdl", data); err == nil {
		t.Error("no error for interval <= 0")
	}
}

func le32f(f float32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, f)
	return buf.Bytes()
}

func TestTooManyVertices(t *testing.T) {
	data := testModel()
	// VerticeCount is the 10th int32 sized field block: offset 4*2+12*4+4*3+4*3+4 = ...
	var h header
	binary.Read(bytes.NewReader(data), binary.LittleEndian, &h)
	h.VerticeCount = maxAliasVerts + 1
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, &h)
	copy(data, buf.Bytes())
	if _, err := load("progs/test.mdl", data); err == nil {
		t.Error("no error for too many vertices")
	}
}

func TestBadTriangleIndex(t *testing.T) {
	data := testModel()
	idx := bytes.Index(data, le(Triangle{Vertices: [3]int32{0, 1, 2}}))
	if idx < 0 {
		t.Fatal("triangle not found in test data")
	}
	copy(data[idx:], le(Triangle{Vertices: [3]int32{0, 1, 7}}))
	if _, err := load("progs/test.mdl", data); err == nil {
		t.Error("no error for triangle vertex out of range")
	}
}

func le(v any) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func TestTakeCacheData(t *testing.T) {
	m, err := load("progs/test.mdl", testModel())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	data, size := m.TakeCacheData()
	if data == nil || size <= 0 {
		t.Fatalf("TakeCacheData = %v, %d", data, size)
	}
	if _, ok := data.(*AliasHeader); !ok {
		t.Fatalf("payload is %T, want *AliasHeader", data)
	}
	if again, _ := m.TakeCacheData(); again != nil {
		t.Error("second TakeCacheData did not return nil")
	}
}

func TestChecksummedModels(t *testing.T) {
	data := testModel()
	m, err := load("progs/player.mdl", data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.CRC != crc.Update(data) {
		t.Errorf("CRC = %#x, want %#x", m.CRC, crc.Update(data))
	}
	other, err := load("progs/dog.mdl", data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if other.CRC != 0 {
		t.Error("unchecksummed model got a CRC")
	}
}

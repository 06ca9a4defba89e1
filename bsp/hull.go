// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"log"
	"runtime/debug"

	"qmodel/math/vec"
)

// PointContents walks the clip hull starting at node num and returns
// the contents value of the solid/empty/liquid region containing p.
func (h *Hull) PointContents(num int, p vec.Vec3) int {
	for num >= 0 {
		if num < h.FirstClipNode || num > h.LastClipNode {
			debug.PrintStack()
			log.Fatalf("SV_HullPointContents: bad node number")
		}
		node := h.ClipNodes[num]
		plane := node.Plane
		d := func() float32 {
			if plane.Type < 3 {
				return p[int(plane.Type)] - plane.Dist
			}
			return vec.DoublePrecDot(plane.Normal, p) - plane.Dist
		}()
		if d < 0 {
			num = node.Children[1]
		} else {
			num = node.Children[0]
		}
	}

	return num
}

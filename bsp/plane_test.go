// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import "testing"

func TestBoxOnPlaneSideAxial(t *testing.T) {
	p := &Plane{Normal: vecOf(1, 0, 0), Dist: 0, Type: 0}
	if got := p.BoxOnPlaneSide(vecOf(1, -1, -1), vecOf(2, 1, 1)); got != 1 {
		t.Errorf("box in front = %d, want 1", got)
	}
	if got := p.BoxOnPlaneSide(vecOf(-2, -1, -1), vecOf(-1, 1, 1)); got != 2 {
		t.Errorf("box behind = %d, want 2", got)
	}
	if got := p.BoxOnPlaneSide(vecOf(-1, -1, -1), vecOf(1, 1, 1)); got != 3 {
		t.Errorf("box crossing = %d, want 3", got)
	}
}

func TestBoxOnPlaneSideDiagonal(t *testing.T) {
	n := vecOf(0.7071, 0.7071, 0)
	p := &Plane{Normal: n, Dist: 0, Type: 3}
	if got := p.BoxOnPlaneSide(vecOf(1, 1, -1), vecOf(2, 2, 1)); got != 1 {
		t.Errorf("box in front = %d, want 1", got)
	}
	if got := p.BoxOnPlaneSide(vecOf(-2, -2, -1), vecOf(-1, -1, 1)); got != 2 {
		t.Errorf("box behind = %d, want 2", got)
	}
}

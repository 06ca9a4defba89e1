// SPDX-License-Identifier: GPL-2.0-or-later

package crc

import "testing"

func TestUpdate(t *testing.T) {
	// CRC-16/CCITT-FALSE check value
	got := Update([]byte("123456789"))
	if got != 0x29b1 {
		t.Errorf("Update(123456789) = %#x, want 0x29b1", got)
	}
}

func TestUpdateEmpty(t *testing.T) {
	if got := Update(nil); got != 0xffff {
		t.Errorf("Update(nil) = %#x, want 0xffff", got)
	}
}

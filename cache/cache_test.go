// SPDX-License-Identifier: GPL-2.0-or-later

package cache

import "testing"

func TestCheckAfterAlloc(t *testing.T) {
	c := New(100)
	var u User
	if !c.Alloc(&u, 10, "payload") {
		t.Fatal("Alloc failed")
	}
	if got := c.Check(&u); got != "payload" {
		t.Errorf("Check = %v, want payload", got)
	}
}

func TestEvictionOrder(t *testing.T) {
	c := New(30)
	var u1, u2, u3 User
	c.Alloc(&u1, 10, 1)
	c.Alloc(&u2, 10, 2)
	c.Alloc(&u3, 10, 3)
	// touch u1 so u2 is the least recently used
	if c.Check(&u1) == nil {
		t.Fatal("u1 evicted too early")
	}
	var u4 User
	c.Alloc(&u4, 10, 4)
	if c.Check(&u2) != nil {
		t.Error("u2 should have been evicted")
	}
	if c.Check(&u1) == nil || c.Check(&u3) == nil || c.Check(&u4) == nil {
		t.Error("wrong entry evicted")
	}
}

func TestOversizedAlloc(t *testing.T) {
	c := New(10)
	var u User
	if c.Alloc(&u, 11, "too big") {
		t.Error("Alloc accepted an entry larger than the cache")
	}
	if c.Check(&u) != nil {
		t.Error("oversized entry is resident")
	}
}

func TestFlush(t *testing.T) {
	c := New(0) // unbounded
	var u1, u2 User
	c.Alloc(&u1, 1000, 1)
	c.Alloc(&u2, 1000, 2)
	c.Flush()
	if c.Check(&u1) != nil || c.Check(&u2) != nil {
		t.Error("Flush left entries resident")
	}
	if c.used != 0 {
		t.Errorf("used = %d after Flush", c.used)
	}
}

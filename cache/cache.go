// SPDX-License-Identifier: GPL-2.0-or-later

// Package cache is the content cache backing the bulk data of alias
// models. Entries may be silently evicted when the cache runs out of
// room, the owner is expected to reload on a failed Check.
package cache

import "container/list"

// A User is the caller-embedded handle to one cache entry. Its zero
// value is an empty handle.
type User struct {
	data any
	size int64
	elem *list.Element
}

type Cache struct {
	lru      list.List // of *User, front is most recently used
	capacity int64
	used     int64
}

// New returns a cache holding up to capacity bytes of payload. A zero or
// negative capacity means unbounded.
func New(capacity int64) *Cache {
	c := &Cache{capacity: capacity}
	c.lru.Init()
	return c
}

// Check returns the data held for u, or nil if it was evicted. A hit
// marks u as most recently used.
func (c *Cache) Check(u *User) any {
	if u.elem == nil {
		return nil
	}
	c.lru.MoveToFront(u.elem)
	return u.data
}

// Alloc stores data of the given size for u, evicting least recently
// used entries as needed. It reports whether the data is resident; a
// size larger than the whole cache is refused.
func (c *Cache) Alloc(u *User, size int64, data any) bool {
	if u.elem != nil {
		c.Free(u)
	}
	if c.capacity > 0 {
		if size > c.capacity {
			return false
		}
		for c.used+size > c.capacity {
			c.evict()
		}
	}
	u.data = data
	u.size = size
	u.elem = c.lru.PushFront(u)
	c.used += size
	return true
}

// Free drops the entry held for u.
func (c *Cache) Free(u *User) {
	if u.elem == nil {
		return
	}
	c.lru.Remove(u.elem)
	c.used -= u.size
	u.data = nil
	u.size = 0
	u.elem = nil
}

// Flush drops every entry.
func (c *Cache) Flush() {
	for c.lru.Len() > 0 {
		c.evict()
	}
}

func (c *Cache) evict() {
	back := c.lru.Back()
	if back == nil {
		return
	}
	c.Free(back.Value.(*User))
}

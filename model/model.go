// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"qmodel/math/vec"
)

type ModType int

const (
	ModBrush ModType = iota
	ModSprite
	ModAlias
)

func (t ModType) String() string {
	switch t {
	case ModBrush:
		return "brush"
	case ModSprite:
		return "sprite"
	case ModAlias:
		return "alias"
	}
	return "unknown"
}

// the registry's name table has a fixed capacity
const MaxKnownModels = 512

type Model interface {
	Name() string
	Type() ModType
	Mins() vec.Vec3
	Maxs() vec.Vec3
	Flags() int
}

// Cacheable is implemented by models whose bulk payload belongs in the
// registry's content cache (alias models). TakeCacheData hands the
// freshly loaded payload and its approximate byte size to the registry;
// the model keeps no reference of its own afterwards.
type Cacheable interface {
	Model
	TakeCacheData() (any, int64)
}

// PayloadOwner is implemented by models that keep their payload outside
// the content cache (sprites reuse the cache-data slot for their own
// purposes). DropCacheData releases that payload.
type PayloadOwner interface {
	Model
	DropCacheData()
}

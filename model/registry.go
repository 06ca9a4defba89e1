// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"qmodel/cache"
	"qmodel/filesystem"
)

// ErrNotFound is returned by ForName when the named file does not exist
// and the caller tolerates absence. Every other error out of the
// registry is a structural failure the caller is expected to treat as
// fatal.
var ErrNotFound = errors.New("model not found")

// IsFatal reports whether err aborts the whole loading operation.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNotFound)
}

type entry struct {
	name     string
	needLoad bool
	mod      Model
	user     cache.User
}

// Registry is the name keyed model table. Loading is strictly one model
// at a time; the registry is not safe for concurrent use.
type Registry struct {
	known []*entry
	cache *cache.Cache
	world string
}

// NewRegistry returns a registry whose content cache holds up to
// cacheSize bytes of alias model data. Zero means unbounded.
func NewRegistry(cacheSize int64) *Registry {
	return &Registry{
		cache: cache.New(cacheSize),
	}
}

// SetWorld names the currently active top level map. Brush models other
// than the world get their surfaces marked to not warp.
func (r *Registry) SetWorld(name string) {
	r.world = name
}

func (r *Registry) findName(name string) (*entry, error) {
	if name == "" {
		return nil, errors.New("Mod_FindName: empty name")
	}
	for _, e := range r.known {
		if e.name == name {
			return e, nil
		}
	}
	if len(r.known) == MaxKnownModels {
		return nil, errors.New("Mod_FindName: registry full")
	}
	e := &entry{name: name, needLoad: true}
	r.known = append(r.known, e)
	return e, nil
}

// ForName returns the model with the given name, loading it if needed.
// With crash=false a missing file yields ErrNotFound; any other failure
// is fatal.
func (r *Registry) ForName(name string, crash bool) (Model, error) {
	e, err := r.findName(name)
	if err != nil {
		return nil, err
	}
	return r.loadModel(e, crash)
}

func (r *Registry) loadModel(e *entry, crash bool) (Model, error) {
	if !e.needLoad {
		if e.mod != nil && e.mod.Type() == ModAlias {
			if r.cache.Check(&e.user) != nil {
				return e.mod, nil
			}
		} else {
			// not cached at all
			return e.mod, nil
		}
	}

	data, err := filesystem.ReadFile(e.name)
	if err != nil {
		if crash {
			return nil, errors.Errorf("Mod_LoadModel: %s not found", e.name)
		}
		return nil, ErrNotFound
	}
	if len(data) < 4 {
		return nil, errors.Errorf("Mod_LoadModel: %s is truncated", e.name)
	}

	var mods []Model
	if f, ok := loaders[binary.LittleEndian.Uint32(data)]; ok {
		mods, err = f(e.name, data)
	} else if brushLoader != nil {
		mods, err = brushLoader(e.name, data, e.name == r.world)
	} else {
		err = errors.New("no brush loader registered")
	}
	if err != nil {
		return nil, errors.Wrap(err, e.name)
	}
	if len(mods) == 0 {
		return nil, errors.Errorf("Mod_LoadModel: %s produced no model", e.name)
	}

	// the first model belongs to this entry, any others are inline
	// submodels registered under their own synthetic names
	r.install(e, mods[0])
	for _, m := range mods[1:] {
		se, err := r.findName(m.Name())
		if err != nil {
			return nil, err
		}
		r.install(se, m)
	}
	return e.mod, nil
}

func (r *Registry) install(e *entry, m Model) {
	e.mod = m
	e.needLoad = false
	if cm, ok := m.(Cacheable); ok {
		data, size := cm.TakeCacheData()
		if data != nil {
			// an allocation failure is not fatal, the model is
			// simply not resident until a later access retries
			r.cache.Alloc(&e.user, size, data)
		}
	}
}

// Touch keeps an already known alias model warm in the cache without
// forcing a reload.
func (r *Registry) Touch(name string) {
	e, err := r.findName(name)
	if err != nil || e.needLoad {
		return
	}
	if e.mod != nil && e.mod.Type() == ModAlias {
		r.cache.Check(&e.user)
	}
}

// ClearAll marks every non alias model for reload. Their storage is
// tied to the level lifetime and gone after a transition. Sprites keep
// their payload outside the cache machinery and have it dropped
// explicitly.
func (r *Registry) ClearAll() {
	for _, e := range r.known {
		if e.mod == nil || e.mod.Type() != ModAlias {
			e.needLoad = true
		}
		if e.mod != nil && e.mod.Type() == ModSprite {
			if o, ok := e.mod.(PayloadOwner); ok {
				o.DropCacheData()
			}
		}
	}
}

// ExtraData returns the cached payload of m, reloading it first if it
// was evicted. A load that completes without producing resident data is
// a fatal internal error.
func (r *Registry) ExtraData(m Model) (any, error) {
	e, err := r.findName(m.Name())
	if err != nil {
		return nil, err
	}
	if d := r.cache.Check(&e.user); d != nil {
		return d, nil
	}
	if _, err := r.loadModel(e, true); err != nil {
		return nil, err
	}
	if d := r.cache.Check(&e.user); d != nil {
		return d, nil
	}
	return nil, errors.Errorf("Mod_Extradata: caching failed for %s", e.name)
}

// Print lists all known models, resident alias models marked with a
// star.
func (r *Registry) Print() string {
	var b strings.Builder
	b.WriteString("Cached models:\n")
	for _, e := range r.known {
		resident := ' '
		if r.cache.Check(&e.user) != nil {
			resident = '*'
		}
		fmt.Fprintf(&b, "%c %s\n", resident, e.name)
	}
	return b.String()
}

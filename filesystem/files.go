// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"qmodel/pack"
)

// A File is what the loaders need from an opened game file.
type File interface {
	io.ReadSeekCloser
	io.ReaderAt
}

type searchPath interface {
	open(name string) (File, error)
	String() string
}

var (
	mutex sync.RWMutex
	// later entries are searched first, pak files before loose files
	paths []searchPath
)

type dirPath string

func (d dirPath) open(name string) (File, error) {
	f, err := os.Open(filepath.Join(string(d), filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func (d dirPath) String() string {
	return string(d)
}

type packPath struct {
	p *pack.Pack
}

type sectionCloser struct {
	*io.SectionReader
}

func (*sectionCloser) Close() error {
	return nil
}

func (p packPath) open(name string) (File, error) {
	// inside a pack file there is no 'root', all names are relative
	f, err := p.p.Open(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, err
	}
	return &sectionCloser{f}, nil
}

func (p packPath) String() string {
	return p.p.String()
}

// AddGameDir appends dir to the search order. Within dir the numbered
// pak files take precedence over loose files, and dirs added later take
// precedence over dirs added earlier.
func AddGameDir(dir string) {
	mutex.Lock()
	defer mutex.Unlock()
	paths = append(paths, dirPath(dir))
	for i := 0; ; i++ {
		pfp := filepath.Join(dir, fmt.Sprintf("pak%d.pak", i))
		p, err := pack.NewPackReader(pfp)
		if err != nil {
			break
		}
		paths = append(paths, packPath{p})
	}
}

// Reset drops all search paths. Open pak files are closed.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	for _, sp := range paths {
		if pp, ok := sp.(packPath); ok {
			pp.p.Close()
		}
	}
	paths = nil
}

// Open returns the file with the given game path from the search path
// added last that contains it.
func Open(name string) (File, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	for i := len(paths) - 1; i >= 0; i-- {
		if f, err := paths[i].open(name); err == nil {
			return f, nil
		}
	}
	return nil, os.ErrNotExist
}

func ReadFile(name string) ([]byte, error) {
	file, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}

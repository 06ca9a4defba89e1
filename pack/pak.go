// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

var packMagic = [4]byte{'P', 'A', 'C', 'K'}

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

// each directory entry is 64 bytes on disk
type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

type qfile struct {
	offset int64
	size   int64
}

type Pack struct {
	f     *os.File
	files map[string]*qfile
	name  string
}

// Open returns an io.SectionReader for the pak entry with the provided
// name, or os.ErrNotExist if the pak has no such entry.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NewSectionReader(p.f, q.offset, q.size), nil
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	return p.f.Close()
}

func (p *Pack) init() error {
	var h header
	if err := binary.Read(p.f, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "pack header")
	}
	if h.ID != packMagic {
		return errors.New("not a pack file")
	}
	if _, err := p.f.Seek(int64(h.Offset), io.SeekStart); err != nil {
		return errors.Wrap(err, "pack directory")
	}
	filenum := h.Size / 64
	p.files = make(map[string]*qfile, filenum)
	for i := int32(0); i < filenum; i++ {
		var e entry
		if err := binary.Read(p.f, binary.LittleEndian, &e); err != nil {
			return errors.Wrapf(err, "pack entry %d", i)
		}
		n := bytes.IndexByte(e.Name[:], 0)
		if n < 0 {
			n = len(e.Name)
		}
		name := string(e.Name[:n])
		if p.files[name] != nil {
			return errors.Errorf("duplicate pack entry %q", name)
		}
		p.files[name] = &qfile{
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
	}
	return nil
}

func NewPackReader(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	p := &Pack{f: f, name: name}
	if err := p.init(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

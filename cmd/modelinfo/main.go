// SPDX-License-Identifier: GPL-2.0-or-later

// modelinfo loads a model from the game data and dumps what the engine
// would see. Mostly useful to inspect maps and mdl files outside the
// game.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"

	"qmodel/bsp"
	"qmodel/filesystem"
	"qmodel/model"
	"qmodel/palette"

	// register the remaining model loaders
	_ "qmodel/mdl"
	_ "qmodel/spr"
)

var (
	baseDir  = flag.String("basedir", ".", "game data directory, searched for pak files too")
	gameDir  = flag.String("game", "", "additional mod directory inside basedir")
	world    = flag.Bool("world", false, "treat a brush model as the active world")
	dump     = flag.Bool("dump", false, "spew the full in-memory structures")
	cacheMax = flag.Int64("cachesize", 0, "content cache limit in bytes, 0 means unbounded")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: modelinfo [flags] <name>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	name := flag.Arg(0)

	filesystem.AddGameDir(*baseDir)
	if *gameDir != "" {
		filesystem.AddGameDir(*gameDir)
	}
	if err := palette.Init(); err != nil {
		log.Printf("no palette: %v", err)
	}

	r := model.NewRegistry(*cacheMax)
	if *world {
		r.SetWorld(name)
	}
	m, err := r.ForName(name, true)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("%s\n", m.Name())
	fmt.Printf("  type:   %v\n", m.Type())
	fmt.Printf("  bounds: %v %v\n", m.Mins(), m.Maxs())
	fmt.Printf("  flags:  %#x\n", m.Flags())
	if b, ok := m.(*bsp.Model); ok {
		fmt.Printf("  submodels: %d  leafs: %d  nodes: %d  surfaces: %d  textures: %d\n",
			len(b.Submodels), len(b.Leafs), len(b.Nodes), len(b.Surfaces), len(b.Textures))
		fmt.Printf("  visleafs: %d  entities: %d\n", b.VisLeafCount, len(b.Entities))
	}
	if m.Type() == model.ModAlias {
		d, err := r.ExtraData(m)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if *dump {
			spew.Dump(d)
		}
	} else if *dump {
		spew.Dump(m)
	}
	fmt.Print(r.Print())
}

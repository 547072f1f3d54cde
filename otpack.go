/*
Package otpack compiles OpenType font tables.

Font tables are graphs of variable-length binary records, cross-referenced
by fixed-width forward offsets. Clients describe a table as a tree of
builders; otpack serializes the tree bottom-up, shares structurally
identical subtables, finds an emission order in which every offset fits its
declared width, and returns the packed bytes. The heavy lifting lives in
package pack; package coverage contributes the subtable splitting adapter
for coverage-keyed tables.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otpack

import (
	"github.com/npillmayer/otpack/coverage"
	"github.com/npillmayer/otpack/pack"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otpack'
func tracer() tracing.Trace {
	return tracing.Select("otpack")
}

// Compile serializes the table tree rooted at root, packs it, and returns
// the final byte stream. The coverage splitting adapter is pre-registered;
// further adapters can be registered through CompileGraph.
//
// A nil cfg selects the default packing configuration.
func Compile(root pack.Builder, cfg *pack.Config) ([]byte, error) {
	g := pack.MakeGraph(root)
	coverage.Register(g)
	return CompileGraph(g, cfg)
}

// CompileGraph packs an already-built graph. Use this instead of Compile
// when adapters or manual graph edits are needed between building and
// packing.
func CompileGraph(g *pack.Graph, cfg *pack.Config) ([]byte, error) {
	tracer().Infof("packing %d objects", g.Len())
	data, err := g.Pack(cfg)
	if err != nil {
		tracer().Errorf("packing failed: %v", err)
		return nil, err
	}
	tracer().Infof("packed %d objects into %d bytes", g.Len(), len(data))
	return data, nil
}

/*
Package pack serializes a graph of interlinked font tables into a single
contiguous byte stream in which every cross-reference is a fixed-width,
big-endian, unsigned forward offset (16, 24 or 32 bits).

Clients build a tree of tables bottom-up through a [Writer]; structurally
identical subtables are interned once and shared. The resulting [Graph] is
then packed: objects are brought into an emission order in which every
object follows all objects that reference it, so that each offset is a
positive forward distance. When no order makes every offset fit its declared
width, the packer rewrites the graph until it packs or the iteration budget
runs out. Rewriting may promote subtables behind extension wrappers with
wide offsets, duplicate shared subtables, split subtables that support it,
and move subgraphs into independent 32-bit address spaces.

The packing strategy follows the HarfBuzz repacker
(https://github.com/harfbuzz/harfbuzz/blob/main/docs/repacker.md).

Packing a graph is synchronous and owns the graph exclusively for its
duration. Independent graphs may be packed from independent goroutines
without further synchronization.

# Status

Splitting and promotion are driven by capability interfaces ([Splitter],
[Container], [Promoter]) registered per table kind; package coverage
provides the coverage-table splitting adapter.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package pack

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otpack.pack'
func tracer() tracing.Trace {
	return tracing.Select("otpack.pack")
}

// errPacking produces user level errors for table packing.
func errPacking(message string) error {
	return fmt.Errorf("table packing: %s", message)
}

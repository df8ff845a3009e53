// Package topology dumps a Graphviz object-graph of a constructed
// MemorySystem (channels, bank tables, scheduler queues) by walking its
// struct graph, for sanity-checking a configuration's channel/rank/bank
// fan-out without running a trace. No effect on simulation semantics.
package topology

import (
	"io"

	"github.com/bradleyjkemp/memviz"
)

// Dump writes a Graphviz .dot object-graph of v to w. v is typically a
// *dramsim.MemorySystem, but Dump works on any Go value by walking its
// memory layout, matching memviz's own usage pattern.
func Dump(w io.Writer, v interface{}) {
	memviz.Map(w, v)
}

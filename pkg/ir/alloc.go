// Package ir builds augur's intermediate representation: per-callable
// control-flow graphs, a whole-program call graph with inferred effects,
// and the compilation unit aggregating them with the AST store and the
// import graph.
package ir

// Allocator hands out ids for every IR entity category. One allocator is
// created per construction session and threaded through the builders, so
// ids never leak between runs or tests.
type Allocator struct {
	cfg    uint32
	block  uint32
	edge   uint32
	cgNode uint32
	cgEdge uint32
}

// NewAllocator returns a fresh allocator with all counters at zero.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NextCfgID reserves a CFG id. Exposed because CFG ids must exist before
// their graphs: call classification resolves callees against ids of
// graphs not yet built.
func (a *Allocator) NextCfgID() CfgID {
	id := CfgID(a.cfg)
	a.cfg++
	return id
}

func (a *Allocator) nextBlock() BlockID {
	id := BlockID(a.block)
	a.block++
	return id
}

func (a *Allocator) nextEdge() EdgeID {
	id := EdgeID(a.edge)
	a.edge++
	return id
}

func (a *Allocator) nextCGNode() CGNodeID {
	id := CGNodeID(a.cgNode)
	a.cgNode++
	return id
}

func (a *Allocator) nextCGEdge() CGEdgeID {
	id := CGEdgeID(a.cgEdge)
	a.cgEdge++
	return id
}

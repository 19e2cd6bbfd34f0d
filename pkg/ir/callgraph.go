package ir

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/diag"
)

// CGNodeID identifies a call-graph node.
type CGNodeID uint32

// CGEdgeID identifies a call-graph edge.
type CGEdgeID uint32

// Effect is a coarse side-effect category inferred per callable, stored
// as a bitmask and OR-accumulated across all its statements.
type Effect uint16

const (
	EffectStateRead Effect = 1 << iota
	EffectStateWrite
	EffectSend
	EffectAccessDatetime
	EffectPrgSeedInit
	EffectPrgUse
)

// Has reports whether every flag in f is set.
func (e Effect) Has(f Effect) bool { return e&f == f }

func (e Effect) String() string {
	names := []struct {
		flag Effect
		name string
	}{
		{EffectStateRead, "stateRead"},
		{EffectStateWrite, "stateWrite"},
		{EffectSend, "send"},
		{EffectAccessDatetime, "accessDatetime"},
		{EffectPrgSeedInit, "prgSeedInit"},
		{EffectPrgUse, "prgUse"},
	}
	out := ""
	for _, n := range names {
		if e.Has(n.flag) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "none"
	}
	return out
}

// CGNodeKind separates nodes backed by a project declaration from
// synthetic nodes created for calls to names the project never declares.
type CGNodeKind uint8

const (
	CGDeclared CGNodeKind = iota
	CGExternal
)

// CGNode is one callable in the call graph, keyed by qualified name
// (`Contract::member` for members, the bare name for free functions,
// synthesized names for constructors and receivers).
type CGNode struct {
	ID   CGNodeID
	Kind CGNodeKind
	Name string

	decl ast.NodeID // meaningful only for CGDeclared

	Effects Effect
	Reads   map[string]struct{} // self fields read
	Writes  map[string]struct{} // self fields written

	In  *roaring.Bitmap // incoming edge ids
	Out *roaring.Bitmap // outgoing edge ids
}

// DeclID returns the backing declaration id. The second result is false
// for external nodes, which have no declaration.
func (n *CGNode) DeclID() (ast.NodeID, bool) {
	if n.Kind != CGDeclared {
		return 0, false
	}
	return n.decl, true
}

// CGEdge is one logical call edge. Repeated calls from the same caller
// to the same callee share the edge; each call site appends its source
// location to Sites, preserving multiplicity without duplicating edges.
type CGEdge struct {
	ID    CGEdgeID
	Src   CGNodeID
	Dst   CGNodeID
	Sites []ast.Location
}

// CallGraph is the whole-program call graph of one compilation unit.
type CallGraph struct {
	alloc *Allocator

	nodes  []*CGNode
	edges  []*CGEdge
	byID   map[CGNodeID]*CGNode
	byName map[string]CGNodeID
	byDecl map[ast.NodeID]CGNodeID
	pair   map[[2]CGNodeID]*CGEdge
	edgeID map[CGEdgeID]*CGEdge
}

func newCallGraph(alloc *Allocator) *CallGraph {
	return &CallGraph{
		alloc:  alloc,
		byID:   make(map[CGNodeID]*CGNode),
		byName: make(map[string]CGNodeID),
		byDecl: make(map[ast.NodeID]CGNodeID),
		pair:   make(map[[2]CGNodeID]*CGEdge),
		edgeID: make(map[CGEdgeID]*CGEdge),
	}
}

// Nodes returns all nodes in creation order.
func (g *CallGraph) Nodes() []*CGNode { return g.nodes }

// Edges returns all logical edges in creation order.
func (g *CallGraph) Edges() []*CGEdge { return g.edges }

// Node resolves a node id; absence is an internal-consistency violation.
func (g *CallGraph) Node(id CGNodeID) (*CGNode, error) {
	if n, ok := g.byID[id]; ok {
		return n, nil
	}
	return nil, diag.Violationf("call graph node not found").With("node", id)
}

// Edge resolves an edge id.
func (g *CallGraph) Edge(id CGEdgeID) (*CGEdge, error) {
	if e, ok := g.edgeID[id]; ok {
		return e, nil
	}
	return nil, diag.Violationf("call graph edge not found").With("edge", id)
}

// NodeByName looks a node up by qualified name.
func (g *CallGraph) NodeByName(name string) (*CGNode, bool) {
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.byID[id], true
}

// NodeByDecl looks a declared node up by its source declaration id.
func (g *CallGraph) NodeByDecl(decl ast.NodeID) (*CGNode, bool) {
	id, ok := g.byDecl[decl]
	if !ok {
		return nil, false
	}
	return g.byID[id], true
}

func (g *CallGraph) addDeclared(name string, decl ast.NodeID) *CGNode {
	if id, ok := g.byName[name]; ok {
		// A synthetic node may predate the declaration when a call to
		// the name was walked first; promote it in place.
		n := g.byID[id]
		n.Kind = CGDeclared
		n.decl = decl
		g.byDecl[decl] = id
		return n
	}
	n := g.newNode(CGDeclared, name)
	n.decl = decl
	g.byDecl[decl] = n.ID
	return n
}

// FindOrAddNode returns the node for a qualified name, creating a
// synthetic external node on first reference. Calling it twice with the
// same name yields the same node.
func (g *CallGraph) FindOrAddNode(name string) *CGNode {
	if id, ok := g.byName[name]; ok {
		return g.byID[id]
	}
	return g.newNode(CGExternal, name)
}

func (g *CallGraph) newNode(kind CGNodeKind, name string) *CGNode {
	n := &CGNode{
		ID:     g.alloc.nextCGNode(),
		Kind:   kind,
		Name:   name,
		Reads:  make(map[string]struct{}),
		Writes: make(map[string]struct{}),
		In:     roaring.New(),
		Out:    roaring.New(),
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	g.byName[name] = n.ID
	return n
}

func (g *CallGraph) addCall(src, dst *CGNode, site ast.Location) {
	key := [2]CGNodeID{src.ID, dst.ID}
	if e, ok := g.pair[key]; ok {
		e.Sites = append(e.Sites, site)
		return
	}
	e := &CGEdge{ID: g.alloc.nextCGEdge(), Src: src.ID, Dst: dst.ID, Sites: []ast.Location{site}}
	g.edges = append(g.edges, e)
	g.pair[key] = e
	g.edgeID[e.ID] = e
	src.Out.Add(uint32(e.ID))
	dst.In.Add(uint32(e.ID))
}

// Reachable reports whether dst can be reached from src over out-edges,
// by breadth-first search. A node reaches itself.
func (g *CallGraph) Reachable(src, dst CGNodeID) (bool, error) {
	if _, err := g.Node(src); err != nil {
		return false, err
	}
	if _, err := g.Node(dst); err != nil {
		return false, err
	}
	if src == dst {
		return true, nil
	}
	visited := roaring.New()
	visited.Add(uint32(src))
	queue := []CGNodeID{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		node := g.byID[cur]
		it := node.Out.Iterator()
		for it.HasNext() {
			e := g.edgeID[CGEdgeID(it.Next())]
			if e.Dst == dst {
				return true, nil
			}
			if !visited.Contains(uint32(e.Dst)) {
				visited.Add(uint32(e.Dst))
				queue = append(queue, e.Dst)
			}
		}
	}
	return false, nil
}

// QualifiedName renders a member name in `Contract::member` form.
func QualifiedName(owner, member string) string {
	return owner + "::" + member
}

// initName synthesizes a call-graph name for a constructor.
func initName(contract string) string {
	return QualifiedName(contract, "init")
}

// receiverName synthesizes a call-graph name for a receiver, which has
// no source identifier. The message name disambiguates typed receivers;
// the node id disambiguates the rest.
func receiverName(contract string, r *ast.Receiver) string {
	if r.Message != "" {
		return QualifiedName(contract, fmt.Sprintf("receive_%s_%s", r.Kind, r.Message))
	}
	return QualifiedName(contract, fmt.Sprintf("receive_%s_%d", r.Kind, r.ID))
}

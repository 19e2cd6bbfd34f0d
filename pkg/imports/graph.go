// Package imports builds the file-level dependency graph of a project.
// Only import directives are parsed — a line scan, never a full AST — so
// the graph is cheap to build even for projects whose sources fail to
// compile.
package imports

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/diag"
)

// NodeID identifies a file node in the import graph.
type NodeID uint32

// EdgeID identifies an import edge.
type EdgeID uint32

// Language tags the source language of a file.
type Language uint8

const (
	// LangArc is the primary contract language.
	LangArc Language = iota
	// LangAsm is the secondary low-level assembly language.
	LangAsm
)

func (l Language) String() string {
	if l == LangAsm {
		return "asm"
	}
	return "arc"
}

// Node is one reachable file. HasContract is a keyword-scan heuristic,
// not a parse result.
type Node struct {
	ID          NodeID
	Path        string // absolute
	Lang        Language
	Origin      ast.Origin
	HasContract bool
}

// Edge records that Src imports Dst, with the directive's location.
type Edge struct {
	ID  EdgeID
	Src NodeID
	Dst NodeID
	Loc ast.Location
}

// Graph is the project's file dependency graph. A node exists at most
// once per absolute path, which bounds traversal even under import
// cycles.
type Graph struct {
	nodes  []*Node
	edges  []*Edge
	byID   map[NodeID]*Node
	byPath map[string]NodeID
	out    map[NodeID][]*Edge
	in     map[NodeID][]*Edge
}

func newGraph() *Graph {
	return &Graph{
		byID:   make(map[NodeID]*Node),
		byPath: make(map[string]NodeID),
		out:    make(map[NodeID][]*Edge),
		in:     make(map[NodeID][]*Edge),
	}
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*Edge { return g.edges }

// Node resolves a node id; a dangling id is a builder bug.
func (g *Graph) Node(id NodeID) (*Node, error) {
	if n, ok := g.byID[id]; ok {
		return n, nil
	}
	return nil, diag.Violationf("import graph node not found").With("node", id)
}

// NodeByPath looks a file up by absolute path.
func (g *Graph) NodeByPath(path string) (*Node, bool) {
	id, ok := g.byPath[path]
	if !ok {
		return nil, false
	}
	return g.byID[id], true
}

// EdgeBetween returns the direct edge from src to dst, if one exists.
func (g *Graph) EdgeBetween(src, dst NodeID) (*Edge, bool) {
	for _, e := range g.out[src] {
		if e.Dst == dst {
			return e, true
		}
	}
	return nil, false
}

// Imports returns the transitive imports of start in BFS order,
// excluding start itself. Diamonds and cycles are visited once.
func (g *Graph) Imports(start NodeID) ([]*Node, error) {
	return g.bfs(start, g.out, func(e *Edge) NodeID { return e.Dst })
}

// Importers returns the transitive importers of start in BFS order,
// excluding start itself.
func (g *Graph) Importers(start NodeID) ([]*Node, error) {
	return g.bfs(start, g.in, func(e *Edge) NodeID { return e.Src })
}

func (g *Graph) bfs(start NodeID, adj map[NodeID][]*Edge, next func(*Edge) NodeID) ([]*Node, error) {
	if _, err := g.Node(start); err != nil {
		return nil, err
	}
	visited := roaring.New()
	visited.Add(uint32(start))
	queue := []NodeID{start}
	var out []*Node
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			n := next(e)
			if visited.Contains(uint32(n)) {
				continue
			}
			visited.Add(uint32(n))
			out = append(out, g.byID[n])
			queue = append(queue, n)
		}
	}
	return out, nil
}

func (g *Graph) addNode(n *Node) {
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	g.byPath[n.Path] = n.ID
}

func (g *Graph) addEdge(e *Edge) {
	g.edges = append(g.edges, e)
	g.out[e.Src] = append(g.out[e.Src], e)
	g.in[e.Dst] = append(g.in[e.Dst], e)
}

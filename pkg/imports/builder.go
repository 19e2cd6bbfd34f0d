package imports

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/augurlint/augur/pkg/ast"
)

// StdlibAlias is the import prefix resolved into the standard library
// root instead of the importing file's directory.
const StdlibAlias = "@stdlib/"

var (
	arcImportRe = regexp.MustCompile(`^\s*import\s+"([^"]+)"`)
	asmImportRe = regexp.MustCompile(`^\s*#include\s+"([^"]+)"`)
)

// Builder expands project entry points into an import graph.
type Builder struct {
	stdlibRoot string
	onFile     func(path string)
}

// Option configures a Builder.
type Option func(*Builder)

// WithStdlibRoot sets the directory `@stdlib/…` imports resolve into.
func WithStdlibRoot(dir string) Option {
	return func(b *Builder) { b.stdlibRoot = dir }
}

// WithFileCallback registers a callback invoked once per visited file,
// before it is read. Used for progress reporting.
func WithFileCallback(fn func(path string)) Option {
	return func(b *Builder) { b.onFile = fn }
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type buildState struct {
	graph *Graph
	nextN NodeID
	nextE EdgeID
}

// Build reads each entry point and recurses into every unvisited
// resolved import. Visited-path memoization guarantees one node per
// absolute path and termination under diamonds and cycles. An unreadable
// file is an execution error: a bad project layout, not an engine bug.
func (b *Builder) Build(entrypoints ...string) (*Graph, error) {
	st := &buildState{graph: newGraph()}
	for _, entry := range entrypoints {
		if _, err := b.visit(st, entry); err != nil {
			return nil, err
		}
	}
	return st.graph, nil
}

func (b *Builder) visit(st *buildState, path string) (NodeID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", path, err)
	}
	if id, ok := st.graph.byPath[abs]; ok {
		return id, nil
	}
	if b.onFile != nil {
		b.onFile(abs)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return 0, fmt.Errorf("reading import %s: %w", abs, err)
	}

	lang := LangArc
	if strings.HasSuffix(abs, ".asm") {
		lang = LangAsm
	}
	node := &Node{
		ID:          st.nextN,
		Path:        abs,
		Lang:        lang,
		Origin:      b.originOf(abs),
		HasContract: lang == LangArc && strings.Contains(string(content), "contract "),
	}
	st.nextN++
	// Register before recursing so cycles terminate.
	st.graph.addNode(node)

	re := arcImportRe
	if lang == LangAsm {
		re = asmImportRe
	}
	for i, line := range strings.Split(string(content), "\n") {
		m := re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		target := line[m[2]:m[3]]
		resolved := b.resolve(target, filepath.Dir(abs))
		dst, err := b.visit(st, resolved)
		if err != nil {
			return 0, err
		}
		e := &Edge{
			ID:  st.nextE,
			Src: node.ID,
			Dst: dst,
			Loc: ast.Location{File: abs, Line: i + 1, Col: m[2] + 1},
		}
		st.nextE++
		st.graph.addEdge(e)
	}
	return node.ID, nil
}

// resolve turns an import target into a path: stdlib aliases land under
// the stdlib root, everything else is relative to the importing file.
// Extension-less arc imports get ".arc" appended.
func (b *Builder) resolve(target, fromDir string) string {
	var path string
	if rest, ok := strings.CutPrefix(target, StdlibAlias); ok {
		path = filepath.Join(b.stdlibRoot, rest)
	} else {
		path = filepath.Join(fromDir, target)
	}
	if filepath.Ext(path) == "" {
		path += ".arc"
	}
	return path
}

func (b *Builder) originOf(abs string) ast.Origin {
	if b.stdlibRoot == "" {
		return ast.OriginUser
	}
	root, err := filepath.Abs(b.stdlibRoot)
	if err != nil {
		return ast.OriginUser
	}
	if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return ast.OriginStdlib
	}
	return ast.OriginUser
}

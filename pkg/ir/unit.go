package ir

import (
	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/imports"
)

// ContractCfgs groups the method CFGs of one contract or trait.
type ContractCfgs struct {
	Name    string
	Decl    ast.NodeID
	Methods map[CfgID]*Cfg
}

// CompilationUnit is the full IR for one analyzed project: AST store,
// import graph, call graph, and the CFGs of free functions and of every
// contract/trait member. It is frozen at construction and shared by all
// detector tasks without synchronization.
type CompilationUnit struct {
	Project     string
	Fingerprint string // BLAKE3 digest of the front-end dump, hex
	Revision    string // VCS revision of the project, may be empty

	AST       *ast.Store
	Imports   *imports.Graph
	CallGraph *CallGraph
	Functions map[CfgID]*Cfg
	Contracts map[ast.NodeID]*ContractCfgs

	byCfgID   map[CfgID]*Cfg
	byMember  map[[2]string]CfgID // (contract, method) -> cfg
	byCfgDecl map[ast.NodeID]*Cfg
}

func (cu *CompilationUnit) freeze() {
	cu.byCfgID = make(map[CfgID]*Cfg)
	cu.byMember = make(map[[2]string]CfgID)
	cu.byCfgDecl = make(map[ast.NodeID]*Cfg)
	for id, c := range cu.Functions {
		cu.byCfgID[id] = c
		cu.byCfgDecl[c.Decl] = c
	}
	for _, cc := range cu.Contracts {
		for id, c := range cc.Methods {
			cu.byCfgID[id] = c
			cu.byCfgDecl[c.Decl] = c
			cu.byMember[[2]string{cc.Name, c.Name}] = id
		}
	}
}

// IterOptions controls CFG iteration.
type IterOptions struct {
	IncludeStdlib bool
}

// IterOption configures iteration.
type IterOption func(*IterOptions)

// WithStdlibCfgs includes standard-library CFGs, skipped by default.
func WithStdlibCfgs() IterOption {
	return func(o *IterOptions) { o.IncludeStdlib = true }
}

// ForEachCfg visits free-function CFGs and all contract/trait method
// CFGs uniformly.
func (cu *CompilationUnit) ForEachCfg(fn func(*Cfg), opts ...IterOption) {
	var o IterOptions
	for _, opt := range opts {
		opt(&o)
	}
	visit := func(c *Cfg) {
		if !o.IncludeStdlib && c.Origin == ast.OriginStdlib {
			return
		}
		fn(c)
	}
	for _, c := range cu.Functions {
		visit(c)
	}
	for _, cc := range cu.Contracts {
		for _, c := range cc.Methods {
			visit(c)
		}
	}
}

// ForEachBasicBlock visits every basic block of every CFG.
func (cu *CompilationUnit) ForEachBasicBlock(fn func(*Cfg, *BasicBlock), opts ...IterOption) {
	cu.ForEachCfg(func(c *Cfg) {
		for _, b := range c.Blocks {
			fn(c, b)
		}
	}, opts...)
}

// FoldCfgs folds fn over the unit's CFGs, free functions and members
// alike. Declared as a free function; methods cannot have type
// parameters.
func FoldCfgs[T any](cu *CompilationUnit, init T, fn func(T, *Cfg) T, opts ...IterOption) T {
	acc := init
	cu.ForEachCfg(func(c *Cfg) {
		acc = fn(acc, c)
	}, opts...)
	return acc
}

// CfgByID resolves a CFG by numeric id across functions and members.
func (cu *CompilationUnit) CfgByID(id CfgID) (*Cfg, bool) {
	c, ok := cu.byCfgID[id]
	return c, ok
}

// CfgByDecl resolves a CFG by its backing declaration id.
func (cu *CompilationUnit) CfgByDecl(decl ast.NodeID) (*Cfg, bool) {
	c, ok := cu.byCfgDecl[decl]
	return c, ok
}

// MethodCfg resolves a member CFG by (contract, method) name pair.
func (cu *CompilationUnit) MethodCfg(contract, method string) (*Cfg, bool) {
	id, ok := cu.byMember[[2]string{contract, method}]
	if !ok {
		return nil, false
	}
	return cu.byCfgID[id], true
}

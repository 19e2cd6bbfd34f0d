package ir

import (
	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/imports"
)

// BuildOptions carries the inputs assembled outside the IR session.
type BuildOptions struct {
	Fingerprint string
	Revision    string
	Imports     *imports.Graph
}

// Build runs one IR-construction session over a project's AST store and
// returns the frozen compilation unit. Construction either fully
// succeeds or fails with a violation; there is no partial IR.
func Build(project string, store *ast.Store, opts BuildOptions) (*CompilationUnit, error) {
	alloc := NewAllocator()
	cu := &CompilationUnit{
		Project:     project,
		Fingerprint: opts.Fingerprint,
		Revision:    opts.Revision,
		AST:         store,
		Imports:     opts.Imports,
		Functions:   make(map[CfgID]*Cfg),
		Contracts:   make(map[ast.NodeID]*ContractCfgs),
	}

	type planned struct {
		info     CfgInfo
		body     []ast.Stmt
		owner    ast.NodeID
		isMember bool
	}
	var plans []planned
	freeByName := make(map[string]CfgID)
	declToCfg := make(map[ast.NodeID]CfgID)

	plan := func(info CfgInfo, body []ast.Stmt, owner ast.NodeID, isMember bool) {
		info.ID = alloc.NextCfgID()
		declToCfg[info.Decl] = info.ID
		plans = append(plans, planned{info: info, body: body, owner: owner, isMember: isMember})
	}

	// Reserve every CFG id before building any graph, so the call
	// classifier can resolve forward references.
	for _, d := range store.Decls(ast.WithStdlib()) {
		switch decl := d.(type) {
		case *ast.Function:
			info := CfgInfo{Name: decl.Name, Decl: decl.ID, Kind: CfgFunction, Origin: decl.Origin}
			plan(info, decl.Body, 0, false)
			freeByName[decl.Name] = declToCfg[decl.ID]
		case *ast.Contract:
			cu.Contracts[decl.ID] = &ContractCfgs{Name: decl.Name, Decl: decl.ID, Methods: make(map[CfgID]*Cfg)}
			for _, m := range decl.Methods {
				plan(CfgInfo{Name: m.Name, Decl: m.ID, Kind: CfgMethod, Origin: decl.Origin}, m.Body, decl.ID, true)
			}
			if decl.Init != nil {
				plan(CfgInfo{Name: "init", Decl: decl.Init.ID, Kind: CfgMethod, Origin: decl.Origin}, decl.Init.Body, decl.ID, true)
			}
			for _, r := range decl.Receivers {
				plan(CfgInfo{Name: receiverName(decl.Name, r), Decl: r.ID, Kind: CfgReceive, Origin: decl.Origin}, r.Body, decl.ID, true)
			}
		case *ast.Trait:
			cu.Contracts[decl.ID] = &ContractCfgs{Name: decl.Name, Decl: decl.ID, Methods: make(map[CfgID]*Cfg)}
			for _, m := range decl.Methods {
				plan(CfgInfo{Name: m.Name, Decl: m.ID, Kind: CfgMethod, Origin: decl.Origin}, m.Body, decl.ID, true)
			}
		}
	}

	// Per-owner method scope: own methods plus trait-inherited ones.
	selfScopes := make(map[ast.NodeID]map[string]CfgID)
	for ownerID := range cu.Contracts {
		callables, err := store.CallablesOf(ownerID)
		if err != nil {
			return nil, err
		}
		scope := make(map[string]CfgID, len(callables))
		for _, fn := range callables {
			if id, ok := declToCfg[fn.ID]; ok {
				scope[fn.Name] = id
			}
		}
		selfScopes[ownerID] = scope
	}

	for _, p := range plans {
		res := &scopedResolver{free: freeByName}
		if p.isMember {
			res.self = selfScopes[p.owner]
		}
		cfg, err := BuildCfg(alloc, p.info, p.body, res)
		if err != nil {
			return nil, err
		}
		if p.isMember {
			cu.Contracts[p.owner].Methods[cfg.ID] = cfg
		} else {
			cu.Functions[cfg.ID] = cfg
		}
	}

	cg, err := BuildCallGraph(alloc, store)
	if err != nil {
		return nil, err
	}
	cu.CallGraph = cg
	cu.freeze()
	return cu, nil
}

type scopedResolver struct {
	free map[string]CfgID
	self map[string]CfgID
}

func (r *scopedResolver) ResolveFree(name string) (CfgID, bool) {
	id, ok := r.free[name]
	return id, ok
}

func (r *scopedResolver) ResolveSelf(method string) (CfgID, bool) {
	id, ok := r.self[method]
	return id, ok
}

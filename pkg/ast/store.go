package ast

import (
	"github.com/augurlint/augur/pkg/diag"
)

// SourceFile is one parsed file: its path and its top-level declarations
// in source order.
type SourceFile struct {
	Path  string `json:"path"`
	Decls []Decl `json:"decls"`
}

// Program is the raw front-end output for one project.
type Program struct {
	Name  string        `json:"name"`
	Files []*SourceFile `json:"files"`
}

// Store is the id-indexed, queryable view over one project's parse.
// It is built once and never mutated afterwards.
type Store struct {
	files []*SourceFile

	decls     map[NodeID]Decl
	functions map[NodeID]*Function
	natives   map[NodeID]*NativeFunction
	asms      map[NodeID]*AsmFunction
	constants map[NodeID]*Constant
	contracts map[NodeID]*Contract
	traits    map[NodeID]*Trait
	structs   map[NodeID]*StructDecl
	messages  map[NodeID]*Message
	fields    map[NodeID]*Field
	inits     map[NodeID]*Init
	receivers map[NodeID]*Receiver
	stmts     map[NodeID]Stmt

	traitByName map[string]*Trait
}

// NewStore indexes a front-end program. The program is trusted: id
// collisions or dangling references surface later as violations, not
// here.
func NewStore(prog *Program) *Store {
	s := &Store{
		files:       prog.Files,
		decls:       make(map[NodeID]Decl),
		functions:   make(map[NodeID]*Function),
		natives:     make(map[NodeID]*NativeFunction),
		asms:        make(map[NodeID]*AsmFunction),
		constants:   make(map[NodeID]*Constant),
		contracts:   make(map[NodeID]*Contract),
		traits:      make(map[NodeID]*Trait),
		structs:     make(map[NodeID]*StructDecl),
		messages:    make(map[NodeID]*Message),
		fields:      make(map[NodeID]*Field),
		inits:       make(map[NodeID]*Init),
		receivers:   make(map[NodeID]*Receiver),
		stmts:       make(map[NodeID]Stmt),
		traitByName: make(map[string]*Trait),
	}
	for _, f := range prog.Files {
		for _, d := range f.Decls {
			s.indexDecl(d)
		}
	}
	return s
}

func (s *Store) indexDecl(d Decl) {
	s.decls[d.NodeID()] = d
	switch decl := d.(type) {
	case *Function:
		s.functions[decl.ID] = decl
		s.indexStmts(decl.Body)
	case *NativeFunction:
		s.natives[decl.ID] = decl
	case *AsmFunction:
		s.asms[decl.ID] = decl
	case *Constant:
		s.constants[decl.ID] = decl
	case *Contract:
		s.contracts[decl.ID] = decl
		s.indexMembers(decl.Fields, decl.Constants, decl.Methods)
		if decl.Init != nil {
			s.inits[decl.Init.ID] = decl.Init
			s.indexStmts(decl.Init.Body)
		}
		for _, r := range decl.Receivers {
			s.receivers[r.ID] = r
			s.indexStmts(r.Body)
		}
	case *Trait:
		s.traits[decl.ID] = decl
		s.traitByName[decl.Name] = decl
		s.indexMembers(decl.Fields, decl.Constants, decl.Methods)
	case *StructDecl:
		for _, f := range decl.Fields {
			s.fields[f.ID] = f
		}
		s.structs[decl.ID] = decl
	case *Message:
		for _, f := range decl.Fields {
			s.fields[f.ID] = f
		}
		s.messages[decl.ID] = decl
	}
}

func (s *Store) indexMembers(fields []*Field, constants []*Constant, methods []*Function) {
	for _, f := range fields {
		s.fields[f.ID] = f
	}
	for _, c := range constants {
		s.constants[c.ID] = c
	}
	for _, m := range methods {
		s.functions[m.ID] = m
		s.indexStmts(m.Body)
	}
}

func (s *Store) indexStmts(body []Stmt) {
	WalkStmts(body, func(st Stmt) bool {
		s.stmts[st.NodeID()] = st
		return true
	})
}

// QueryOptions narrow declaration enumeration.
type QueryOptions struct {
	IncludeStdlib bool
	File          string // restrict to one file path when non-empty
}

// QueryOption configures a Decls call.
type QueryOption func(*QueryOptions)

// WithStdlib includes standard-library declarations, excluded by default.
func WithStdlib() QueryOption {
	return func(o *QueryOptions) { o.IncludeStdlib = true }
}

// WithFile restricts enumeration to one file path.
func WithFile(path string) QueryOption {
	return func(o *QueryOptions) { o.File = path }
}

// Decls enumerates top-level declarations in per-file declaration order.
func (s *Store) Decls(opts ...QueryOption) []Decl {
	var o QueryOptions
	for _, opt := range opts {
		opt(&o)
	}
	var out []Decl
	for _, f := range s.files {
		if o.File != "" && f.Path != o.File {
			continue
		}
		for _, d := range f.Decls {
			if !o.IncludeStdlib && d.DeclOrigin() == OriginStdlib {
				continue
			}
			out = append(out, d)
		}
	}
	return out
}

// Files lists the file paths of the program in front-end order.
func (s *Store) Files() []string {
	paths := make([]string, 0, len(s.files))
	for _, f := range s.files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Decl looks up any top-level declaration by id.
func (s *Store) Decl(id NodeID) (Decl, error) {
	if d, ok := s.decls[id]; ok {
		return d, nil
	}
	return nil, diag.Violationf("declaration not found in any collection").With("id", id)
}

// Function looks up a free function or method by id.
func (s *Store) Function(id NodeID) (*Function, error) {
	if f, ok := s.functions[id]; ok {
		return f, nil
	}
	return nil, diag.Violationf("function not found").With("id", id)
}

// Contract looks up a contract by id.
func (s *Store) Contract(id NodeID) (*Contract, error) {
	if c, ok := s.contracts[id]; ok {
		return c, nil
	}
	return nil, diag.Violationf("contract not found").With("id", id)
}

// Trait looks up a trait by id.
func (s *Store) Trait(id NodeID) (*Trait, error) {
	if t, ok := s.traits[id]; ok {
		return t, nil
	}
	return nil, diag.Violationf("trait not found").With("id", id)
}

// Stmt looks up any statement by id, including statements nested in
// branch and loop bodies.
func (s *Store) Stmt(id NodeID) (Stmt, error) {
	if st, ok := s.stmts[id]; ok {
		return st, nil
	}
	return nil, diag.Violationf("statement not found").With("id", id)
}

// Pos returns the source location of any indexed node: top-level
// declarations, members and statements alike.
func (s *Store) Pos(id NodeID) (Location, bool) {
	if d, ok := s.decls[id]; ok {
		return d.Pos(), true
	}
	if f, ok := s.functions[id]; ok {
		return f.Loc, true
	}
	if c, ok := s.constants[id]; ok {
		return c.Loc, true
	}
	if f, ok := s.fields[id]; ok {
		return f.Loc, true
	}
	if in, ok := s.inits[id]; ok {
		return in.Loc, true
	}
	if r, ok := s.receivers[id]; ok {
		return r.Loc, true
	}
	if st, ok := s.stmts[id]; ok {
		return st.Pos(), true
	}
	return Location{}, false
}

// Contracts lists all contracts in the program, stdlib included.
func (s *Store) Contracts() []*Contract {
	var out []*Contract
	for _, f := range s.files {
		for _, d := range f.Decls {
			if c, ok := d.(*Contract); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// Traits lists all traits in the program, stdlib included.
func (s *Store) Traits() []*Trait {
	var out []*Trait
	for _, f := range s.files {
		for _, d := range f.Decls {
			if t, ok := d.(*Trait); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// MethodsOf returns a contract's own methods, in declaration order.
func (s *Store) MethodsOf(contractID NodeID) ([]*Function, error) {
	c, err := s.Contract(contractID)
	if err != nil {
		return nil, err
	}
	return c.Methods, nil
}

// InitOf returns the contract's constructor, if declared.
func (s *Store) InitOf(contractID NodeID) (*Init, bool, error) {
	c, err := s.Contract(contractID)
	if err != nil {
		return nil, false, err
	}
	return c.Init, c.Init != nil, nil
}

// ConstantsOf returns a contract's own declared constants.
func (s *Store) ConstantsOf(contractID NodeID) ([]*Constant, error) {
	c, err := s.Contract(contractID)
	if err != nil {
		return nil, err
	}
	return c.Constants, nil
}

// FieldsOf returns a contract's own declared fields.
func (s *Store) FieldsOf(contractID NodeID) ([]*Field, error) {
	c, err := s.Contract(contractID)
	if err != nil {
		return nil, err
	}
	return c.Fields, nil
}

// AllFieldsOf returns declared plus inherited fields, flattening the
// contract's traits transitively. The AST may predate trait-cycle
// validation, so the walk is guarded by a visited set.
func (s *Store) AllFieldsOf(contractID NodeID) ([]*Field, error) {
	c, err := s.Contract(contractID)
	if err != nil {
		return nil, err
	}
	fields := append([]*Field(nil), c.Fields...)
	visited := make(map[NodeID]bool)
	var visit func(names []string)
	visit = func(names []string) {
		for _, name := range names {
			t, ok := s.traitByName[name]
			if !ok || visited[t.ID] {
				continue
			}
			visited[t.ID] = true
			fields = append(fields, t.Fields...)
			visit(t.Traits)
		}
	}
	visit(c.Traits)
	return fields, nil
}

// ReturnTypeOf returns the declared return type of a top-level callable
// (function, native function or asm function) or of a method.
func (s *Store) ReturnTypeOf(id NodeID) (TypeRef, error) {
	if f, ok := s.functions[id]; ok {
		return f.Ret, nil
	}
	if n, ok := s.natives[id]; ok {
		return n.Ret, nil
	}
	if a, ok := s.asms[id]; ok {
		return a.Ret, nil
	}
	return TypeRef{}, diag.Violationf("callable not found").With("id", id)
}

// CallablesOf returns all methods of a contract or trait including ones
// inherited through its trait chain, cycle-guarded. The contract's or
// nearest trait's declaration wins on a name collision.
func (s *Store) CallablesOf(id NodeID) ([]*Function, error) {
	var ownMethods []*Function
	var traitNames []string
	switch {
	case s.contracts[id] != nil:
		c := s.contracts[id]
		ownMethods, traitNames = c.Methods, c.Traits
	case s.traits[id] != nil:
		t := s.traits[id]
		ownMethods, traitNames = t.Methods, t.Traits
	default:
		return nil, diag.Violationf("contract or trait not found").With("id", id)
	}

	out := append([]*Function(nil), ownMethods...)
	seen := make(map[string]bool, len(ownMethods))
	for _, m := range ownMethods {
		seen[m.Name] = true
	}
	visited := make(map[NodeID]bool)
	var visit func(names []string)
	visit = func(names []string) {
		for _, name := range names {
			t, ok := s.traitByName[name]
			if !ok || visited[t.ID] {
				continue
			}
			visited[t.ID] = true
			for _, m := range t.Methods {
				if !seen[m.Name] {
					out = append(out, m)
					seen[m.Name] = true
				}
			}
			visit(t.Traits)
		}
	}
	visit(traitNames)
	return out, nil
}

// Package ast defines the id-indexed syntax tree augur consumes from an
// external Arc front-end, plus the queryable Store built over it.
//
// The tree is deliberately untyped: no resolution or type checking has
// happened when augur receives it. Each node family (declarations,
// statements, expressions) is a closed set of variants behind a sealed
// interface, so a switch over the concrete types is exhaustive by
// construction.
package ast

// NodeID is an opaque key into the Store, assigned by the front-end.
// IDs are stable for the lifetime of one parse.
type NodeID uint32

// Location points at the source position a node came from.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// Origin records whether a declaration or file came from user code or
// from the Arc standard library.
type Origin uint8

const (
	OriginUser Origin = iota
	OriginStdlib
)

func (o Origin) String() string {
	if o == OriginStdlib {
		return "stdlib"
	}
	return "user"
}

// TypeRef is an unresolved type reference as written in source.
type TypeRef struct {
	Name     string `json:"name"`
	Optional bool   `json:"optional,omitempty"`
}

// Node is implemented by every AST node.
type Node interface {
	NodeID() NodeID
	Pos() Location
}

// Decl is a top-level declaration. The variant set is closed: Function,
// NativeFunction, AsmFunction, Constant, Contract, Trait, StructDecl and
// Message are the only implementations.
type Decl interface {
	Node
	DeclName() string
	DeclOrigin() Origin
	isDecl()
}

// Stmt is a statement inside a callable body. Closed variant set.
type Stmt interface {
	Node
	isStmt()
}

// Expr is an expression. Closed variant set.
type Expr interface {
	Node
	isExpr()
}

type base struct {
	ID  NodeID   `json:"id"`
	Loc Location `json:"loc"`
}

func (b base) NodeID() NodeID { return b.ID }
func (b base) Pos() Location  { return b.Loc }

type declBase struct {
	base
	Name   string `json:"name"`
	Origin Origin `json:"origin"`
}

func (d declBase) DeclName() string   { return d.Name }
func (d declBase) DeclOrigin() Origin { return d.Origin }

// Param is a formal parameter of a callable.
type Param struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// Function is a free function or, when nested in a Contract or Trait, a
// method. Body is nil for bodiless declarations (trait requirements).
type Function struct {
	declBase
	Params []Param `json:"params,omitempty"`
	Ret    TypeRef `json:"ret"`
	Body   []Stmt  `json:"body,omitempty"`
}

// NativeFunction binds a name to a runtime primitive; it never has a body.
type NativeFunction struct {
	declBase
	Params []Param `json:"params,omitempty"`
	Ret    TypeRef `json:"ret"`
}

// AsmFunction is a low-level function written in the secondary assembly
// language. Its body is opaque to augur.
type AsmFunction struct {
	declBase
	Params []Param `json:"params,omitempty"`
	Ret    TypeRef `json:"ret"`
}

// Constant is a named constant, either top-level or contract-scoped.
type Constant struct {
	declBase
	Type  TypeRef `json:"type"`
	Value Expr    `json:"value,omitempty"`
}

// Field is a state field of a contract, trait, struct or message.
type Field struct {
	base
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// Init is a contract constructor. It has no source identifier.
type Init struct {
	base
	Params []Param `json:"params,omitempty"`
	Body   []Stmt  `json:"body,omitempty"`
}

// ReceiverKind distinguishes the message-handler families.
type ReceiverKind uint8

const (
	ReceiveInternal ReceiverKind = iota
	ReceiveExternal
	ReceiveBounce
)

func (k ReceiverKind) String() string {
	switch k {
	case ReceiveExternal:
		return "external"
	case ReceiveBounce:
		return "bounce"
	default:
		return "internal"
	}
}

// Receiver is a message handler of a contract. Like Init it has no source
// identifier; call-graph names for receivers are synthesized.
type Receiver struct {
	base
	Kind    ReceiverKind `json:"kind"`
	Message string       `json:"message,omitempty"`
	Param   *Param       `json:"param,omitempty"`
	Body    []Stmt       `json:"body,omitempty"`
}

// Contract declares a contract: fields, constants, an optional init,
// methods and receivers, plus the traits it inherits from by name.
type Contract struct {
	declBase
	Traits    []string    `json:"traits,omitempty"`
	Fields    []*Field    `json:"fields,omitempty"`
	Constants []*Constant `json:"constants,omitempty"`
	Init      *Init       `json:"init,omitempty"`
	Methods   []*Function `json:"methods,omitempty"`
	Receivers []*Receiver `json:"receivers,omitempty"`
}

// Trait declares a trait. Traits may themselves inherit traits.
type Trait struct {
	declBase
	Traits    []string    `json:"traits,omitempty"`
	Fields    []*Field    `json:"fields,omitempty"`
	Constants []*Constant `json:"constants,omitempty"`
	Methods   []*Function `json:"methods,omitempty"`
}

// StructDecl declares a plain data structure.
type StructDecl struct {
	declBase
	Fields []*Field `json:"fields,omitempty"`
}

// Message declares a message type receivable by contracts.
type Message struct {
	declBase
	Fields []*Field `json:"fields,omitempty"`
}

func (*Function) isDecl()       {}
func (*NativeFunction) isDecl() {}
func (*AsmFunction) isDecl()    {}
func (*Constant) isDecl()       {}
func (*Contract) isDecl()       {}
func (*Trait) isDecl()          {}
func (*StructDecl) isDecl()     {}
func (*Message) isDecl()        {}

// Let introduces a local binding.
type Let struct {
	base
	Name  string  `json:"name"`
	Type  TypeRef `json:"type"`
	Value Expr    `json:"value"`
}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	base
	X Expr `json:"x"`
}

// Assign writes Value into the place named by Path (a Var or a
// FieldAccess chain).
type Assign struct {
	base
	Path  Expr `json:"path"`
	Value Expr `json:"value"`
}

// AugmentedAssign is a compound assignment such as `+=`.
type AugmentedAssign struct {
	base
	Op    string `json:"op"`
	Path  Expr   `json:"path"`
	Value Expr   `json:"value"`
}

// Return leaves the current callable. Value may be nil.
type Return struct {
	base
	Value Expr `json:"value,omitempty"`
}

// Cond is an if/else. Else is nil when the statement has no false branch.
type Cond struct {
	base
	Cond Expr   `json:"cond"`
	Then []Stmt `json:"then,omitempty"`
	Else []Stmt `json:"else,omitempty"`
}

// While loops while the condition holds.
type While struct {
	base
	Cond Expr   `json:"cond"`
	Body []Stmt `json:"body,omitempty"`
}

// Until loops until the condition holds.
type Until struct {
	base
	Cond Expr   `json:"cond"`
	Body []Stmt `json:"body,omitempty"`
}

// Repeat loops a fixed number of times.
type Repeat struct {
	base
	Count Expr   `json:"count"`
	Body  []Stmt `json:"body,omitempty"`
}

// Foreach iterates the entries of a map expression.
type Foreach struct {
	base
	Key   string `json:"key"`
	Value string `json:"value"`
	Map   Expr   `json:"map"`
	Body  []Stmt `json:"body,omitempty"`
}

// Try guards its body; Catch is nil when no catch clause exists, in which
// case HasCatch is false and the error aborts the transaction.
type Try struct {
	base
	Body      []Stmt `json:"body,omitempty"`
	HasCatch  bool   `json:"hasCatch,omitempty"`
	CatchName string `json:"catchName,omitempty"`
	Catch     []Stmt `json:"catch,omitempty"`
}

func (*Let) isStmt()             {}
func (*ExprStmt) isStmt()        {}
func (*Assign) isStmt()          {}
func (*AugmentedAssign) isStmt() {}
func (*Return) isStmt()          {}
func (*Cond) isStmt()            {}
func (*While) isStmt()           {}
func (*Until) isStmt()           {}
func (*Repeat) isStmt()          {}
func (*Foreach) isStmt()         {}
func (*Try) isStmt()             {}

// SelfName is the receiver identifier inside contract members.
const SelfName = "self"

// Var references a name.
type Var struct {
	base
	Name string `json:"name"`
}

// IsSelf reports whether the expression is a bare `self` reference.
func IsSelf(e Expr) bool {
	v, ok := e.(*Var)
	return ok && v.Name == SelfName
}

// FieldAccess reads Base.Field.
type FieldAccess struct {
	base
	Base  Expr   `json:"base"`
	Field string `json:"field"`
}

// StaticCall calls a free function by name.
type StaticCall struct {
	base
	Name string `json:"name"`
	Args []Expr `json:"args,omitempty"`
}

// MethodCall calls Method on Base.
type MethodCall struct {
	base
	Base   Expr   `json:"base"`
	Method string `json:"method"`
	Args   []Expr `json:"args,omitempty"`
}

// Binary applies an infix operator.
type Binary struct {
	base
	Op string `json:"op"`
	L  Expr   `json:"l"`
	R  Expr   `json:"r"`
}

// Unary applies a prefix operator.
type Unary struct {
	base
	Op string `json:"op"`
	X  Expr   `json:"x"`
}

// LitKind classifies literal expressions.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitBool
	LitString
	LitNull
	LitAddress
	LitCell
)

// Literal is a literal value, kept as source text.
type Literal struct {
	base
	Kind  LitKind `json:"kind"`
	Value string  `json:"value"`
}

// StructInit constructs a struct or message value.
type StructInit struct {
	base
	Name   string          `json:"name"`
	Fields []StructInitArg `json:"fields,omitempty"`
}

// StructInitArg is one field initializer inside a StructInit.
type StructInitArg struct {
	Name  string `json:"name"`
	Value Expr   `json:"value"`
}

func (*Var) isExpr()         {}
func (*FieldAccess) isExpr() {}
func (*StaticCall) isExpr()  {}
func (*MethodCall) isExpr()  {}
func (*Binary) isExpr()      {}
func (*Unary) isExpr()       {}
func (*Literal) isExpr()     {}
func (*StructInit) isExpr()  {}

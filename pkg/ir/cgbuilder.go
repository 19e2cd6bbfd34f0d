package ir

import (
	"github.com/augurlint/augur/pkg/ast"
)

// Arc primitives the effect inference recognizes. These are name sets,
// not resolved symbols: the AST is not type-checked, so inference keys
// on what the source literally calls.
var (
	sendPrimitives = map[string]bool{
		"send":              true,
		"nativeSendMessage": true,
	}
	selfSendMethods = map[string]bool{
		"reply":   true,
		"forward": true,
		"notify":  true,
		"emit":    true,
	}
	datetimePrimitives = map[string]bool{
		"now":       true,
		"timestamp": true,
	}
	seedPrimitives = map[string]bool{
		"setSeed":       true,
		"prepareRandom": true,
	}
	randomPrimitives = map[string]bool{
		"random":    true,
		"randomInt": true,
	}
	// State-mutating methods of the builtin map/string/builder types. A
	// call chain rooted at a self field invoking one of these writes
	// that field.
	containerMutators = map[string]bool{
		"set":      true,
		"del":      true,
		"add":      true,
		"replace":  true,
		"append":   true,
		"concat":   true,
		"store":    true,
		"storeRef": true,
	}
)

// IsSendPrimitive reports whether a free-function name is one of the
// message-sending primitives.
func IsSendPrimitive(name string) bool { return sendPrimitives[name] }

// IsSelfSendMethod reports whether a `self` method name belongs to the
// reply/forward/notify/emit family.
func IsSelfSendMethod(name string) bool { return selfSendMethods[name] }

// BuildCallGraph builds the whole-program call graph: one node per
// declared function, method, receiver and constructor, one logical edge
// per (caller, callee) pair, and an effect bitmask accumulated from
// every statement of every declaration.
//
// Method-call receivers are resolved by name, not by type: a call on an
// identifier other than `self` is attributed to a contract of that name.
// This is a deliberate approximation over the untyped AST, and detectors
// depend on its exact behavior.
func BuildCallGraph(alloc *Allocator, store *ast.Store) (*CallGraph, error) {
	g := newCallGraph(alloc)

	type walkItem struct {
		decl  ast.NodeID
		owner string // enclosing contract/trait name, "" for free callables
		body  []ast.Stmt
	}
	var work []walkItem

	for _, d := range store.Decls(ast.WithStdlib()) {
		switch decl := d.(type) {
		case *ast.Function:
			g.addDeclared(decl.Name, decl.ID)
			work = append(work, walkItem{decl.ID, "", decl.Body})
		case *ast.NativeFunction:
			g.addDeclared(decl.Name, decl.ID)
		case *ast.AsmFunction:
			g.addDeclared(decl.Name, decl.ID)
		case *ast.Contract:
			for _, m := range decl.Methods {
				g.addDeclared(QualifiedName(decl.Name, m.Name), m.ID)
				work = append(work, walkItem{m.ID, decl.Name, m.Body})
			}
			if decl.Init != nil {
				g.addDeclared(initName(decl.Name), decl.Init.ID)
				work = append(work, walkItem{decl.Init.ID, decl.Name, decl.Init.Body})
			}
			for _, r := range decl.Receivers {
				g.addDeclared(receiverName(decl.Name, r), r.ID)
				work = append(work, walkItem{r.ID, decl.Name, r.Body})
			}
		case *ast.Trait:
			for _, m := range decl.Methods {
				g.addDeclared(QualifiedName(decl.Name, m.Name), m.ID)
				work = append(work, walkItem{m.ID, decl.Name, m.Body})
			}
		}
	}

	for _, item := range work {
		node, ok := g.NodeByDecl(item.decl)
		if !ok {
			// Unreachable: every work item was just registered.
			continue
		}
		w := cgWalker{g: g, node: node, owner: item.owner}
		ast.WalkStmts(item.body, func(s ast.Stmt) bool {
			w.stmt(s)
			return true
		})
	}
	return g, nil
}

type cgWalker struct {
	g     *CallGraph
	node  *CGNode
	owner string
}

func (w *cgWalker) stmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Assign:
		w.writePath(st.Path)
		w.expr(st.Value)
	case *ast.AugmentedAssign:
		// Compound assignment both reads and writes the place.
		if field, ok := rootSelfField(st.Path); ok {
			w.node.Effects |= EffectStateRead
			w.node.Reads[field] = struct{}{}
		}
		w.writePath(st.Path)
		w.expr(st.Value)
	default:
		for _, e := range ast.StmtExprs(s) {
			w.expr(e)
		}
	}
}

func (w *cgWalker) writePath(path ast.Expr) {
	if field, ok := rootSelfField(path); ok {
		w.node.Effects |= EffectStateWrite
		w.node.Writes[field] = struct{}{}
	}
}

func (w *cgWalker) expr(e ast.Expr) {
	ast.WalkExpr(e, func(x ast.Expr) bool {
		switch expr := x.(type) {
		case *ast.FieldAccess:
			if ast.IsSelf(expr.Base) {
				w.node.Effects |= EffectStateRead
				w.node.Reads[expr.Field] = struct{}{}
			}
		case *ast.StaticCall:
			switch {
			case sendPrimitives[expr.Name]:
				w.node.Effects |= EffectSend
			case datetimePrimitives[expr.Name]:
				w.node.Effects |= EffectAccessDatetime
			case seedPrimitives[expr.Name]:
				w.node.Effects |= EffectPrgSeedInit
			case randomPrimitives[expr.Name]:
				w.node.Effects |= EffectPrgUse
			}
			w.g.addCall(w.node, w.g.FindOrAddNode(expr.Name), expr.Pos())
		case *ast.MethodCall:
			w.methodCall(expr)
		}
		return true
	})
}

func (w *cgWalker) methodCall(call *ast.MethodCall) {
	switch {
	case ast.IsSelf(call.Base):
		if selfSendMethods[call.Method] {
			w.node.Effects |= EffectSend
		}
		if w.owner != "" {
			target := w.g.FindOrAddNode(QualifiedName(w.owner, call.Method))
			w.g.addCall(w.node, target, call.Pos())
		}
	default:
		if field, ok := rootSelfField(call.Base); ok && containerMutators[call.Method] {
			w.node.Effects |= EffectStateWrite
			w.node.Writes[field] = struct{}{}
			return
		}
		// Name-based receiver heuristic: `Other.method()` is treated as
		// a call into a contract named Other.
		if v, ok := call.Base.(*ast.Var); ok {
			target := w.g.FindOrAddNode(QualifiedName(v.Name, call.Method))
			w.g.addCall(w.node, target, call.Pos())
		}
	}
}

// rootSelfField returns the first field of an access chain rooted at
// `self`: for `self.a.b.c` it returns "a".
func rootSelfField(e ast.Expr) (string, bool) {
	fa, ok := e.(*ast.FieldAccess)
	if !ok {
		return "", false
	}
	for {
		if ast.IsSelf(fa.Base) {
			return fa.Field, true
		}
		inner, ok := fa.Base.(*ast.FieldAccess)
		if !ok {
			return "", false
		}
		fa = inner
	}
}

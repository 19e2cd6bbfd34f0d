package ast

// WalkExpr visits e and every sub-expression in depth-first order. The
// walk stops early when fn returns false for a node (its children are
// still skipped, siblings continue).
func WalkExpr(e Expr, fn func(Expr) bool) {
	if e == nil {
		return
	}
	if !fn(e) {
		return
	}
	switch x := e.(type) {
	case *Var, *Literal:
	case *FieldAccess:
		WalkExpr(x.Base, fn)
	case *StaticCall:
		for _, a := range x.Args {
			WalkExpr(a, fn)
		}
	case *MethodCall:
		WalkExpr(x.Base, fn)
		for _, a := range x.Args {
			WalkExpr(a, fn)
		}
	case *Binary:
		WalkExpr(x.L, fn)
		WalkExpr(x.R, fn)
	case *Unary:
		WalkExpr(x.X, fn)
	case *StructInit:
		for _, f := range x.Fields {
			WalkExpr(f.Value, fn)
		}
	}
}

// StmtExprs returns the expressions a statement directly evaluates. It
// does not descend into nested statement bodies; callers that need those
// walk the statement tree themselves.
func StmtExprs(s Stmt) []Expr {
	switch st := s.(type) {
	case *Let:
		return []Expr{st.Value}
	case *ExprStmt:
		return []Expr{st.X}
	case *Assign:
		return []Expr{st.Path, st.Value}
	case *AugmentedAssign:
		return []Expr{st.Path, st.Value}
	case *Return:
		if st.Value != nil {
			return []Expr{st.Value}
		}
		return nil
	case *Cond:
		return []Expr{st.Cond}
	case *While:
		return []Expr{st.Cond}
	case *Until:
		return []Expr{st.Cond}
	case *Repeat:
		return []Expr{st.Count}
	case *Foreach:
		return []Expr{st.Map}
	case *Try:
		return nil
	}
	return nil
}

// NestedBodies returns the statement lists nested under s, in source
// order. Simple statements return nothing.
func NestedBodies(s Stmt) [][]Stmt {
	switch st := s.(type) {
	case *Cond:
		if len(st.Else) > 0 {
			return [][]Stmt{st.Then, st.Else}
		}
		return [][]Stmt{st.Then}
	case *While:
		return [][]Stmt{st.Body}
	case *Until:
		return [][]Stmt{st.Body}
	case *Repeat:
		return [][]Stmt{st.Body}
	case *Foreach:
		return [][]Stmt{st.Body}
	case *Try:
		if st.HasCatch {
			return [][]Stmt{st.Body, st.Catch}
		}
		return [][]Stmt{st.Body}
	}
	return nil
}

// WalkStmts visits every statement in stmts and all nested bodies.
func WalkStmts(stmts []Stmt, fn func(Stmt) bool) {
	for _, s := range stmts {
		if !fn(s) {
			continue
		}
		for _, body := range NestedBodies(s) {
			WalkStmts(body, fn)
		}
	}
}

package ast

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// The front-end hands augur one JSON document per project. Every node is
// an object with a "node" discriminator naming the variant; nested
// statements and expressions are inlined. Example:
//
//	{"name":"wallet","files":[{"path":"main.arc","decls":[
//	  {"node":"function","id":1,"name":"main","origin":"user",
//	   "body":[{"node":"return","id":2}]}]}]}
//
// Decoding is strict about variant names and permissive about everything
// else; a malformed document is an execution error, not a violation,
// since the dump comes from outside the engine.

// DecodeProgram decodes a front-end AST dump.
func DecodeProgram(data []byte) (*Program, error) {
	var wire struct {
		Name  string `json:"name"`
		Files []struct {
			Path  string            `json:"path"`
			Decls []json.RawMessage `json:"decls"`
		} `json:"files"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding AST dump: %w", err)
	}
	prog := &Program{Name: wire.Name}
	for _, f := range wire.Files {
		sf := &SourceFile{Path: f.Path}
		for _, raw := range f.Decls {
			d, err := decodeDecl(raw)
			if err != nil {
				return nil, fmt.Errorf("file %s: %w", f.Path, err)
			}
			sf.Decls = append(sf.Decls, d)
		}
		prog.Files = append(prog.Files, sf)
	}
	return prog, nil
}

// wireNode is the flat superset of every variant's fields. Which fields
// are meaningful depends on the discriminator.
type wireNode struct {
	Node   string   `json:"node"`
	ID     NodeID   `json:"id"`
	Loc    Location `json:"loc"`
	Name   string   `json:"name"`
	Origin string   `json:"origin"`

	Type   TypeRef `json:"type"`
	Ret    TypeRef `json:"ret"`
	Params []Param `json:"params"`

	Traits    []string          `json:"traits"`
	Fields    []json.RawMessage `json:"fields"`
	Constants []json.RawMessage `json:"constants"`
	Methods   []json.RawMessage `json:"methods"`
	Receivers []json.RawMessage `json:"receivers"`
	Init      json.RawMessage   `json:"init"`

	Body  []json.RawMessage `json:"body"`
	Then  []json.RawMessage `json:"then"`
	Else  []json.RawMessage `json:"else"`
	Catch []json.RawMessage `json:"catch"`

	Cond  json.RawMessage `json:"cond"`
	Value json.RawMessage `json:"value"` // expression, or a plain string for foreach
	Path  json.RawMessage `json:"path"`
	X     json.RawMessage `json:"x"`
	Base  json.RawMessage `json:"base"`
	Map   json.RawMessage `json:"map"`
	Count json.RawMessage `json:"count"`
	L     json.RawMessage `json:"l"`
	R     json.RawMessage `json:"r"`
	Args  []json.RawMessage `json:"args"`

	Op        string `json:"op"`
	Method    string `json:"method"`
	Key       string `json:"key"`
	Field     string `json:"field"`
	Kind      string `json:"kind"` // receiver family or literal kind
	Message   string `json:"message"`
	HasCatch  bool   `json:"hasCatch"`
	CatchName string `json:"catchName"`
	Param     *Param `json:"param"`

	InitArgs []struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	} `json:"initArgs"`
}

func parseWire(raw json.RawMessage) (*wireNode, error) {
	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding node: %w", err)
	}
	return &w, nil
}

func (w *wireNode) origin() (Origin, error) {
	switch w.Origin {
	case "", "user":
		return OriginUser, nil
	case "stdlib":
		return OriginStdlib, nil
	}
	return OriginUser, fmt.Errorf("node %d: unknown origin %q", w.ID, w.Origin)
}

func (w *wireNode) declBase() (declBase, error) {
	origin, err := w.origin()
	if err != nil {
		return declBase{}, err
	}
	return declBase{base: base{ID: w.ID, Loc: w.Loc}, Name: w.Name, Origin: origin}, nil
}

func decodeDecl(raw json.RawMessage) (Decl, error) {
	w, err := parseWire(raw)
	if err != nil {
		return nil, err
	}
	db, err := w.declBase()
	if err != nil {
		return nil, err
	}
	switch w.Node {
	case "function":
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &Function{declBase: db, Params: w.Params, Ret: w.Ret, Body: body}, nil
	case "native":
		return &NativeFunction{declBase: db, Params: w.Params, Ret: w.Ret}, nil
	case "asm":
		return &AsmFunction{declBase: db, Params: w.Params, Ret: w.Ret}, nil
	case "constant":
		value, err := decodeOptExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &Constant{declBase: db, Type: w.Type, Value: value}, nil
	case "contract":
		c := &Contract{declBase: db, Traits: w.Traits}
		if c.Fields, err = decodeFields(w.Fields); err != nil {
			return nil, err
		}
		if c.Constants, err = decodeConstants(w.Constants); err != nil {
			return nil, err
		}
		if c.Methods, err = decodeMethods(w.Methods); err != nil {
			return nil, err
		}
		if len(w.Init) > 0 {
			if c.Init, err = decodeInit(w.Init); err != nil {
				return nil, err
			}
		}
		for _, r := range w.Receivers {
			recv, err := decodeReceiver(r)
			if err != nil {
				return nil, err
			}
			c.Receivers = append(c.Receivers, recv)
		}
		return c, nil
	case "trait":
		t := &Trait{declBase: db, Traits: w.Traits}
		if t.Fields, err = decodeFields(w.Fields); err != nil {
			return nil, err
		}
		if t.Constants, err = decodeConstants(w.Constants); err != nil {
			return nil, err
		}
		if t.Methods, err = decodeMethods(w.Methods); err != nil {
			return nil, err
		}
		return t, nil
	case "struct":
		fields, err := decodeFields(w.Fields)
		if err != nil {
			return nil, err
		}
		return &StructDecl{declBase: db, Fields: fields}, nil
	case "message":
		fields, err := decodeFields(w.Fields)
		if err != nil {
			return nil, err
		}
		return &Message{declBase: db, Fields: fields}, nil
	}
	return nil, fmt.Errorf("unknown declaration variant %q (id %d)", w.Node, w.ID)
}

func decodeFields(raws []json.RawMessage) ([]*Field, error) {
	var out []*Field
	for _, raw := range raws {
		w, err := parseWire(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, &Field{base: base{ID: w.ID, Loc: w.Loc}, Name: w.Name, Type: w.Type})
	}
	return out, nil
}

func decodeConstants(raws []json.RawMessage) ([]*Constant, error) {
	var out []*Constant
	for _, raw := range raws {
		d, err := decodeDecl(raw)
		if err != nil {
			return nil, err
		}
		c, ok := d.(*Constant)
		if !ok {
			return nil, fmt.Errorf("expected constant, got %T", d)
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeMethods(raws []json.RawMessage) ([]*Function, error) {
	var out []*Function
	for _, raw := range raws {
		d, err := decodeDecl(raw)
		if err != nil {
			return nil, err
		}
		f, ok := d.(*Function)
		if !ok {
			return nil, fmt.Errorf("expected function, got %T", d)
		}
		out = append(out, f)
	}
	return out, nil
}

func decodeInit(raw json.RawMessage) (*Init, error) {
	w, err := parseWire(raw)
	if err != nil {
		return nil, err
	}
	body, err := decodeStmts(w.Body)
	if err != nil {
		return nil, err
	}
	return &Init{base: base{ID: w.ID, Loc: w.Loc}, Params: w.Params, Body: body}, nil
}

func decodeReceiver(raw json.RawMessage) (*Receiver, error) {
	w, err := parseWire(raw)
	if err != nil {
		return nil, err
	}
	var kind ReceiverKind
	switch w.Kind {
	case "", "internal":
		kind = ReceiveInternal
	case "external":
		kind = ReceiveExternal
	case "bounce":
		kind = ReceiveBounce
	default:
		return nil, fmt.Errorf("node %d: unknown receiver kind %q", w.ID, w.Kind)
	}
	body, err := decodeStmts(w.Body)
	if err != nil {
		return nil, err
	}
	return &Receiver{
		base:    base{ID: w.ID, Loc: w.Loc},
		Kind:    kind,
		Message: w.Message,
		Param:   w.Param,
		Body:    body,
	}, nil
}

func decodeStmts(raws []json.RawMessage) ([]Stmt, error) {
	var out []Stmt
	for _, raw := range raws {
		s, err := decodeStmt(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	w, err := parseWire(raw)
	if err != nil {
		return nil, err
	}
	b := base{ID: w.ID, Loc: w.Loc}
	switch w.Node {
	case "let":
		value, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &Let{base: b, Name: w.Name, Type: w.Type, Value: value}, nil
	case "expr":
		x, err := decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{base: b, X: x}, nil
	case "assign":
		path, err := decodeExpr(w.Path)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &Assign{base: b, Path: path, Value: value}, nil
	case "augassign":
		path, err := decodeExpr(w.Path)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &AugmentedAssign{base: b, Op: w.Op, Path: path, Value: value}, nil
	case "return":
		value, err := decodeOptExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &Return{base: b, Value: value}, nil
	case "cond":
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmts(w.Else)
		if err != nil {
			return nil, err
		}
		return &Cond{base: b, Cond: cond, Then: then, Else: els}, nil
	case "while", "until":
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		if w.Node == "until" {
			return &Until{base: b, Cond: cond, Body: body}, nil
		}
		return &While{base: b, Cond: cond, Body: body}, nil
	case "repeat":
		count, err := decodeExpr(w.Count)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &Repeat{base: b, Count: count, Body: body}, nil
	case "foreach":
		var valueName string
		if len(w.Value) > 0 {
			if err := json.Unmarshal(w.Value, &valueName); err != nil {
				return nil, fmt.Errorf("node %d: foreach value binding: %w", w.ID, err)
			}
		}
		m, err := decodeExpr(w.Map)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &Foreach{base: b, Key: w.Key, Value: valueName, Map: m, Body: body}, nil
	case "try":
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		catch, err := decodeStmts(w.Catch)
		if err != nil {
			return nil, err
		}
		hasCatch := w.HasCatch || len(catch) > 0
		return &Try{base: b, Body: body, HasCatch: hasCatch, CatchName: w.CatchName, Catch: catch}, nil
	}
	return nil, fmt.Errorf("unknown statement variant %q (id %d)", w.Node, w.ID)
}

func decodeOptExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeExpr(raw)
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing expression")
	}
	w, err := parseWire(raw)
	if err != nil {
		return nil, err
	}
	b := base{ID: w.ID, Loc: w.Loc}
	switch w.Node {
	case "var":
		return &Var{base: b, Name: w.Name}, nil
	case "fieldAccess":
		bse, err := decodeExpr(w.Base)
		if err != nil {
			return nil, err
		}
		return &FieldAccess{base: b, Base: bse, Field: w.Field}, nil
	case "staticCall":
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return &StaticCall{base: b, Name: w.Name, Args: args}, nil
	case "methodCall":
		bse, err := decodeExpr(w.Base)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return &MethodCall{base: b, Base: bse, Method: w.Method, Args: args}, nil
	case "binary":
		l, err := decodeExpr(w.L)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(w.R)
		if err != nil {
			return nil, err
		}
		return &Binary{base: b, Op: w.Op, L: l, R: r}, nil
	case "unary":
		x, err := decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &Unary{base: b, Op: w.Op, X: x}, nil
	case "literal":
		var kind LitKind
		switch w.Kind {
		case "", "int":
			kind = LitInt
		case "bool":
			kind = LitBool
		case "string":
			kind = LitString
		case "null":
			kind = LitNull
		case "address":
			kind = LitAddress
		case "cell":
			kind = LitCell
		default:
			return nil, fmt.Errorf("node %d: unknown literal kind %q", w.ID, w.Kind)
		}
		var text string
		if len(w.Value) > 0 {
			if err := json.Unmarshal(w.Value, &text); err != nil {
				return nil, fmt.Errorf("node %d: literal value: %w", w.ID, err)
			}
		}
		return &Literal{base: b, Kind: kind, Value: text}, nil
	case "structInit":
		si := &StructInit{base: b, Name: w.Name}
		for _, arg := range w.InitArgs {
			value, err := decodeExpr(arg.Value)
			if err != nil {
				return nil, err
			}
			si.Fields = append(si.Fields, StructInitArg{Name: arg.Name, Value: value})
		}
		return si, nil
	}
	return nil, fmt.Errorf("unknown expression variant %q (id %d)", w.Node, w.ID)
}

func decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	var out []Expr
	for _, raw := range raws {
		e, err := decodeExpr(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

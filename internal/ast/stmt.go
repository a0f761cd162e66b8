package ast

import "bramble/internal/types"

type StmtKind uint8

const (
	StmtBind StmtKind = iota
	StmtMutate
	StmtReturn
	StmtYieldReturn
	StmtExpr
)

func (k StmtKind) String() string {
	switch k {
	case StmtBind:
		return "bind"
	case StmtMutate:
		return "mutate"
	case StmtReturn:
		return "return"
	case StmtYieldReturn:
		return "yield return"
	case StmtExpr:
		return "expression"
	}
	return "invalid"
}

// Stmt is a statement node; exactly one payload matching Kind is set.
type Stmt struct {
	Kind   StmtKind    `msgpack:"k"`
	Ann    Annotation  `msgpack:"ann"`
	Bind   *BindStmt   `msgpack:"bind,omitempty"`
	Mutate *MutateStmt `msgpack:"mut,omitempty"`
	Return *ReturnStmt `msgpack:"ret,omitempty"`
	Expr   *Expr       `msgpack:"expr,omitempty"`
}

type BindStmt struct {
	Name    string     `msgpack:"n"`
	Mutable bool       `msgpack:"m,omitempty"`
	Type    types.Type `msgpack:"t"`
	Value   *Expr      `msgpack:"v"`
}

type MutateStmt struct {
	Name  string `msgpack:"n"`
	Value *Expr  `msgpack:"v"`
}

// ReturnStmt backs both return and yield return; Value may be nil.
type ReturnStmt struct {
	Value *Expr `msgpack:"v,omitempty"`
}

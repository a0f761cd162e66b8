package ast

import (
	"bramble/internal/source"
	"bramble/internal/types"
)

// Module is a namespace of items. The root of a compilation unit is a Module.
type Module struct {
	Name       string     `msgpack:"name"`
	Ann        Annotation `msgpack:"ann"`
	Modules    []*Module  `msgpack:"mods,omitempty"`
	Functions  []*Routine `msgpack:"fns,omitempty"`
	Coroutines []*Routine `msgpack:"cos,omitempty"`
	Structs    []*Struct  `msgpack:"structs,omitempty"`
	Externs    []*Extern  `msgpack:"externs,omitempty"`
}

// RoutineDef distinguishes functions from coroutines.
type RoutineDef uint8

const (
	RoutineFunction RoutineDef = iota
	RoutineCoroutine
)

func (d RoutineDef) String() string {
	if d == RoutineCoroutine {
		return "coroutine"
	}
	return "function"
}

type Param struct {
	Name string      `msgpack:"n"`
	Type types.Type  `msgpack:"t"`
	Span source.Span `msgpack:"sp"`
}

type Routine struct {
	Def    RoutineDef `msgpack:"def"`
	Name   string     `msgpack:"name"`
	Params []Param    `msgpack:"params,omitempty"`
	Ret    types.Type `msgpack:"ret"`
	Body   []*Stmt    `msgpack:"body,omitempty"`
	Ann    Annotation `msgpack:"ann"`
}

// Signature returns the routine type described by the declaration.
func (r *Routine) Signature() types.Type {
	params := make([]types.Type, len(r.Params))
	for i, p := range r.Params {
		params[i] = p.Type
	}
	if r.Def == RoutineCoroutine {
		return types.CoroutineDef(params, r.Ret)
	}
	return types.FunctionDef(params, r.Ret)
}

type Struct struct {
	Name   string     `msgpack:"name"`
	Fields []Param    `msgpack:"fields,omitempty"`
	Ann    Annotation `msgpack:"ann"`
}

// Definition returns the struct definition type.
func (s *Struct) Definition() types.Type {
	fields := make([]types.Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = types.Field{Name: f.Name, Type: f.Type}
	}
	return types.StructDef(fields)
}

// Extern declares a routine provided at link time.
type Extern struct {
	Name    string     `msgpack:"name"`
	Params  []Param    `msgpack:"params,omitempty"`
	VarArgs bool       `msgpack:"varargs,omitempty"`
	Ret     types.Type `msgpack:"ret"`
	Ann     Annotation `msgpack:"ann"`
}

func (e *Extern) Signature() types.Type {
	params := make([]types.Type, len(e.Params))
	for i, p := range e.Params {
		params[i] = p.Type
	}
	return types.ExternDecl(params, e.VarArgs, e.Ret)
}

// Submodule returns the direct child module with the given name.
func (m *Module) Submodule(name string) *Module {
	for _, sub := range m.Modules {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// Routines yields functions followed by coroutines.
func (m *Module) Routines() []*Routine {
	out := make([]*Routine, 0, len(m.Functions)+len(m.Coroutines))
	out = append(out, m.Functions...)
	return append(out, m.Coroutines...)
}

// Walk visits m and every nested module depth first.
func (m *Module) Walk(fn func(*Module)) {
	if m == nil {
		return
	}
	fn(m)
	for _, sub := range m.Modules {
		sub.Walk(fn)
	}
}

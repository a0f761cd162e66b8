package mir

import (
	"bramble/internal/ast"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

// Signature is everything a backend needs to declare a callee.
type Signature struct {
	Path    types.Path
	Kind    CalleeKind
	Params  []types.Type
	VarArgs bool
	Ret     types.Type
}

// StructLayout lists the fields of a structure in declaration order.
type StructLayout struct {
	Path   types.Path
	Fields []types.Field
}

// FieldIndex returns the position of name in the layout.
func (s StructLayout) FieldIndex(name string) (int, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Project is the MIR of one compilation unit: procedures of every function
// plus the structs and callees they reference. Structs and Signatures are
// filled by CollectProject and only read while procedures are lowered.
type Project struct {
	Procs      []*Procedure
	Structs    map[string]StructLayout
	StructList []types.Path
	Signatures map[string]Signature
}

func NewProject() *Project {
	return &Project{
		Structs:    make(map[string]StructLayout),
		Signatures: make(map[string]Signature),
	}
}

// CollectProject records struct layouts and callee signatures from a
// resolved tree and the unit imports. Externs are keyed by bare name.
func CollectProject(root *ast.Module, imports *symbols.Imports) *Project {
	p := NewProject()
	root.Walk(func(m *ast.Module) {
		for _, st := range m.Structs {
			def := st.Definition()
			p.addStruct(st.Ann.Path, def.Fields)
		}
		for _, rt := range m.Routines() {
			kind := CalleeFunction
			if rt.Def == ast.RoutineCoroutine {
				kind = CalleeCoroutineInit
			}
			sig := rt.Signature()
			p.Signatures[rt.Ann.Path.String()] = Signature{Path: rt.Ann.Path, Kind: kind, Params: sig.Params, Ret: rt.Ret}
		}
		for _, ex := range m.Externs {
			sig := ex.Signature()
			path := types.Path{ex.Name}
			p.Signatures[ex.Name] = Signature{Path: path, Kind: CalleeExtern, Params: sig.Params, VarArgs: ex.VarArgs, Ret: ex.Ret}
		}
	})
	if imports != nil {
		for _, key := range imports.Order {
			sym := imports.Entries[key]
			path := types.ParsePath(key)
			switch sym.Type.Kind {
			case types.KindStructDef:
				p.addStruct(path, sym.Type.Fields)
			case types.KindFunctionDef:
				p.Signatures[key] = Signature{Path: path, Kind: CalleeFunction, Params: sym.Type.Params, Ret: sym.Type.Return()}
			}
		}
	}
	return p
}

func (p *Project) addStruct(path types.Path, fields []types.Field) {
	key := path.String()
	if _, ok := p.Structs[key]; !ok {
		p.StructList = append(p.StructList, path)
	}
	p.Structs[key] = StructLayout{Path: path, Fields: fields}
}

func (p *Project) Struct(path types.Path) (StructLayout, bool) {
	s, ok := p.Structs[path.String()]
	return s, ok
}

func (p *Project) Signature(path types.Path) (Signature, bool) {
	s, ok := p.Signatures[path.String()]
	return s, ok
}

// Procedure finds a lowered procedure by canonical path.
func (p *Project) Procedure(path types.Path) *Procedure {
	for _, proc := range p.Procs {
		if proc.Path.Equal(path) {
			return proc
		}
	}
	return nil
}

func (p *Project) Add(proc *Procedure) {
	p.Procs = append(p.Procs, proc)
}

// Functions lists the routines LowerModule lowers, in tree order.
func Functions(root *ast.Module) []*ast.Routine {
	var out []*ast.Routine
	root.Walk(func(m *ast.Module) {
		out = append(out, m.Functions...)
	})
	return out
}

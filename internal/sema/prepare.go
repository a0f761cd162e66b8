package sema

import (
	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/symbols"
	"bramble/internal/types"
)

// prepare assigns canonical paths, canonicalizes every type reference in
// item signatures and registers items in their module tables. Items are
// visible regardless of declaration order afterwards.
func prepare(m *ast.Module, parent types.Path) error {
	path := parent.Append(m.Name)
	m.Ann.Path = path
	m.Ann.Type = types.Unit
	tbl := symbols.NewModuleTable(m.Name)
	m.Ann.Sym = tbl

	for _, sub := range m.Modules {
		if err := prepare(sub, path); err != nil {
			return err
		}
	}

	canonParams := func(ps []ast.Param) error {
		for i := range ps {
			ty, err := canonizeTypeRef(path, ps[i].Type)
			if err != nil {
				return diag.Attach(err, ps[i].Span)
			}
			ps[i].Type = ty
		}
		return nil
	}
	declare := func(name string, ty types.Type, flags symbols.SymbolFlags, ann *ast.Annotation) error {
		if err := tbl.Add(name, ty, flags); err != nil {
			return errAlreadyDeclared(name).At(ann.Span)
		}
		ann.Path = path.Append(name)
		return nil
	}

	for _, r := range m.Routines() {
		if err := canonParams(r.Params); err != nil {
			return err
		}
		ret, err := canonizeTypeRef(path, r.Ret)
		if err != nil {
			return diag.Attach(err, r.Ann.Span)
		}
		r.Ret = ret
		if err := declare(r.Name, r.Signature(), 0, &r.Ann); err != nil {
			return err
		}
	}
	for _, st := range m.Structs {
		if err := canonParams(st.Fields); err != nil {
			return err
		}
		if err := declare(st.Name, st.Definition(), 0, &st.Ann); err != nil {
			return err
		}
	}
	for _, ex := range m.Externs {
		if err := canonParams(ex.Params); err != nil {
			return err
		}
		ret, err := canonizeTypeRef(path, ex.Ret)
		if err != nil {
			return diag.Attach(err, ex.Ann.Span)
		}
		ex.Ret = ret
		if err := declare(ex.Name, ex.Signature(), symbols.SymbolExtern, &ex.Ann); err != nil {
			return err
		}
	}
	return nil
}

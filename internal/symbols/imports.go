package symbols

import (
	"fmt"

	"bramble/internal/types"
)

// Imports holds symbols defined outside the compilation unit, keyed by
// canonical path string. It is filled before resolution and only read
// afterwards, so one instance may be shared by concurrent resolutions.
type Imports struct {
	Entries map[string]Symbol `msgpack:"e,omitempty"`
	Order   []string          `msgpack:"o,omitempty"`
}

func NewImports() *Imports {
	return &Imports{Entries: make(map[string]Symbol)}
}

// ImportFunction registers an external function under its canonical path.
func (im *Imports) ImportFunction(path types.Path, params []types.Type, ret types.Type) error {
	return im.add(path, types.FunctionDef(params, ret))
}

// ImportStruct registers an external struct definition.
func (im *Imports) ImportStruct(path types.Path, fields []types.Field) error {
	return im.add(path, types.StructDef(fields))
}

func (im *Imports) add(path types.Path, ty types.Type) error {
	if !path.IsCanonical() {
		return fmt.Errorf("import %s: %w", path, types.ErrPathNotValid)
	}
	key := path.String()
	if _, ok := im.Entries[key]; ok {
		return fmt.Errorf("import %s: %w", key, ErrAlreadyDeclared)
	}
	if im.Entries == nil {
		im.Entries = make(map[string]Symbol)
	}
	im.Entries[key] = Symbol{Name: path.Last(), Type: ty}
	im.Order = append(im.Order, key)
	return nil
}

// Get looks up an import by canonical path.
func (im *Imports) Get(path types.Path) (Symbol, bool) {
	if im == nil {
		return Symbol{}, false
	}
	s, ok := im.Entries[path.String()]
	return s, ok
}

func (im *Imports) Len() int {
	if im == nil {
		return 0
	}
	return len(im.Order)
}

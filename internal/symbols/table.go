package symbols

import (
	"errors"
	"fmt"

	"bramble/internal/types"
)

// ErrAlreadyDeclared is returned when a name is added twice to one table.
var ErrAlreadyDeclared = errors.New("already declared")

// Table maps names to symbols for one scope. Insertion order is kept so that
// dumps and encodings are deterministic.
type Table struct {
	Kind    ScopeKind         `msgpack:"k"`
	Name    string            `msgpack:"n,omitempty"`
	Symbols map[string]Symbol `msgpack:"s,omitempty"`
	Order   []string          `msgpack:"o,omitempty"`
}

func NewTable(kind ScopeKind, name string) *Table {
	return &Table{Kind: kind, Name: name}
}

func NewModuleTable(name string) *Table { return NewTable(ScopeModule, name) }

func NewRoutineTable(name string) *Table { return NewTable(ScopeRoutine, name) }

func NewBlockTable() *Table { return NewTable(ScopeBlock, "") }

// Add inserts a symbol. Redeclaring a name within the same table fails;
// shadowing happens across tables.
func (t *Table) Add(name string, ty types.Type, flags SymbolFlags) error {
	if _, ok := t.Symbols[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrAlreadyDeclared)
	}
	if t.Symbols == nil {
		t.Symbols = make(map[string]Symbol)
	}
	t.Symbols[name] = Symbol{Name: name, Type: ty, Flags: flags}
	t.Order = append(t.Order, name)
	return nil
}

func (t *Table) Get(name string) (Symbol, bool) {
	if t == nil {
		return Symbol{}, false
	}
	s, ok := t.Symbols[name]
	return s, ok
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Order)
}

// Each visits symbols in insertion order.
func (t *Table) Each(fn func(Symbol)) {
	if t == nil {
		return
	}
	for _, n := range t.Order {
		fn(t.Symbols[n])
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Kind: t.Kind, Name: t.Name}
	if len(t.Order) > 0 {
		out.Order = append([]string(nil), t.Order...)
		out.Symbols = make(map[string]Symbol, len(t.Symbols))
		for k, v := range t.Symbols {
			out.Symbols[k] = v
		}
	}
	return out
}

func (t *Table) String() string {
	if t.Name == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %s", t.Kind, t.Name)
}

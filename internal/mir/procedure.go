package mir

import (
	"fmt"

	"fortio.org/safecast"

	"bramble/internal/source"
	"bramble/internal/types"
)

// Procedure is the CFG of one function body. Blocks are indexed by id.
type Procedure struct {
	Path   types.Path
	Name   string
	Span   source.Span
	Ret    types.Type
	Params []VarID
	Vars   []VarDecl
	Temps  []TempDecl
	Blocks []BasicBlock
}

func NewProcedure(path types.Path, ret types.Type, span source.Span) *Procedure {
	return &Procedure{Path: path, Name: path.Last(), Ret: ret, Span: span}
}

func (p *Procedure) NewBlock() BlockID {
	raw, err := safecast.Conv[int32](len(p.Blocks))
	if err != nil {
		panic(fmt.Errorf("mir: block id overflow: %w", err))
	}
	id := BlockID(raw)
	p.Blocks = append(p.Blocks, BasicBlock{ID: id})
	return id
}

func (p *Procedure) Block(id BlockID) *BasicBlock {
	if id < 0 || int(id) >= len(p.Blocks) {
		panic(fmt.Sprintf("mir: %s: no block %s", p.Name, id))
	}
	return &p.Blocks[id]
}

func (p *Procedure) AddVar(decl VarDecl) VarID {
	raw, err := safecast.Conv[int32](len(p.Vars))
	if err != nil {
		panic(fmt.Errorf("mir: var id overflow: %w", err))
	}
	p.Vars = append(p.Vars, decl)
	return VarID(raw)
}

func (p *Procedure) AddTemp(ty types.Type) TempID {
	raw, err := safecast.Conv[int32](len(p.Temps))
	if err != nil {
		panic(fmt.Errorf("mir: temp id overflow: %w", err))
	}
	p.Temps = append(p.Temps, TempDecl{Type: ty})
	return TempID(raw)
}

func (p *Procedure) Var(id VarID) VarDecl {
	if id < 0 || int(id) >= len(p.Vars) {
		panic(fmt.Sprintf("mir: %s: unknown variable %s", p.Name, id))
	}
	return p.Vars[id]
}

func (p *Procedure) Temp(id TempID) TempDecl {
	if id < 0 || int(id) >= len(p.Temps) {
		panic(fmt.Sprintf("mir: %s: unknown temp %s", p.Name, id))
	}
	return p.Temps[id]
}

package mir

import (
	"fmt"

	"bramble/internal/source"
	"bramble/internal/types"
)

type BlockID int32
type VarID int32
type TempID int32

const (
	// EntryBlock is the first block of every procedure.
	EntryBlock BlockID = 0
	NoBlockID  BlockID = -1
	NoVarID    VarID   = -1
)

func (id BlockID) String() string { return fmt.Sprintf("bb%d", id) }
func (id VarID) String() string   { return fmt.Sprintf("_v%d", id) }
func (id TempID) String() string  { return fmt.Sprintf("_t%d", id) }

// ScopeID numbers the lexical block a variable was declared in; 0 is the
// routine body.
type ScopeID int32

// VarDecl describes a user variable or parameter.
type VarDecl struct {
	Name    string
	Mutable bool
	Param   bool
	Type    types.Type
	Scope   ScopeID
	Span    source.Span
}

// TempDecl describes a compiler temporary.
type TempDecl struct {
	Type types.Type
}

package sema

import (
	"bramble/internal/symbols"
	"bramble/internal/trace"
)

// DefaultEntryFn is the name of the program entry routine.
const DefaultEntryFn = "my_main"

// Policy holds the checks that differ between build targets.
type Policy struct {
	// EntryModule is the module holding the entry routine; empty means
	// the root module of the unit.
	EntryModule string
	EntryFn     string
	// ValidateEntry enables the () -> i64 check on the entry routine.
	ValidateEntry bool
	// AllowExternStructParams lets extern declarations take structure
	// parameters. Off by default: the C ABI lowering passes scalars only.
	AllowExternStructParams bool
}

func DefaultPolicy() Policy {
	return Policy{EntryFn: DefaultEntryFn, ValidateEntry: true}
}

type Options struct {
	Policy  Policy
	Imports *symbols.Imports
	// Tracer overrides the tracer carried by the context.
	Tracer trace.Tracer
}

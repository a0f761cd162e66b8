package symbols

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeBlock   ScopeKind = iota // generic block scope
	ScopeModule                   // module-level (items)
	ScopeRoutine                  // function or coroutine body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeBlock:
		return "block"
	case ScopeModule:
		return "module"
	case ScopeRoutine:
		return "routine"
	default:
		return "invalid"
	}
}

// IsBoundary reports whether plain identifier lookup may stop at this scope.
func (k ScopeKind) IsBoundary() bool {
	return k == ScopeModule || k == ScopeRoutine
}

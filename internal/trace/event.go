package trace

import (
	"fmt"
	"strings"
	"time"
)

// Level controls how much gets recorded.
type Level uint8

const (
	LevelOff    Level = iota // nothing
	LevelError               // only crash dumps
	LevelPhase               // driver and passes
	LevelDetail              // + modules and routines
	LevelDebug               // + individual nodes
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String, case-insensitive.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == want {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of the given scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeModule
	case LevelDebug:
		return true
	default:
		return false
	}
}

// Kind of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Smaller is coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // cli command, cache, unit io
	ScopePass                    // resolve, lower, simplify, codegen
	ScopeModule                  // one module or one procedure
	ScopeNode                    // statements and expressions
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeModule:
		return "module"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 для корневых спанов
	Worker   int    // индекс воркера драйвера, 0 вне пула
	Name     string // "resolve", "lower:root::main::f"
	Detail   string
	Extra    map[string]string
}

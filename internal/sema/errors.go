package sema

import (
	"errors"
	"fmt"
	"strings"

	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/types"
)

func errNotVariable(name string) *diag.Error {
	return diag.Newf(diag.SemaNotVariable, "%s is not a variable", name)
}

func errNotRoutine(name string) *diag.Error {
	return diag.Newf(diag.SemaNotRoutine, "%s is not a routine", name)
}

func errNotCoroutine(name string) *diag.Error {
	return diag.Newf(diag.SemaNotCoroutine, "%s is not a coroutine", name)
}

func errNotDefined(name string) *diag.Error {
	return diag.Newf(diag.SemaNotDefined, "%s is not defined", name)
}

func errAlreadyDeclared(name string) *diag.Error {
	return diag.Newf(diag.SemaAlreadyDeclared, "%s already declared", name)
}

func errArrayInvalidSize(n int64) *diag.Error {
	return diag.Newf(diag.SemaArrayInvalidSize, "Expected length > 0 for array, but found %d", n)
}

// pathError maps path algebra failures onto sema codes.
func pathError(err error, p types.Path) *diag.Error {
	switch {
	case errors.Is(err, types.ErrPathTooSuper):
		return diag.Newf(diag.SemaPathTooSuper, "Path too super: %s", p)
	case errors.Is(err, types.ErrEmptyPath):
		return diag.Newf(diag.SemaEmptyPath, "Empty path")
	default:
		return diag.Newf(diag.SemaPathNotValid, "Path is not valid: %s", p)
	}
}

type paramMismatch struct {
	index    int // 1-based
	expected types.Type
	got      types.Type
}

func errParamMismatch(path types.Path, ms []paramMismatch) *diag.Error {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = fmt.Sprintf("parameter %d expected %s but got %s", m.index, m.expected, m.got)
	}
	return diag.Newf(diag.SemaRoutineParamTypeMismatch,
		"One or more parameters have mismatching types for function %s: %s", path, strings.Join(parts, ", "))
}

func errInvalidCallTarget(kind ast.CallKind, path types.Path, ty types.Type) *diag.Error {
	return diag.Newf(diag.SemaRoutineCallInvalidTarget, "Expected %s but %s is a %s", kind, path, ty)
}

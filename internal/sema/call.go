package sema

import (
	"bramble/internal/ast"
	"bramble/internal/diag"
	"bramble/internal/types"
)

// call resolves arguments first, then the target, then checks arity and
// argument types against the target signature.
func (r *resolver) call(e, out *ast.Expr) (types.Type, error) {
	cd := e.Call
	args, err := r.exprs(cd.Args)
	if err != nil {
		return types.Unknown, err
	}

	sym, canon, err := r.scopes.LookupSymbolByPath(cd.Path)
	if err != nil {
		return types.Unknown, err
	}
	kind := cd.Call
	if sym.IsExtern() {
		kind = ast.CallExtern
	}

	ty := sym.Type
	var ret types.Type
	switch {
	case ty.Kind == types.KindFunctionDef && kind == ast.CallFunction,
		ty.Kind == types.KindExternDecl && kind == ast.CallExtern:
		ret = ty.Return()
	case ty.Kind == types.KindCoroutineDef && kind == ast.CallCoroutineInit:
		ret = types.Coroutine(ty.Return())
	default:
		return types.Unknown, errInvalidCallTarget(kind, cd.Path, ty)
	}

	switch {
	case !ty.VarArgs && len(args) != len(ty.Params):
		return types.Unknown, diag.Newf(diag.SemaRoutineCallWrongNumParams,
			"Incorrect number of parameters passed to routine: %s. Expected %d but got %d", cd.Path, len(ty.Params), len(args))
	case ty.VarArgs && len(args) < len(ty.Params):
		return types.Unknown, diag.Newf(diag.SemaFunctionParamsNotEnough,
			"Function %s expects at least %d parameters, but got %d", cd.Path, len(ty.Params), len(args))
	}

	var mismatches []paramMismatch
	for i, want := range ty.Params {
		if got := args[i].Ann.Type; !got.Equal(want) {
			mismatches = append(mismatches, paramMismatch{index: i + 1, expected: want, got: got})
		}
	}
	if len(mismatches) > 0 {
		return types.Unknown, errParamMismatch(cd.Path, mismatches)
	}

	out.Call = &ast.CallData{Call: kind, Path: canon, Args: args}
	return ret, nil
}

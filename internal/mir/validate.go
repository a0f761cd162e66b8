package mir

import (
	"errors"
	"fmt"

	"bramble/internal/diag"
)

// Validate checks the invariants of every procedure of a project.
// The result wraps a diag error with code MirInvalid.
func Validate(p *Project) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, proc := range p.Procs {
		if err := ValidateProcedure(proc); err != nil {
			errs = append(errs, fmt.Errorf("procedure %s: %w", proc.Path, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", diag.Newf(diag.MirInvalid, "MIR validation failed"), errors.Join(errs...))
}

func ValidateProcedure(proc *Procedure) error {
	if proc == nil {
		return nil
	}
	if len(proc.Blocks) == 0 {
		return errors.New("no blocks")
	}
	var errs []error

	if err := validateBlockIDs(proc); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlocksTerminated(proc); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(proc); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocalIDs(proc); err != nil {
		errs = append(errs, err)
	}
	if err := validatePredecessors(proc); err != nil {
		errs = append(errs, err)
	}
	if err := validateReturnReachable(proc); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validatePredecessors rejects non-entry blocks nothing jumps to.
func validatePredecessors(proc *Procedure) error {
	preds := make([]int, len(proc.Blocks))
	for i := range proc.Blocks {
		for _, s := range proc.Blocks[i].Term.Successors() {
			if s >= 0 && int(s) < len(preds) {
				preds[s]++
			}
		}
	}
	var errs []error
	for i, n := range preds {
		if BlockID(i) != EntryBlock && n == 0 { //nolint:gosec // bounded by block count
			errs = append(errs, fmt.Errorf("bb%d: no predecessor", i))
		}
	}
	return errors.Join(errs...)
}

func validateBlockIDs(proc *Procedure) error {
	var errs []error
	for i := range proc.Blocks {
		if int(proc.Blocks[i].ID) != i {
			errs = append(errs, fmt.Errorf("block at index %d has id %s", i, proc.Blocks[i].ID))
		}
	}
	return errors.Join(errs...)
}

// validateBlocksTerminated checks that every block ends with a terminator.
func validateBlocksTerminated(proc *Procedure) error {
	var errs []error
	for i := range proc.Blocks {
		if proc.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

func validateBlockTargets(proc *Procedure) error {
	var errs []error
	for i := range proc.Blocks {
		term := &proc.Blocks[i].Term
		if term.Kind == TermCallFn && term.Call == nil {
			errs = append(errs, fmt.Errorf("bb%d: call terminator without call", i))
			continue
		}
		for _, s := range term.Successors() {
			if s < 0 || int(s) >= len(proc.Blocks) {
				errs = append(errs, fmt.Errorf("bb%d: target %s does not exist", i, s))
			}
		}
	}
	return errors.Join(errs...)
}

// validateLocalIDs checks that every var and temp reference is declared.
func validateLocalIDs(proc *Procedure) error {
	var errs []error

	var checkLV func(lv LValue, where string)
	checkOp := func(op Operand, where string) {
		if op.Kind == OperandLValue {
			checkLV(op.LValue, where)
		}
	}
	checkLV = func(lv LValue, where string) {
		switch lv.Kind {
		case LVar:
			if lv.Var < 0 || int(lv.Var) >= len(proc.Vars) {
				errs = append(errs, fmt.Errorf("%s: variable %s does not exist", where, lv.Var))
			}
		case LTemp:
			if lv.Temp < 0 || int(lv.Temp) >= len(proc.Temps) {
				errs = append(errs, fmt.Errorf("%s: temp %s does not exist", where, lv.Temp))
			}
		case LAccess:
			if lv.Access == nil {
				errs = append(errs, fmt.Errorf("%s: access without base", where))
				return
			}
			checkLV(lv.Access.Base, where)
			if lv.Access.Proj.Kind == ProjIndex {
				checkOp(lv.Access.Proj.Index, where)
			}
		}
	}

	for _, id := range proc.Params {
		if id < 0 || int(id) >= len(proc.Vars) || !proc.Vars[id].Param {
			errs = append(errs, fmt.Errorf("parameter %s is not a declared parameter", id))
		}
	}
	for i := range proc.Blocks {
		bb := &proc.Blocks[i]
		for j := range bb.Stmts {
			st := &bb.Stmts[j]
			where := fmt.Sprintf("bb%d[%d]", i, j)
			checkLV(st.LValue, where)
			checkOp(st.RValue.L, where)
			if st.RValue.Kind == RBinOp {
				checkOp(st.RValue.R, where)
			}
			if st.RValue.Kind == RAddressOf {
				checkLV(st.RValue.Place, where)
			}
		}
		where := fmt.Sprintf("bb%d term", i)
		switch bb.Term.Kind {
		case TermCondGoTo:
			checkOp(bb.Term.Cond, where)
		case TermCallFn:
			if bb.Term.Call == nil {
				continue
			}
			for _, a := range bb.Term.Call.Args {
				checkOp(a, where)
			}
			if bb.Term.Call.HasDest {
				checkLV(bb.Term.Call.Dest, where)
			}
		}
	}
	return errors.Join(errs...)
}

func validateReturnReachable(proc *Procedure) error {
	reachable := computeReachability(proc)
	for i, ok := range reachable {
		if ok && proc.Blocks[i].Term.Kind == TermReturn {
			return nil
		}
	}
	return errors.New("no return reachable from entry")
}

package mir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes a human-readable listing of every procedure of p.
func Dump(w io.Writer, p *Project) error {
	if w == nil || p == nil {
		return nil
	}
	if len(p.StructList) > 0 {
		if _, err := fmt.Fprintf(w, "structs=%d\n", len(p.StructList)); err != nil {
			return err
		}
		for _, path := range p.StructList {
			st := p.Structs[path.String()]
			fields := make([]string, len(st.Fields))
			for i, f := range st.Fields {
				fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
			}
			if _, err := fmt.Fprintf(w, "  %s { %s }\n", path, strings.Join(fields, ", ")); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(w, "procs=%d\n", len(p.Procs)); err != nil {
		return err
	}
	for _, proc := range p.Procs {
		if err := DumpProcedure(w, proc); err != nil {
			return err
		}
	}
	return nil
}

func DumpProcedure(w io.Writer, proc *Procedure) error {
	if w == nil || proc == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nfn %s -> %s:\n", proc.Path, proc.Ret)
	if len(proc.Vars) > 0 {
		sb.WriteString("  vars:\n")
		for i, v := range proc.Vars {
			var flags []string
			if v.Param {
				flags = append(flags, "param")
			}
			if v.Mutable {
				flags = append(flags, "mut")
			}
			extra := ""
			if len(flags) > 0 {
				extra = " " + strings.Join(flags, " ")
			}
			fmt.Fprintf(&sb, "    %s: %s%s name=%s scope=%d\n", VarID(i), v.Type, extra, v.Name, v.Scope) //nolint:gosec // bounded by AddVar
		}
	}
	if len(proc.Temps) > 0 {
		sb.WriteString("  temps:\n")
		for i, t := range proc.Temps {
			fmt.Fprintf(&sb, "    %s: %s\n", TempID(i), t.Type) //nolint:gosec // bounded by AddTemp
		}
	}
	for i := range proc.Blocks {
		bb := &proc.Blocks[i]
		fmt.Fprintf(&sb, "  %s:\n", bb.ID)
		for j := range bb.Stmts {
			st := &bb.Stmts[j]
			fmt.Fprintf(&sb, "    %s = %s\n", FormatLValue(st.LValue), FormatRValue(st.RValue))
		}
		fmt.Fprintf(&sb, "    %s\n", FormatTerm(&bb.Term))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func FormatConst(c Constant) string {
	switch c.Kind {
	case ConstUnit:
		return "()"
	case ConstI8, ConstI16, ConstI32, ConstI64:
		return strconv.FormatInt(c.Int64(), 10) + "_" + c.Type().String()
	case ConstU8, ConstU16, ConstU32, ConstU64:
		return strconv.FormatUint(c.Bits, 10) + "_" + c.Type().String()
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstStringLiteral:
		return strconv.Quote(c.Str)
	case ConstNull:
		return "null"
	case ConstSizeOf:
		return "sizeof(" + c.SizeOf.String() + ")"
	}
	return "?const"
}

func FormatLValue(lv LValue) string {
	switch lv.Kind {
	case LVar:
		return lv.Var.String()
	case LTemp:
		return lv.Temp.String()
	case LReturnPointer:
		return "_ret"
	case LStatic:
		return "@" + lv.Static
	case LAccess:
		if lv.Access == nil {
			return "?access"
		}
		base := FormatLValue(lv.Access.Base)
		if lv.Access.Proj.Kind == ProjField {
			return fmt.Sprintf("%s.%s#%d", base, lv.Access.Proj.Field, lv.Access.Proj.Idx)
		}
		return fmt.Sprintf("%s[%s]", base, FormatOperand(lv.Access.Proj.Index))
	}
	return "?lvalue"
}

func FormatOperand(op Operand) string {
	if op.Kind == OperandConst {
		return "const " + FormatConst(op.Const)
	}
	return FormatLValue(op.LValue)
}

func FormatRValue(rv RValue) string {
	switch rv.Kind {
	case RUse:
		return FormatOperand(rv.L)
	case RBinOp:
		return fmt.Sprintf("%s(%s, %s)", rv.BinOp, FormatOperand(rv.L), FormatOperand(rv.R))
	case RUnOp:
		return fmt.Sprintf("%s(%s)", rv.UnOp, FormatOperand(rv.L))
	case RCast:
		return fmt.Sprintf("%s as %s", FormatOperand(rv.L), rv.CastTo)
	case RAddressOf:
		return "&" + FormatLValue(rv.Place)
	}
	return "?rvalue"
}

func FormatTerm(t *Terminator) string {
	switch t.Kind {
	case TermReturn:
		return "return"
	case TermGoTo:
		return "goto " + t.Target.String()
	case TermCondGoTo:
		return fmt.Sprintf("condgoto %s -> %s, %s", FormatOperand(t.Cond), t.True, t.False)
	case TermCallFn:
		c := t.Call
		args := make([]string, len(c.Args))
		for i, a := range c.Args {
			args[i] = FormatOperand(a)
		}
		dest := ""
		if c.HasDest {
			dest = FormatLValue(c.Dest) + " = "
		}
		return fmt.Sprintf("%scall %s %s(%s) -> %s", dest, c.Kind, c.Callee, strings.Join(args, ", "), c.Reentry)
	}
	return "<unterminated>"
}

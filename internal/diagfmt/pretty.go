package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bramble/internal/diag"
	"bramble/internal/source"
)

type palette struct {
	sev      map[diag.Severity]*color.Color
	loc      *color.Color
	gutter   *color.Color
	caret    *color.Color
	noteHead *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		loc:      color.New(color.Bold),
		gutter:   color.New(color.FgBlue),
		caret:    color.New(color.FgRed, color.Bold),
		noteHead: color.New(color.FgCyan),
	}
	all := []*color.Color{p.loc, p.gutter, p.caret, p.noteHead}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строку исходника с подчёркиванием ^~~~ по Span.
// Диагностики без файла печатаются с префиксом юнита.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var b strings.Builder
	for _, d := range bag.Items() {
		at, f := locate(fs, d.Primary, opts.PathMode)
		b.WriteString(p.loc.Sprint(header(d, at)))
		b.WriteString(" ")
		b.WriteString(p.sev[d.Severity].Sprintf("%s %s", d.Severity, d.Code.ID()))
		b.WriteString(": ")
		b.WriteString(d.Message)
		b.WriteString("\n")
		if f != nil {
			writeSnippet(&b, p, f, at, opts.Context)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				nat, _ := locate(fs, n.Span, opts.PathMode)
				fmt.Fprintf(&b, "  %s %s\n", p.noteHead.Sprint("note:"), n.Msg)
				if nat.File != "" {
					fmt.Fprintf(&b, "    at %s:%d:%d\n", nat.File, nat.Start.Line, nat.Start.Col)
				}
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func header(d diag.Diagnostic, at location) string {
	switch {
	case at.File != "":
		return fmt.Sprintf("%s:%d:%d:", at.File, at.Start.Line, at.Start.Col)
	case d.Unit != "":
		return d.Unit + ":"
	default:
		return "<unknown>:"
	}
}

func writeSnippet(b *strings.Builder, p palette, f *source.File, at location, context int) {
	first := at.Start.Line
	if context > 0 && uint32(context) < first { //nolint:gosec // context is small
		first -= uint32(context) //nolint:gosec // context is small
	} else if context > 0 {
		first = 1
	}
	width := len(fmt.Sprint(at.Start.Line))
	for ln := first; ln <= at.Start.Line; ln++ {
		fmt.Fprintf(b, " %s %s\n", p.gutter.Sprintf("%*d |", width, ln), f.Line(ln))
	}

	line := f.Line(at.Start.Line)
	col := int(at.Start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	pad := runewidth.StringWidth(line[:col])
	n := 1
	if at.End.Line == at.Start.Line && at.End.Col > at.Start.Col {
		end := min(int(at.End.Col)-1, len(line))
		n = max(runewidth.StringWidth(line[col:end]), 1)
	}
	mark := "^" + strings.Repeat("~", n-1)
	fmt.Fprintf(b, " %s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", pad), p.caret.Sprint(mark))
}

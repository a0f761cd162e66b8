package diag

import (
	"errors"
	"fmt"
	"testing"

	"bramble/internal/source"
)

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{SemaBindExpected, "SEM3030"},
		{MirUnsupported, "MIR4001"},
		{DrvReadUnit, "DRV5001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("ID(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
	if SemaIfExprMismatchArms.Title() == UnknownCode.Title() {
		t.Fatal("missing description for SemaIfExprMismatchArms")
	}
}

func TestAttachKeepsFirstSpan(t *testing.T) {
	inner := Newf(SemaNotDefined, "%s is not defined", "x")
	wrapped := fmt.Errorf("resolve f: %w", inner)

	first := source.Span{File: 1, Start: 4, End: 9}
	if err := Attach(wrapped, first); err != wrapped {
		t.Fatal("Attach must return its argument")
	}
	Attach(wrapped, source.Span{File: 1, Start: 0, End: 20})

	de, ok := AsError(wrapped)
	if !ok {
		t.Fatal("expected *Error in chain")
	}
	if de.Span != first {
		t.Fatalf("span = %v, want %v", de.Span, first)
	}
	d := FromError(wrapped)
	if d.Code != SemaNotDefined || d.Message != "resolve f: x is not defined" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestFromPlainError(t *testing.T) {
	d := FromError(errors.New("boom"))
	if d.Code != DrvInternal || d.Severity != SevError {
		t.Fatalf("unexpected %+v", d)
	}
}

func TestBagSortDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(SemaNotDefined, source.Span{Start: 9, End: 10}, "b"))
	b.Add(NewError(SemaNotDefined, source.Span{Start: 1, End: 2}, "a"))
	b.Add(NewError(SemaNotDefined, source.Span{Start: 1, End: 2}, "a"))
	b.Sort()
	b.Dedup()
	if b.Len() != 2 || b.Items()[0].Message != "a" {
		t.Fatalf("got %+v", b.Items())
	}
	if !b.HasErrors() {
		t.Fatal("expected errors")
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(Diagnostic{}) {
		t.Fatal("first add must succeed")
	}
	if b.Add(Diagnostic{}) {
		t.Fatal("limit ignored")
	}
	other := NewBag(2)
	other.Add(Diagnostic{Message: "x"})
	b.Merge(other)
	if b.Len() != 2 {
		t.Fatalf("merge lost items: %d", b.Len())
	}
}

func TestBagReporter(t *testing.T) {
	r := &BagReporter{Bag: NewBag(4), Unit: "main"}
	ReportErr(r, Errorf(SemaEmptyPath, source.Span{Start: 3, End: 3}, "Empty path"))
	items := r.Bag.Items()
	if len(items) != 1 || items[0].Unit != "main" || items[0].Code != SemaEmptyPath {
		t.Fatalf("got %+v", items)
	}
}

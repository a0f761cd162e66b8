package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "detail", "debug"} {
		lvl, err := ParseLevel(strings.ToUpper(name))
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if lvl.String() != name {
			t.Fatalf("round trip %q gave %q", name, lvl)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	outer := Begin(tr, ScopePass, "resolve", 0)
	inner := Begin(tr, ScopeModule, "module:root::main", outer.ID())
	Point(tr, ScopeNode, "bind", "x", inner.ID()) // filtered at detail
	inner.End("")
	outer.WithExtra("modules", "1").End("ok")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "→ resolve") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[3], "← resolve (ok) {modules=1}") {
		t.Fatalf("unexpected last line %q", lines[3])
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Begin(tr, ScopePass, "lower", 0).End("3 procs")

	dec := json.NewDecoder(&buf)
	var kinds []string
	for dec.More() {
		var ev map[string]any
		if err := dec.Decode(&ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		kinds = append(kinds, ev["kind"].(string))
	}
	if len(kinds) != 2 || kinds[0] != "begin" || kinds[1] != "end" {
		t.Fatalf("unexpected kinds %v", kinds)
	}
}

func TestRingTracerWraps(t *testing.T) {
	tr := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(tr, ScopeNode, name, "", 0)
	}
	snap := tr.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Fatalf("event %d = %q, want %q", i, snap[i].Name, want)
		}
	}
	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer must be disabled")
	}
	span := Begin(tr, ScopeDriver, "x", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatal("disabled span must be inert")
	}
}

func TestNewBothExposesRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("expected *MultiTracer, got %T", tr)
	}
	Begin(tr, ScopeDriver, "check", 0).End("")
	if ring := multi.Ring(); ring == nil || len(ring.Snapshot()) != 2 {
		t.Fatal("ring sink did not record events")
	}
	if buf.Len() == 0 {
		t.Fatal("stream sink wrote nothing")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context must yield Nop")
	}
	tr := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatal("tracer lost in context")
	}
	span := Begin(tr, ScopePass, "p", 0)
	ctx = WithParent(ctx, span)
	if ParentFrom(ctx) != span.ID() {
		t.Fatal("parent lost in context")
	}
}

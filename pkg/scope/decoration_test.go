package scope_test

import (
	"strings"
	"testing"

	"github.com/bastndev/bracketlens/pkg/grammar"
	"github.com/bastndev/bracketlens/pkg/scope"
)

func decorationsFor(t *testing.T, languageID, src string, opts scope.DecorationOptions) []scope.DecorationAnchor {
	t.Helper()

	set := grammar.NewBuiltinSet()
	g, _ := set.Lookup(languageID)
	doc, entries := parse(t, languageID, src)
	return scope.Decorations(doc, g, entries, opts)
}

func TestDecorationsLabelFormat(t *testing.T) {
	t.Parallel()

	anchors := decorationsFor(t, "javascript",
		"function f() {\n  return 1;\n}", scope.DefaultDecorationOptions())

	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(anchors))
	}
	a := anchors[0]
	if a.Label != "<~ #1-3 · function f()" {
		t.Errorf("label = %q", a.Label)
	}
	if a.Unmatched {
		t.Error("anchor unexpectedly unmatched")
	}
	if a.LineSpan != 3 {
		t.Errorf("line span = %d, expected 3", a.LineSpan)
	}
	// Anchor sits on the closing bracket.
	if a.Range.StartLine != 3 || a.Range.StartColumn != 1 {
		t.Errorf("anchor at %d:%d, expected 3:1", a.Range.StartLine, a.Range.StartColumn)
	}
}

func TestDecorationsMinScopeLines(t *testing.T) {
	t.Parallel()

	anchors := decorationsFor(t, "javascript",
		"short {\n}\ntall {\n  a;\n  b;\n}", scope.DefaultDecorationOptions())

	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(anchors))
	}
	if !strings.Contains(anchors[0].Label, "#3-6") {
		t.Errorf("expected the 4-line scope decorated, got %q", anchors[0].Label)
	}
}

func TestDecorationsUnmatchedPrefix(t *testing.T) {
	t.Parallel()

	anchors := decorationsFor(t, "javascript",
		"broken {\n  a;\n  b;\n", scope.DefaultDecorationOptions())

	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(anchors))
	}
	a := anchors[0]
	if !a.Unmatched {
		t.Fatal("expected unmatched anchor")
	}
	if !strings.HasPrefix(a.Label, scope.DefaultUnmatchedPrefix) {
		t.Errorf("label %q missing unmatched prefix", a.Label)
	}
}

func TestDecorationsSupersededByParentClose(t *testing.T) {
	t.Parallel()

	// The inner scope closes on the same line the outer one does; only
	// the outer scope is decorated.
	anchors := decorationsFor(t, "javascript",
		"outer {\n  inner {\n    x;\n  }}", scope.DefaultDecorationOptions())

	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(anchors))
	}
	if !strings.Contains(anchors[0].Label, "outer") {
		t.Errorf("expected outer scope decorated, got %q", anchors[0].Label)
	}
}

func TestDecorationsTruncationKeepsUnmatched(t *testing.T) {
	t.Parallel()

	// Five matched scopes plus one unmatched; cap at three.
	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString("block {\n  a;\n  b;\n}\n")
	}
	b.WriteString("broken {\n  c;\n  d;\n")

	opts := scope.DefaultDecorationOptions()
	opts.MaxDecorations = 3

	anchors := decorationsFor(t, "javascript", b.String(), opts)

	if len(anchors) != 3 {
		t.Fatalf("expected 3 anchors after truncation, got %d", len(anchors))
	}
	if !anchors[0].Unmatched {
		t.Error("expected the unmatched anchor to survive truncation first")
	}
}

func TestDecorationsBeyondDepthCap(t *testing.T) {
	t.Parallel()

	// Nesting one level deeper than the cap: the deep scope is still
	// decorated, visited as a flat remainder at the cap depth.
	src := "l1 {\n  l2 {\n    l3 {\n      x;\n      y;\n    }\n    a;\n  }\n  b;\n}"

	opts := scope.DefaultDecorationOptions()
	opts.MaxDepth = 2

	anchors := decorationsFor(t, "javascript", src, opts)

	if len(anchors) != 3 {
		t.Fatalf("expected 3 anchors, got %d: %+v", len(anchors), anchors)
	}
	var deep bool
	for _, a := range anchors {
		if strings.Contains(a.Label, "#3-6") {
			deep = true
		}
	}
	if !deep {
		t.Error("scope below the depth cap lost its decoration")
	}
}

func TestDecorationsFilterDisabled(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString("block {\n  a;\n  b;\n}\n")
	}

	opts := scope.DefaultDecorationOptions()
	opts.MaxDecorations = 2
	opts.FilterEnabled = false

	anchors := decorationsFor(t, "javascript", b.String(), opts)
	if len(anchors) != 5 {
		t.Fatalf("expected all 5 anchors with filter disabled, got %d", len(anchors))
	}
}

package scope

import (
	"reflect"
	"testing"

	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/grammar"
)

// FuzzMatch fuzzes the full tokenize/track/match pipeline with random input.
func FuzzMatch(f *testing.F) {
	seeds := []string{
		"",
		"{}",
		"function f() {\n  return 1;\n}",
		"{ [ ( ) ] }",
		"{ ] }",
		"(((((",
		")))))",
		"\"{ not a scope }\"",
		"'\\'' {",
		"// comment {\n}",
		"/* {\n} */ {\n}",
		"`raw\n{`\n{}",
		"{\n\"\n}\n",
		"\\\"",
		"/*",
		"line1\r\nline2 {\r\n}\r\n",
		"{\n  {\n    {\n    }\n  }\n}",
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	set := grammar.NewBuiltinSet()
	g, pattern := set.Lookup("javascript")

	f.Fuzz(func(t *testing.T, data []byte) {
		doc := document.New("fuzz.js", "javascript", data)

		// The pipeline should never panic.
		tokens := Scan(data, pattern)
		tracker := Track(data, g, 0)
		entries := Match(doc, g, tokens, tracker)

		validateEntries(t, entries, len(data))

		// Matching the same input twice must be deterministic.
		again := Match(doc, g, Scan(data, pattern), Track(data, g, 0))
		if !reflect.DeepEqual(entries, again) {
			t.Error("matching is not deterministic")
		}
	})
}

// validateEntries checks structural invariants over a scope tree: offsets in
// bounds, open before close, children inside their parent's span.
func validateEntries(t *testing.T, entries []*Entry, size int) {
	t.Helper()

	for _, e := range entries {
		if e.Open.Offset < 0 || e.Close.Offset > size {
			t.Errorf("entry offsets [%d, %d] out of bounds for input of length %d",
				e.Open.Offset, e.Close.Offset, size)
		}
		if e.Open.Offset > e.Close.Offset {
			t.Errorf("entry opens at %d after it closes at %d", e.Open.Offset, e.Close.Offset)
		}
		for _, child := range e.Children {
			if child.Open.Offset < e.Open.Offset || child.Close.Offset > e.Close.End() {
				t.Errorf("child [%d, %d] escapes parent [%d, %d]",
					child.Open.Offset, child.Close.Offset, e.Open.Offset, e.Close.Offset)
			}
		}
		validateEntries(t, e.Children, size)
	}
}

// FuzzStateAt verifies the lexical-state disjunction invariant on random
// input: InString is set exactly when one of the per-quote flags is.
func FuzzStateAt(f *testing.F) {
	seeds := []string{
		"",
		"\"abc\"",
		"'a' \"b\" `c`",
		"\"unterminated",
		"`multi\nline`",
		"// 'comment'\n\"s\"",
		"/* \" */ '",
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	set := grammar.NewBuiltinSet()
	g, _ := set.Lookup("javascript")

	f.Fuzz(func(t *testing.T, data []byte) {
		tracker := Track(data, g, 0)

		for offset := 0; offset <= len(data); offset++ {
			state := tracker.StateAt(offset)
			inAny := state.InSingleQuote || state.InDoubleQuote || state.InTemplate
			if state.InString != inAny {
				t.Fatalf("at offset %d: InString=%v but quote flags say %v",
					offset, state.InString, inAny)
			}
		}
	})
}

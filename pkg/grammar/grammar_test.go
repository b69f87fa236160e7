package grammar_test

import (
	"testing"

	"github.com/bastndev/bracketlens/pkg/grammar"
)

func TestCloserFor(t *testing.T) {
	t.Parallel()

	set := grammar.NewBuiltinSet()
	ruby, _ := set.Lookup("ruby")
	golang, _ := set.Lookup("go")

	tests := []struct {
		name      string
		grammar   *grammar.Grammar
		open      string
		expClose  string
		expMode   grammar.HeaderMode
		expOpener bool
	}{
		{name: "brace", grammar: golang, open: "{", expClose: "}", expMode: grammar.HeaderSmart, expOpener: true},
		{name: "paren", grammar: golang, open: "(", expClose: ")", expMode: grammar.HeaderBefore, expOpener: true},
		{name: "word pair def", grammar: ruby, open: "def", expClose: "end", expMode: grammar.HeaderBefore, expOpener: true},
		{name: "word pair do", grammar: ruby, open: "do", expClose: "end", expMode: grammar.HeaderBefore, expOpener: true},
		{name: "closer is not an opener", grammar: golang, open: "}", expOpener: false},
		{name: "unknown token", grammar: golang, open: "->", expOpener: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			closer, mode, ok := testCase.grammar.CloserFor(testCase.open)
			if ok != testCase.expOpener {
				t.Fatalf("CloserFor(%q) ok = %v, expected %v", testCase.open, ok, testCase.expOpener)
			}
			if !ok {
				return
			}
			if closer != testCase.expClose || mode != testCase.expMode {
				t.Errorf("CloserFor(%q) = (%q, %v), expected (%q, %v)",
					testCase.open, closer, mode, testCase.expClose, testCase.expMode)
			}
		})
	}
}

func TestCaseInsensitiveGrammar(t *testing.T) {
	t.Parallel()

	g := &grammar.Grammar{
		LanguageID:      "pascalish",
		WordPairs:       []grammar.BracketPair{{Open: "begin", Close: "end"}},
		CaseInsensitive: true,
	}

	if _, _, ok := g.CloserFor("BEGIN"); !ok {
		t.Error("expected BEGIN to match begin case-insensitively")
	}
	if !g.IsCloser("End") {
		t.Error("expected End to be a closer")
	}
	if !g.IsWordToken("BEGIN") || !g.IsWordToken("end") {
		t.Error("expected word tokens regardless of case")
	}
}

func TestClassifiers(t *testing.T) {
	t.Parallel()

	set := grammar.NewBuiltinSet()
	golang, _ := set.Lookup("go")

	if !golang.IsLineComment("//") {
		t.Error("expected // to be a line comment")
	}
	if golang.IsLineComment("#") {
		t.Error("# is not a go line comment")
	}
	if golang.BlockCloserFor("/*") != "*/" {
		t.Error("expected */ to close /*")
	}
	if golang.BlockCloserFor("*/") != "" {
		t.Error("closer must not be an opener")
	}

	delim, ok := golang.StringDelimFor("`")
	if !ok {
		t.Fatal("expected backtick string delimiter")
	}
	if !delim.Multiline {
		t.Error("expected raw string to be multiline")
	}
	if delim.Escape != 0 {
		t.Error("raw strings have no escape character")
	}
}

func TestLookupFallback(t *testing.T) {
	t.Parallel()

	set := grammar.NewBuiltinSet()

	g, pattern := set.Lookup("cobol")
	if g.LanguageID != "default" {
		t.Errorf("unknown language resolved to %q, expected default", g.LanguageID)
	}
	if pattern.Empty() {
		t.Error("fallback pattern must not be empty")
	}

	if set.Has("cobol") {
		t.Error("Has must not report fallback coverage")
	}
	if !set.Has("python") {
		t.Error("expected python grammar")
	}
}

func TestLanguagesSorted(t *testing.T) {
	t.Parallel()

	ids := grammar.NewBuiltinSet().Languages()
	if len(ids) == 0 {
		t.Fatal("no languages registered")
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("languages not sorted: %q before %q", ids[i-1], ids[i])
		}
	}
}

package grammar

import "sort"

// Built-in grammars for the languages the engine ships headers for.
// Unknown languages resolve to the default C-like grammar rather than
// failing (see Set.Lookup).

// symbolPairs is the common symbol bracket set shared by the C-like family.
func symbolPairs() []BracketPair {
	return []BracketPair{
		{Open: "{", Close: "}", Mode: HeaderSmart},
		{Open: "[", Close: "]", Mode: HeaderBefore},
		{Open: "(", Close: ")", Mode: HeaderBefore},
	}
}

func goGrammar() *Grammar {
	return &Grammar{
		LanguageID:   "go",
		LineComments: []string{"//"},
		BlockComments: []BlockComment{
			{Open: "/*", Close: "*/"},
		},
		Strings: []StringDelim{
			{Delim: `"`, Escape: '\\'},
			{Delim: "'", Escape: '\\'},
			{Delim: "`", Multiline: true},
		},
		SymbolPairs: symbolPairs(),
		Terminators: ";,",
	}
}

func javascriptGrammar(id string) *Grammar {
	return &Grammar{
		LanguageID:   id,
		LineComments: []string{"//"},
		BlockComments: []BlockComment{
			{Open: "/*", Close: "*/"},
		},
		Strings: []StringDelim{
			{Delim: `"`, Escape: '\\'},
			{Delim: "'", Escape: '\\'},
			{Delim: "`", Escape: '\\', Multiline: true},
		},
		SymbolPairs: symbolPairs(),
		Terminators: ";,",
	}
}

func jsonGrammar() *Grammar {
	return &Grammar{
		LanguageID: "json",
		Strings: []StringDelim{
			{Delim: `"`, Escape: '\\'},
		},
		SymbolPairs: []BracketPair{
			{Open: "{", Close: "}", Mode: HeaderBefore},
			{Open: "[", Close: "]", Mode: HeaderBefore},
		},
		Terminators: ",",
	}
}

func cssGrammar() *Grammar {
	return &Grammar{
		LanguageID: "css",
		BlockComments: []BlockComment{
			{Open: "/*", Close: "*/"},
		},
		Strings: []StringDelim{
			{Delim: `"`, Escape: '\\'},
			{Delim: "'", Escape: '\\'},
		},
		SymbolPairs: []BracketPair{
			{Open: "{", Close: "}", Mode: HeaderBefore},
			{Open: "[", Close: "]", Mode: HeaderBefore},
			{Open: "(", Close: ")", Mode: HeaderBefore},
		},
		Terminators: ";",
	}
}

func pythonGrammar() *Grammar {
	return &Grammar{
		LanguageID:   "python",
		LineComments: []string{"#"},
		Strings: []StringDelim{
			{Delim: `"""`, Escape: '\\', Multiline: true},
			{Delim: "'''", Escape: '\\', Multiline: true},
			{Delim: `"`, Escape: '\\'},
			{Delim: "'", Escape: '\\'},
		},
		SymbolPairs: []BracketPair{
			{Open: "{", Close: "}", Mode: HeaderBefore},
			{Open: "[", Close: "]", Mode: HeaderBefore},
			{Open: "(", Close: ")", Mode: HeaderBefore},
		},
		Terminators: ":,",
	}
}

func rubyGrammar() *Grammar {
	return &Grammar{
		LanguageID:   "ruby",
		LineComments: []string{"#"},
		Strings: []StringDelim{
			{Delim: `"`, Escape: '\\'},
			{Delim: "'", Escape: '\\'},
		},
		SymbolPairs: []BracketPair{
			{Open: "{", Close: "}", Mode: HeaderSmart},
			{Open: "[", Close: "]", Mode: HeaderBefore},
			{Open: "(", Close: ")", Mode: HeaderBefore},
		},
		WordPairs: []BracketPair{
			{Open: "def", Close: "end", Mode: HeaderBefore},
			{Open: "do", Close: "end", Mode: HeaderBefore},
		},
		Terminators: ";",
	}
}

func shellGrammar() *Grammar {
	return &Grammar{
		LanguageID:   "shell",
		LineComments: []string{"#"},
		Strings: []StringDelim{
			{Delim: `"`, Escape: '\\'},
			{Delim: "'"},
		},
		SymbolPairs: []BracketPair{
			{Open: "{", Close: "}", Mode: HeaderBefore},
			{Open: "(", Close: ")", Mode: HeaderBefore},
		},
		WordPairs: []BracketPair{
			{Open: "case", Close: "esac", Mode: HeaderBefore},
			{Open: "if", Close: "fi", Mode: HeaderBefore},
		},
		Terminators: ";",
	}
}

func defaultGrammar() *Grammar {
	g := javascriptGrammar("default")
	return g
}

// Set is an immutable collection of grammars keyed by language id, with
// their compiled token patterns built once up front.
type Set struct {
	grammars map[string]*Grammar
	patterns map[string]*Pattern
	fallback *Grammar
}

// NewBuiltinSet returns the Set of built-in grammars.
func NewBuiltinSet() *Set {
	grammars := []*Grammar{
		goGrammar(),
		javascriptGrammar("javascript"),
		javascriptGrammar("typescript"),
		jsonGrammar(),
		cssGrammar(),
		pythonGrammar(),
		rubyGrammar(),
		shellGrammar(),
	}

	set := &Set{
		grammars: make(map[string]*Grammar, len(grammars)+1),
		patterns: make(map[string]*Pattern, len(grammars)+1),
		fallback: defaultGrammar(),
	}

	for _, g := range grammars {
		set.grammars[g.LanguageID] = g
		set.patterns[g.LanguageID] = Compile(g)
	}
	set.grammars[set.fallback.LanguageID] = set.fallback
	set.patterns[set.fallback.LanguageID] = Compile(set.fallback)

	return set
}

// Lookup returns the grammar and compiled pattern for a language id.
// Unknown ids fall back to the default C-like grammar.
func (s *Set) Lookup(languageID string) (*Grammar, *Pattern) {
	if g, ok := s.grammars[languageID]; ok {
		return g, s.patterns[languageID]
	}
	return s.fallback, s.patterns[s.fallback.LanguageID]
}

// Has reports whether a language id has a dedicated grammar.
func (s *Set) Has(languageID string) bool {
	_, ok := s.grammars[languageID]
	return ok
}

// Languages returns the ids of all registered grammars, sorted.
func (s *Set) Languages() []string {
	ids := make([]string, 0, len(s.grammars))
	for id := range s.grammars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

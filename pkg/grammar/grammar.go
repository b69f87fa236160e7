// Package grammar defines the language-configurable grammar the scope engine
// parses under: comment markers, string delimiters, bracket pairs, and
// terminator characters. Grammars are pure data, compiled once into a token
// pattern (see Compile) and consumed by the scope packages.
package grammar

import "strings"

// HeaderMode controls where a scope's header label is inferred from.
type HeaderMode uint8

const (
	// HeaderSmart tries the text before the open token first, falling back
	// to the scope's interior content.
	HeaderSmart HeaderMode = iota

	// HeaderBefore only considers the text before the open token.
	HeaderBefore

	// HeaderInner only considers the scope's interior content.
	HeaderInner
)

// String returns the mode name.
func (m HeaderMode) String() string {
	switch m {
	case HeaderBefore:
		return "before"
	case HeaderInner:
		return "inner"
	default:
		return "smart"
	}
}

// BracketPair declares one open/close pair, either symbol brackets ("{"/"}")
// or word brackets ("begin"/"end"). Word pairs additionally require
// non-word-character boundaries when matched.
type BracketPair struct {
	Open  string
	Close string
	Mode  HeaderMode
}

// StringDelim declares one string delimiter and its escape-lead character.
type StringDelim struct {
	// Delim is the delimiter text ('"', "'", "`", `"""`, ...).
	Delim string

	// Escape is the escape-lead byte inside this string kind.
	// Zero means the string kind has no escapes.
	Escape byte

	// Multiline is true if the string may span lines.
	Multiline bool
}

// BlockComment declares one block comment open/close marker pair.
type BlockComment struct {
	Open  string
	Close string
}

// Grammar declares how one language's source text is classified.
type Grammar struct {
	// LanguageID identifies the language this grammar covers.
	LanguageID string

	// LineComments are markers that start a comment running to end of line.
	LineComments []string

	// BlockComments are open/close marker pairs for block comments.
	BlockComments []BlockComment

	// Strings are the string delimiters of the language.
	Strings []StringDelim

	// SymbolPairs are symbol bracket pairs.
	SymbolPairs []BracketPair

	// WordPairs are word bracket pairs, matched only at word boundaries.
	WordPairs []BracketPair

	// Terminators are characters that disqualify a "before" header when the
	// preceding text ends with one of them (e.g. ';').
	Terminators string

	// CaseInsensitive makes all token comparisons lowercase-normalized.
	CaseInsensitive bool
}

// Normalize lowercases token text when the grammar is case-insensitive.
// Every downstream comparison must go through this so the compiled pattern
// and the matcher agree.
func (g *Grammar) Normalize(text string) string {
	if g.CaseInsensitive {
		return strings.ToLower(text)
	}
	return text
}

// CloserFor returns the declared closer for an opening token, or ("", false)
// if the token is not a declared opener.
func (g *Grammar) CloserFor(open string) (string, HeaderMode, bool) {
	open = g.Normalize(open)
	for _, p := range g.SymbolPairs {
		if g.Normalize(p.Open) == open {
			return p.Close, p.Mode, true
		}
	}
	for _, p := range g.WordPairs {
		if g.Normalize(p.Open) == open {
			return p.Close, p.Mode, true
		}
	}
	return "", HeaderSmart, false
}

// IsCloser reports whether the token is a declared closing token.
func (g *Grammar) IsCloser(text string) bool {
	text = g.Normalize(text)
	for _, p := range g.SymbolPairs {
		if g.Normalize(p.Close) == text {
			return true
		}
	}
	for _, p := range g.WordPairs {
		if g.Normalize(p.Close) == text {
			return true
		}
	}
	return false
}

// IsWordToken reports whether the token belongs to a word bracket pair.
func (g *Grammar) IsWordToken(text string) bool {
	text = g.Normalize(text)
	for _, p := range g.WordPairs {
		if g.Normalize(p.Open) == text || g.Normalize(p.Close) == text {
			return true
		}
	}
	return false
}

// BlockCloserFor returns the closer for a block comment opener, or "" if the
// text is not a block comment opener.
func (g *Grammar) BlockCloserFor(open string) string {
	open = g.Normalize(open)
	for _, bc := range g.BlockComments {
		if g.Normalize(bc.Open) == open {
			return bc.Close
		}
	}
	return ""
}

// IsLineComment reports whether the token is a line comment marker.
func (g *Grammar) IsLineComment(text string) bool {
	text = g.Normalize(text)
	for _, lc := range g.LineComments {
		if g.Normalize(lc) == text {
			return true
		}
	}
	return false
}

// StringDelimFor returns the string delimiter declaration matching the token,
// or (StringDelim{}, false).
func (g *Grammar) StringDelimFor(text string) (StringDelim, bool) {
	text = g.Normalize(text)
	for _, s := range g.Strings {
		if g.Normalize(s.Delim) == text {
			return s, true
		}
	}
	return StringDelim{}, false
}

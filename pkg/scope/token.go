// Package scope implements the bracket/scope parsing engine: a lexical
// state tracker, a nested-scope matcher that builds a scope tree while
// skipping comments and strings, header inference, decoration generation,
// and an incremental re-parser.
package scope

import (
	"github.com/bastndev/bracketlens/pkg/grammar"
)

// Token is one candidate token occurrence found by scanning with the
// compiled grammar pattern. Tokens are ephemeral; they are not retained
// past a parse pass except inside the token cache.
type Token struct {
	// Offset is the byte index where the token starts.
	Offset int

	// Text is the matched token text.
	Text string
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// Scan runs the compiled pattern over content and returns every candidate
// token in document order. Classification (live code vs. string/comment)
// happens later in the matcher; Scan is purely positional.
func Scan(content []byte, pattern *grammar.Pattern) []Token {
	matches := pattern.FindAll(content)
	if len(matches) == 0 {
		return nil
	}

	tokens := make([]Token, len(matches))
	for i, m := range matches {
		tokens[i] = Token{
			Offset: m[0],
			Text:   string(content[m[0]:m[1]]),
		}
	}
	return tokens
}

package scope

import (
	"bytes"

	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/grammar"
)

// openScope is one frame on the matcher's stack of open scopes.
type openScope struct {
	open     Token
	closer   string
	mode     grammar.HeaderMode
	children []*Entry
}

// Match consumes the token stream plus the tracker's state snapshots and
// builds the nested scope tree for the document.
//
// Tokens inside strings or comments have no scope-tree effect. Comment
// openers skip the matcher forward past their closer (or end of line)
// directly. Inline scopes, whose open and close share a line, are dropped
// unless unmatched: they cannot usefully host an end-of-line header. Any
// scope still open at end of input is force-closed at the final offset and
// flagged unmatched.
func Match(doc *document.Document, g *grammar.Grammar, tokens []Token, tracker *Tracker) []*Entry {
	var top []*Entry
	var stack []*openScope

	appendEntry := func(e *Entry) {
		if len(stack) > 0 {
			frame := stack[len(stack)-1]
			frame.children = append(frame.children, e)
			return
		}
		top = append(top, e)
	}

	// complete pops the top frame against an actual closing token.
	complete := func(tok Token) {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entry := &Entry{
			Open:      frame.open,
			Close:     tok,
			Mode:      frame.mode,
			Unmatched: g.Normalize(frame.closer) != g.Normalize(tok.Text),
			Children:  frame.children,
		}

		if !entry.Unmatched && doc.Line(entry.Open.Offset) == doc.Line(tok.Offset) {
			// Inline scope: drop it, promoting any surviving children.
			for _, child := range entry.Children {
				appendEntry(child)
			}
			return
		}

		appendEntry(entry)
	}

	skipUntil := -1

	for _, tok := range tokens {
		if tok.Offset < skipUntil {
			continue
		}

		if tracker.StateAt(tok.Offset).Suppressed() {
			continue
		}

		// Comment openers fast-forward past their extent.
		if g.IsLineComment(tok.Text) {
			skipUntil = lineEnd(doc, tok.Offset)
			continue
		}
		if closer := g.BlockCloserFor(tok.Text); closer != "" {
			skipUntil = blockCommentEnd(doc.Content, tok.End(), closer)
			continue
		}

		if g.IsWordToken(tok.Text) && !atWordBoundary(doc.Content, tok) {
			continue
		}

		if closer, mode, ok := g.CloserFor(tok.Text); ok {
			stack = append(stack, &openScope{open: tok, closer: closer, mode: mode})
			continue
		}

		if g.IsCloser(tok.Text) {
			if len(stack) == 0 {
				// Closer with no open scope: synthetic zero-width entry.
				top = append(top, &Entry{
					Open:      Token{Offset: tok.Offset},
					Close:     tok,
					Unmatched: true,
				})
				continue
			}
			complete(tok)
		}
	}

	// Force-close anything left open at end of document.
	eof := Token{Offset: len(doc.Content)}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entry := &Entry{
			Open:      frame.open,
			Close:     eof,
			Mode:      frame.mode,
			Unmatched: true,
			Children:  frame.children,
		}
		appendEntry(entry)
	}

	return top
}

// lineEnd returns the offset just past the line containing offset.
func lineEnd(doc *document.Document, offset int) int {
	line := doc.Line(offset)
	if line < 1 || line > len(doc.Lines) {
		return len(doc.Content)
	}
	return doc.Lines[line-1].EndOffset
}

// blockCommentEnd returns the offset just past the block comment closer,
// or end of content if the comment never closes.
func blockCommentEnd(content []byte, from int, closer string) int {
	idx := bytes.Index(content[from:], []byte(closer))
	if idx < 0 {
		return len(content)
	}
	return from + idx + len(closer)
}

// atWordBoundary reports whether a word-bracket token has non-word
// characters on both sides, so bracket words inside longer identifiers do
// not match.
func atWordBoundary(content []byte, tok Token) bool {
	if tok.Offset > 0 && isWordChar(content[tok.Offset-1]) {
		return false
	}
	end := tok.End()
	if end < len(content) && isWordChar(content[end]) {
		return false
	}
	return true
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

package scope

import (
	"strings"

	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/grammar"
)

// FallbackParse is the designated fallback parser: a simpler,
// non-optimized full scan used when the main parse path fails. It matches
// only single-byte symbol pairs, with naive string and comment skipping,
// and never panics on any input.
func FallbackParse(doc *document.Document, g *grammar.Grammar) []*Entry {
	opens := make(map[byte]grammar.BracketPair)
	closes := make(map[byte]struct{})
	for _, p := range g.SymbolPairs {
		if len(p.Open) == 1 && len(p.Close) == 1 {
			opens[p.Open[0]] = p
			closes[p.Close[0]] = struct{}{}
		}
	}

	quotes := make(map[byte]struct{})
	for _, s := range g.Strings {
		if len(s.Delim) == 1 {
			quotes[s.Delim[0]] = struct{}{}
		}
	}

	var lineComment string
	if len(g.LineComments) > 0 {
		lineComment = g.LineComments[0]
	}
	var blockOpen, blockClose string
	if len(g.BlockComments) > 0 {
		blockOpen = g.BlockComments[0].Open
		blockClose = g.BlockComments[0].Close
	}

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

	content := doc.Content
	var inQuote byte
	escaped := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inQuote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == inQuote || ch == '\n':
				inQuote = 0
			}
			continue
		}

		if lineComment != "" && strings.HasPrefix(string(content[i:]), lineComment) {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}

		if blockOpen != "" && strings.HasPrefix(string(content[i:]), blockOpen) {
			idx := strings.Index(string(content[i+len(blockOpen):]), blockClose)
			if idx < 0 {
				break
			}
			i += len(blockOpen) + idx + len(blockClose) - 1
			continue
		}

		if _, isQuote := quotes[ch]; isQuote {
			inQuote = ch
			continue
		}

		if pair, isOpen := opens[ch]; isOpen {
			stack = append(stack, &openScope{
				open:   Token{Offset: i, Text: string(ch)},
				closer: pair.Close,
				mode:   pair.Mode,
			})
			continue
		}

		if _, isClose := closes[ch]; isClose {
			tok := Token{Offset: i, Text: string(ch)}
			if len(stack) == 0 {
				top = append(top, &Entry{
					Open:      Token{Offset: i},
					Close:     tok,
					Unmatched: true,
				})
				continue
			}

			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			entry := &Entry{
				Open:      frame.open,
				Close:     tok,
				Mode:      frame.mode,
				Unmatched: frame.closer != tok.Text,
				Children:  frame.children,
			}

			if !entry.Unmatched && doc.Line(entry.Open.Offset) == doc.Line(tok.Offset) {
				for _, child := range entry.Children {
					appendEntry(child)
				}
				continue
			}
			appendEntry(entry)
		}
	}

	eof := Token{Offset: len(content)}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		appendEntry(&Entry{
			Open:      frame.open,
			Close:     eof,
			Mode:      frame.mode,
			Unmatched: true,
			Children:  frame.children,
		})
	}

	return top
}

package grammar

import (
	"regexp"
	"strings"
)

// Pattern is the compiled token matcher for one grammar: a single
// alternation of every distinct literal token, used to scan text for
// candidate token occurrences.
type Pattern struct {
	re *regexp.Regexp
}

// Compile builds the combined token pattern for a grammar.
//
// Every distinct non-empty literal (comment openers/closers, line comment
// markers, string delimiters and their escape-lead characters, bracket
// openers/closers of both kinds) is escaped for literal matching, internal
// whitespace runs are normalized to a single whitespace match, and
// duplicates are removed preserving first occurrence. An empty token list
// compiles to a matcher that matches nothing; this is not an error.
func Compile(g *Grammar) *Pattern {
	var literals []string

	for _, bc := range g.BlockComments {
		literals = append(literals, bc.Open, bc.Close)
	}
	literals = append(literals, g.LineComments...)
	for _, s := range g.Strings {
		if s.Escape != 0 {
			literals = append(literals, string(s.Escape))
		}
		literals = append(literals, s.Delim)
	}
	for _, p := range g.SymbolPairs {
		literals = append(literals, p.Open, p.Close)
	}
	for _, p := range g.WordPairs {
		literals = append(literals, p.Open, p.Close)
	}

	alternatives := dedupeEscaped(literals)
	if len(alternatives) == 0 {
		return &Pattern{}
	}

	expr := strings.Join(alternatives, "|")
	if g.CaseInsensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		// Malformed token sets degrade to an empty-match pattern.
		return &Pattern{}
	}

	return &Pattern{re: re}
}

// dedupeEscaped escapes literals for literal matching, normalizes internal
// whitespace runs to \s+, drops empties, and removes duplicates preserving
// first occurrence. Longer literals sort before their prefixes so the
// alternation prefers the longest token at a position.
func dedupeEscaped(literals []string) []string {
	seen := make(map[string]struct{}, len(literals))
	var out []string

	for _, lit := range literals {
		if lit == "" {
			continue
		}
		escaped := escapeLiteral(lit)
		if _, dup := seen[escaped]; dup {
			continue
		}
		seen[escaped] = struct{}{}
		out = append(out, escaped)
	}

	// Stable by length so `"""` wins over `"` and `/*` over `/`.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}

	return out
}

// escapeLiteral quotes a literal for regexp use, mapping internal
// whitespace runs to a single-whitespace match.
func escapeLiteral(lit string) string {
	fields := strings.Fields(lit)
	if len(fields) == 0 {
		// Pure-whitespace literal.
		return `\s+`
	}

	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}

	joined := strings.Join(quoted, `\s+`)

	// Preserve leading/trailing whitespace as a whitespace match.
	if lit != strings.TrimLeft(lit, " \t") {
		joined = `\s+` + joined
	}
	if lit != strings.TrimRight(lit, " \t") {
		joined += `\s+`
	}

	return joined
}

// Empty reports whether this pattern matches nothing.
func (p *Pattern) Empty() bool {
	return p == nil || p.re == nil
}

// FindAll returns the [start, end) byte offsets of every candidate token
// occurrence in content, in document order.
func (p *Pattern) FindAll(content []byte) [][2]int {
	if p.Empty() || len(content) == 0 {
		return nil
	}

	matches := p.re.FindAllIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([][2]int, len(matches))
	for i, m := range matches {
		out[i] = [2]int{m[0], m[1]}
	}
	return out
}

package scope

import (
	"regexp"
	"strings"

	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/grammar"
)

// DefaultMaxHeaderLength bounds header label length before truncation.
const DefaultMaxHeaderLength = 60

// maxInnerLines bounds how far inner-header inference looks into a scope.
const maxInnerLines = 16

// Ellipsis is appended when a header is truncated.
const Ellipsis = "…"

// HeaderContext carries the sibling/parent offsets header inference needs.
type HeaderContext struct {
	// PrevEnd is the end offset of the previous sibling, or 0.
	PrevEnd int

	// ParentOpenEnd is the end offset of the parent's open token, or 0.
	ParentOpenEnd int

	// MaxLength truncates the final header; <= 0 selects the default.
	MaxLength int
}

// InferHeader derives the short human-readable label for a scope entry,
// honoring the entry's header mode: "before" takes text preceding the open
// token, "inner" takes the first content inside it, "smart" tries before
// then inner. Returns "" when no acceptable header exists.
func InferHeader(doc *document.Document, g *grammar.Grammar, e *Entry, hctx HeaderContext) string {
	maxLen := hctx.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxHeaderLength
	}

	var header string

	if e.Mode != grammar.HeaderInner {
		header = beforeHeader(doc, g, e, hctx)
	}
	if header == "" && e.Mode != grammar.HeaderBefore {
		header = innerHeader(doc, e)
	}
	if header == "" {
		return ""
	}

	header = classifyAndCap(header)
	return truncate(header, maxLen)
}

// beforeHeader takes the text from the later of (previous sibling end,
// parent open end) to the entry's open token, restricted to the open
// token's line plus one prior line.
func beforeHeader(doc *document.Document, g *grammar.Grammar, e *Entry, hctx HeaderContext) string {
	from := hctx.PrevEnd
	if hctx.ParentOpenEnd > from {
		from = hctx.ParentOpenEnd
	}

	openLine := doc.Line(e.Open.Offset)
	if openLine > 1 {
		prevStart := doc.Lines[openLine-2].StartOffset
		if prevStart > from {
			from = prevStart
		}
	} else if openLine == 1 && from < 0 {
		from = 0
	}

	text := collapseWhitespace(string(doc.Slice(from, e.Open.Offset)))
	if text == "" || isPurePunctuation(text) {
		return ""
	}

	// A trailing terminator means the preceding statement already ended;
	// its text does not describe this scope.
	if g.Terminators != "" && strings.ContainsRune(g.Terminators, rune(text[len(text)-1])) {
		return ""
	}

	return text
}

// innerHeader takes the first line of content strictly inside the open
// token, scanning up to maxInnerLines lines bounded by the entry's close.
func innerHeader(doc *document.Document, e *Entry) string {
	from := e.Open.End()
	to := e.Close.Offset
	if to > len(doc.Content) {
		to = len(doc.Content)
	}
	if from >= to {
		return ""
	}

	startLine := doc.Line(from)
	lastLine := startLine + maxInnerLines - 1
	if closeLine := doc.Line(to); closeLine < lastLine {
		lastLine = closeLine
	}

	for line := startLine; line <= lastLine && line <= doc.LineCount(); line++ {
		info := doc.Lines[line-1]
		segStart := info.StartOffset
		if segStart < from {
			segStart = from
		}
		segEnd := info.NewlineStart
		if segEnd > to {
			segEnd = to
		}

		text := collapseWhitespace(string(doc.Slice(segStart, segEnd)))
		if text == "" || text == e.Open.Text {
			continue
		}
		return text
	}

	return ""
}

// Content-classification patterns. These inspect the raw header text and
// select a type-specific word cap and suffix glyph, replacing the default
// single-word cap.
var (
	reAsyncSig   = regexp.MustCompile(`\basync\b`)
	reExportSig  = regexp.MustCompile(`^\s*(export|public|module\.exports)\b`)
	reGenericSig = regexp.MustCompile(`<[^<>]*>\s*\(`)
	rePropsSig   = regexp.MustCompile(`\.\.\.[A-Za-z_]\w*`)
	reCSSBlock   = regexp.MustCompile(`^[.#@]?[\w-]+(\s*[,>+~]\s*[.#]?[\w-]+)*$`)
	reControlKw  = regexp.MustCompile(`^\s*(if|else|try|catch|finally|for|while|switch)\b`)
	reFuncSig    = regexp.MustCompile(`=>|\bfunction\b|\bfunc\b|\bdef\b|\bclass\b`)

	// headerFilter is the single pre-compiled alternation stripping fixed
	// punctuation/keyword tokens before word-counting.
	headerFilter = regexp.MustCompile(
		`\b(export|default|public|private|protected|static|readonly|abstract|return)\b|=>|[{};=]`)
)

// Suffix glyphs appended by the classification pass.
const (
	suffixAsync   = " ⚡"
	suffixComplex = " ✦"
)

// classifyAndCap applies the secondary content-classification pass: a
// type-specific word cap and optional suffix glyph, after stripping the
// fixed filter tokens.
func classifyAndCap(raw string) string {
	wordCap, suffix := classify(raw)

	stripped := collapseWhitespace(headerFilter.ReplaceAllString(raw, " "))
	if stripped == "" {
		return ""
	}

	words := strings.Fields(stripped)
	if len(words) > wordCap {
		words = words[:wordCap]
	}

	return strings.Join(words, " ") + suffix
}

// classify returns the word cap and suffix for a raw header, in pattern
// precedence order. The default is a single-word cap with no suffix.
func classify(raw string) (int, string) {
	switch {
	case reAsyncSig.MatchString(raw):
		return 3, suffixAsync
	case reGenericSig.MatchString(raw):
		return 3, suffixComplex
	case reExportSig.MatchString(raw):
		return 3, ""
	case reFuncSig.MatchString(raw):
		return 3, ""
	case rePropsSig.MatchString(raw):
		return 2, ""
	case reControlKw.MatchString(raw):
		return 2, ""
	case reCSSBlock.MatchString(strings.TrimSpace(raw)):
		return 2, ""
	default:
		return 1, ""
	}
}

// collapseWhitespace trims and collapses internal whitespace runs to one
// space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isPurePunctuation reports whether the text contains no word characters.
func isPurePunctuation(s string) bool {
	for i := 0; i < len(s); i++ {
		if isWordChar(s[i]) {
			return false
		}
	}
	return true
}

// truncate bounds a header to maxLen runes, appending an ellipsis when
// exceeded.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + Ellipsis
}

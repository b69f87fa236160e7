package scope

import (
	"sort"
	"strings"

	"github.com/bastndev/bracketlens/pkg/grammar"
)

// DefaultSnapshotInterval is the default character interval between
// lexical-state snapshots.
const DefaultSnapshotInterval = 100

// LexicalState is the compact lexical state at one byte offset: which
// string kind or comment kind encloses the offset, and whether an escape
// is pending. InString is always the disjunction of the three string-kind
// flags; the tracker maintains that invariant on every transition.
type LexicalState struct {
	Offset         int
	InString       bool
	InSingleQuote  bool
	InDoubleQuote  bool
	InTemplate     bool
	InBlockComment bool
	InLineComment  bool
	PendingEscape  bool

	// delim is the index into the grammar's string declarations of the
	// delimiter that opened the current string. The kind flags alone
	// cannot tell same-kind delimiters apart (`"` vs `"""`), which differ
	// in multiline and escape behavior. Only meaningful while InString.
	delim int16
}

// InComment reports whether the state is inside either comment kind.
func (s LexicalState) InComment() bool {
	return s.InBlockComment || s.InLineComment
}

// Suppressed reports whether tokens at this state are dead text
// (inside a string or a comment).
func (s LexicalState) Suppressed() bool {
	return s.InString || s.InComment()
}

func (s *LexicalState) syncInString() {
	s.InString = s.InSingleQuote || s.InDoubleQuote || s.InTemplate
}

// Tracker walks a document once, character by character, and snapshots the
// lexical state at fixed intervals plus the final offset. StateAt replays
// from the nearest snapshot, bounding lookup cost to the snapshot interval
// regardless of document size.
type Tracker struct {
	content   []byte
	grammar   *grammar.Grammar
	interval  int
	snapshots []LexicalState
}

// Track scans content under the grammar and returns a Tracker with its
// snapshot sequence populated. interval <= 0 selects the default.
func Track(content []byte, g *grammar.Grammar, interval int) *Tracker {
	if interval <= 0 {
		interval = DefaultSnapshotInterval
	}

	t := &Tracker{
		content:  content,
		grammar:  g,
		interval: interval,
	}

	var st LexicalState
	pos := 0
	nextSnap := 0

	for pos < len(content) {
		if pos >= nextSnap {
			st.Offset = pos
			t.snapshots = append(t.snapshots, st)
			nextSnap += interval
			if nextSnap <= pos {
				nextSnap = pos + interval
			}
		}
		st, pos = t.step(st, pos)
	}

	// Unconditional snapshot at the final offset.
	st.Offset = len(content)
	t.snapshots = append(t.snapshots, st)

	return t
}

// Snapshots returns the offset-ordered snapshot sequence.
func (t *Tracker) Snapshots() []LexicalState {
	return t.snapshots
}

// SizeBytes estimates the memory held by the snapshot sequence.
func (t *Tracker) SizeBytes() int {
	const perSnapshot = 16 // packed estimate, not exact measurement
	return len(t.snapshots) * perSnapshot
}

// StateAt returns the exact lexical state in effect at the given offset:
// the latest snapshot at or before it, replayed character by character up
// to the target.
func (t *Tracker) StateAt(offset int) LexicalState {
	if offset <= 0 || len(t.snapshots) == 0 {
		return LexicalState{Offset: offset}
	}

	idx := sort.Search(len(t.snapshots), func(i int) bool {
		return t.snapshots[i].Offset > offset
	}) - 1
	if idx < 0 {
		return LexicalState{Offset: offset}
	}

	st := t.snapshots[idx]
	pos := st.Offset
	for pos < offset && pos < len(t.content) {
		st, pos = t.step(st, pos)
	}
	st.Offset = offset
	return st
}

// step applies the transition rules to the character(s) at pos and returns
// the new state and position. Rules fire in precedence order: pending
// escape, escape lead, line comment, block comment, string toggling.
func (t *Tracker) step(st LexicalState, pos int) (LexicalState, int) {
	ch := t.content[pos]

	if st.InString {
		// An escaped character consumes unconditionally.
		if st.PendingEscape {
			st.PendingEscape = false
			return st, pos + 1
		}

		if esc := t.activeEscape(st); esc != 0 && ch == esc {
			st.PendingEscape = true
			return st, pos + 1
		}

		if n := t.closingDelimLen(st, pos); n > 0 {
			st.InSingleQuote = false
			st.InDoubleQuote = false
			st.InTemplate = false
			st.syncInString()
			return st, pos + n
		}

		// Non-multiline strings are force-closed by a newline.
		if ch == '\n' && !t.activeMultiline(st) {
			st.InSingleQuote = false
			st.InDoubleQuote = false
			st.InTemplate = false
			st.syncInString()
		}
		return st, pos + 1
	}

	if st.InLineComment {
		if ch == '\n' {
			st.InLineComment = false
		}
		return st, pos + 1
	}

	if st.InBlockComment {
		if n := t.blockCloserLen(pos); n > 0 {
			st.InBlockComment = false
			return st, pos + n
		}
		return st, pos + 1
	}

	if n := t.lineCommentLen(pos); n > 0 {
		st.InLineComment = true
		return st, pos + n
	}

	if n := t.blockOpenerLen(pos); n > 0 {
		st.InBlockComment = true
		return st, pos + n
	}

	if idx, n := t.openingDelimAt(pos); n > 0 {
		switch kindOfDelim(t.grammar.Strings[idx].Delim) {
		case quoteSingle:
			st.InSingleQuote = true
		case quoteDouble:
			st.InDoubleQuote = true
		case quoteTemplate:
			st.InTemplate = true
		}
		st.delim = int16(idx)
		st.syncInString()
		return st, pos + n
	}

	return st, pos + 1
}

type quoteKind uint8

const (
	quoteSingle quoteKind = iota
	quoteDouble
	quoteTemplate
)

func kindOfDelim(delim string) quoteKind {
	switch {
	case delim == "" || delim[0] == '"':
		return quoteDouble
	case delim[0] == '\'':
		return quoteSingle
	case delim[0] == '`':
		return quoteTemplate
	default:
		return quoteTemplate
	}
}

// activeDelim returns the declared delimiter that opened the current
// string, recorded by index when the string opened.
func (t *Tracker) activeDelim(st LexicalState) (grammar.StringDelim, bool) {
	if !st.InString {
		return grammar.StringDelim{}, false
	}
	if int(st.delim) >= len(t.grammar.Strings) {
		return grammar.StringDelim{}, false
	}
	return t.grammar.Strings[st.delim], true
}

func (t *Tracker) activeEscape(st LexicalState) byte {
	if d, ok := t.activeDelim(st); ok {
		return d.Escape
	}
	return 0
}

func (t *Tracker) activeMultiline(st LexicalState) bool {
	if d, ok := t.activeDelim(st); ok {
		return d.Multiline
	}
	return false
}

// closingDelimLen returns the length of the delimiter at pos that closes
// the currently open string, or 0. Only the delimiter that opened the
// string closes it: a stray `"` never closes against `"""`.
func (t *Tracker) closingDelimLen(st LexicalState, pos int) int {
	d, ok := t.activeDelim(st)
	if !ok {
		return 0
	}
	if t.markerAt(pos, d.Delim) {
		return len(d.Delim)
	}
	return 0
}

// openingDelimAt returns the index and length of the string delimiter
// opening at pos, preferring the longest match so `"""` wins over `"`
// regardless of declaration order. n == 0 when no delimiter opens here.
func (t *Tracker) openingDelimAt(pos int) (idx, n int) {
	for i, d := range t.grammar.Strings {
		if len(d.Delim) > n && t.markerAt(pos, d.Delim) {
			idx, n = i, len(d.Delim)
		}
	}
	return idx, n
}

func (t *Tracker) lineCommentLen(pos int) int {
	for _, lc := range t.grammar.LineComments {
		if t.markerAt(pos, lc) {
			return len(lc)
		}
	}
	return 0
}

func (t *Tracker) blockOpenerLen(pos int) int {
	for _, bc := range t.grammar.BlockComments {
		if t.markerAt(pos, bc.Open) {
			return len(bc.Open)
		}
	}
	return 0
}

func (t *Tracker) blockCloserLen(pos int) int {
	for _, bc := range t.grammar.BlockComments {
		if t.markerAt(pos, bc.Close) {
			return len(bc.Close)
		}
	}
	return 0
}

// markerAt reports whether the literal marker occurs at pos.
func (t *Tracker) markerAt(pos int, marker string) bool {
	if marker == "" || pos+len(marker) > len(t.content) {
		return false
	}
	got := t.content[pos : pos+len(marker)]
	if t.grammar.CaseInsensitive {
		return strings.EqualFold(string(got), marker)
	}
	return string(got) == marker
}

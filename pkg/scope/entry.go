package scope

import (
	"github.com/bastndev/bracketlens/pkg/grammar"
)

// Entry is one matched (or force-closed) scope: an open/close token pair
// and the scopes fully nested within it. Entries are immutable once built;
// a re-parse replaces them wholesale or splices whole subtrees.
type Entry struct {
	// Open is the opening token.
	Open Token

	// Close is the closing token. For scopes force-closed at end of
	// document the close token is zero-width at the final offset.
	Close Token

	// Mode is the header mode declared by the grammar for this pair.
	Mode grammar.HeaderMode

	// Unmatched is true when the closing token's kind does not pair with
	// the opening token, when a closer had no open scope, or when the
	// scope was force-closed at end of document.
	Unmatched bool

	// Children are the scopes fully nested within this one, in source
	// order.
	Children []*Entry
}

// Span returns the byte range from open token start to close token end.
func (e *Entry) Span() (start, end int) {
	return e.Open.Offset, e.Close.End()
}

// DefaultMaxWalkDepth caps tree traversal depth. Scopes nested deeper are
// visited as a flat remainder at the cap depth.
const DefaultMaxWalkDepth = 64

// VisitFunc is called for each entry during a walk, with the entry's
// parent (nil at top level), its following sibling (nil if last), and its
// nesting depth.
type VisitFunc func(e *Entry, parent *Entry, nextSibling *Entry, depth int) bool

type walkItem struct {
	entry  *Entry
	parent *Entry
	next   *Entry
	depth  int
}

// Walk traverses entries depth-first in source order using an explicit
// stack, so pathologically deep nesting cannot exhaust the goroutine
// stack. Returning false from visit stops the walk. maxDepth <= 0 selects
// DefaultMaxWalkDepth; entries below the cap are visited at the cap depth.
func Walk(entries []*Entry, maxDepth int, visit VisitFunc) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxWalkDepth
	}

	stack := make([]walkItem, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		var next *Entry
		if i+1 < len(entries) {
			next = entries[i+1]
		}
		stack = append(stack, walkItem{entry: entries[i], next: next, depth: 0})
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(item.entry, item.parent, item.next, item.depth) {
			return
		}

		childDepth := item.depth + 1
		if childDepth > maxDepth {
			childDepth = maxDepth
		}

		children := item.entry.Children
		for i := len(children) - 1; i >= 0; i-- {
			var next *Entry
			if i+1 < len(children) {
				next = children[i+1]
			}
			stack = append(stack, walkItem{
				entry:  children[i],
				parent: item.entry,
				next:   next,
				depth:  childDepth,
			})
		}
	}
}

// Count returns the total number of entries in the forest.
func Count(entries []*Entry) int {
	n := 0
	Walk(entries, 0, func(*Entry, *Entry, *Entry, int) bool {
		n++
		return true
	})
	return n
}

// SizeBytes estimates the memory held by the forest, by a fixed per-entry
// heuristic rather than exact measurement.
func SizeBytes(entries []*Entry) int {
	const perEntry = 96
	return Count(entries) * perEntry
}

package scope

import (
	"fmt"
	"sort"

	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/grammar"
)

// Default decoration parameters.
const (
	DefaultMinScopeLines   = 3
	DefaultMaxDecorations  = 500
	DefaultPrefix          = "<~ "
	DefaultUnmatchedPrefix = "<~ ❗"
	DefaultSeparator       = "·"
)

// DecorationAnchor is one (anchor position, label) pair derived from the
// scope tree. Anchors are discarded and regenerated whenever the owning
// tree changes; they are never mutated in place.
type DecorationAnchor struct {
	// Range is the span of the closing token, so the label renders
	// immediately after the closing bracket.
	Range document.SourcePosition

	// Label is the rendered text: prefix, line range, separator, header.
	Label string

	// Unmatched mirrors the owning entry's unmatched flag; it decides
	// prioritization when the list is truncated.
	Unmatched bool

	// LineSpan is the inclusive line count of the owning scope.
	LineSpan int
}

// DecorationOptions controls decoration generation.
type DecorationOptions struct {
	// MinScopeLines excludes scopes spanning fewer lines.
	MinScopeLines int

	// MaxDecorations caps the flat list when FilterEnabled.
	MaxDecorations int

	// MaxHeaderLength truncates inferred headers.
	MaxHeaderLength int

	// MaxDepth caps tree traversal depth.
	MaxDepth int

	// FilterEnabled turns on the max-count performance filter.
	FilterEnabled bool

	// Prefix, UnmatchedPrefix, and Separator shape the label text.
	Prefix          string
	UnmatchedPrefix string
	Separator       string
}

// DefaultDecorationOptions returns the standard options.
func DefaultDecorationOptions() DecorationOptions {
	return DecorationOptions{
		MinScopeLines:   DefaultMinScopeLines,
		MaxDecorations:  DefaultMaxDecorations,
		MaxHeaderLength: DefaultMaxHeaderLength,
		MaxDepth:        DefaultMaxWalkDepth,
		FilterEnabled:   true,
		Prefix:          DefaultPrefix,
		UnmatchedPrefix: DefaultUnmatchedPrefix,
		Separator:       DefaultSeparator,
	}
}

// decorFrame is one level of the explicit traversal stack.
type decorFrame struct {
	entries []*Entry
	parent  *Entry
	idx     int
}

// Decorations walks the scope tree and produces the flat decoration list.
//
// An entry is decorated only if its line span meets the minimum, its close
// line is strictly before both its next sibling's open line and its
// parent's close line (no visual collision on the closing line), and its
// inferred header is non-empty. When the performance filter is enabled and
// the list exceeds the maximum, unmatched entries are kept first, then the
// largest spans, truncated to the maximum.
func Decorations(doc *document.Document, g *grammar.Grammar, entries []*Entry, opts DecorationOptions) []DecorationAnchor {
	if opts.MinScopeLines <= 0 {
		opts.MinScopeLines = DefaultMinScopeLines
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxWalkDepth
	}

	var anchors []DecorationAnchor

	stack := []decorFrame{{entries: entries}}
	for len(stack) > 0 {
		frame := &stack[len(stack)-1]
		if frame.idx >= len(frame.entries) {
			stack = stack[:len(stack)-1]
			continue
		}

		entry := frame.entries[frame.idx]
		var prev, next *Entry
		if frame.idx > 0 {
			prev = frame.entries[frame.idx-1]
		}
		if frame.idx+1 < len(frame.entries) {
			next = frame.entries[frame.idx+1]
		}
		frame.idx++

		if a, ok := decorate(doc, g, entry, frame.parent, prev, next, opts); ok {
			anchors = append(anchors, a)
		}

		if len(entry.Children) > 0 {
			if len(stack) < opts.MaxDepth {
				stack = append(stack, decorFrame{entries: entry.Children, parent: entry})
			} else {
				// Depth cap reached: deeper scopes are visited as a flat
				// remainder of the current level, same as Walk.
				rest := make([]*Entry, 0, len(entry.Children)+len(frame.entries)-frame.idx)
				rest = append(rest, entry.Children...)
				rest = append(rest, frame.entries[frame.idx:]...)
				frame.entries = rest
				frame.idx = 0
			}
		}
	}

	if opts.FilterEnabled && opts.MaxDecorations > 0 && len(anchors) > opts.MaxDecorations {
		anchors = prioritize(anchors, opts.MaxDecorations)
	}

	return anchors
}

// decorate evaluates one entry against the decoration rules.
func decorate(doc *document.Document, g *grammar.Grammar, e, parent, prev, next *Entry, opts DecorationOptions) (DecorationAnchor, bool) {
	openLine := doc.Line(e.Open.Offset)
	closeLine := doc.Line(e.Close.Offset)
	span := closeLine - openLine + 1

	if span < opts.MinScopeLines {
		return DecorationAnchor{}, false
	}

	// Superseded: a sibling or the parent closes on (or before) the same
	// line, and the two labels would collide.
	if next != nil && closeLine >= doc.Line(next.Open.Offset) {
		return DecorationAnchor{}, false
	}
	if parent != nil && closeLine >= doc.Line(parent.Close.Offset) {
		return DecorationAnchor{}, false
	}

	hctx := HeaderContext{MaxLength: opts.MaxHeaderLength}
	if prev != nil {
		hctx.PrevEnd = prev.Close.End()
	}
	if parent != nil {
		hctx.ParentOpenEnd = parent.Open.End()
	}

	header := InferHeader(doc, g, e, hctx)
	if header == "" {
		return DecorationAnchor{}, false
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if e.Unmatched {
		prefix = opts.UnmatchedPrefix
		if prefix == "" {
			prefix = DefaultUnmatchedPrefix
		}
	}
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	return DecorationAnchor{
		Range: doc.PositionAt(document.SourceRange{
			StartOffset: e.Close.Offset,
			EndOffset:   e.Close.End(),
		}),
		Label:     fmt.Sprintf("%s#%d-%d %s %s", prefix, openLine, closeLine, sep, header),
		Unmatched: e.Unmatched,
		LineSpan:  span,
	}, true
}

// prioritize sorts unmatched-bracket anchors first, then by descending
// line span, and truncates to max.
func prioritize(anchors []DecorationAnchor, maxCount int) []DecorationAnchor {
	sorted := make([]DecorationAnchor, len(anchors))
	copy(sorted, anchors)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Unmatched != sorted[j].Unmatched {
			return sorted[i].Unmatched
		}
		return sorted[i].LineSpan > sorted[j].LineSpan
	})

	return sorted[:maxCount]
}

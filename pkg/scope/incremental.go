package scope

import (
	"fmt"
	"sort"
	"time"

	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/grammar"
)

// regionBuffer is the fixed distance around a change region within which a
// previously-known scope boundary pulls the region outward. This guards
// against a scope's header or close marker shifting due to a nearby edit;
// it is a known approximation bounded by the full-parse fallback, not a
// strict invariant.
const regionBuffer = 200

// Change is one edited text range. Range is in the pre-edit document;
// NewText is the replacement. A nil Range means no range information is
// available and the whole document is treated as changed.
type Change struct {
	Range   *document.SourceRange
	NewText string
}

// Region is one expanded change region, in post-edit document coordinates.
type Region struct {
	StartOffset int
	EndOffset   int
	StartLine   int
	EndLine     int
}

// containsLine reports whether a 1-based line falls inside the region.
func (r Region) containsLine(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// IncrementalResult is the output of an incremental re-parse.
type IncrementalResult struct {
	// Entries is the merged top-level entry list, sorted by open offset.
	Entries []*Entry

	// AffectedRegions are the expanded change regions that were re-parsed.
	AffectedRegions []Region

	// Elapsed is the wall time the re-parse took.
	Elapsed time.Duration
}

// Reparse updates a previous top-level entry list for a set of edits,
// re-deriving only entries whose lines fall inside the expanded change
// regions and splicing them into the unaffected remainder.
//
// This is a performance optimization only: the output must be
// set-equivalent to a full re-parse for non-degenerate inputs. Any panic
// along this path is converted to an error; callers respond with a full
// re-parse.
func Reparse(doc *document.Document, g *grammar.Grammar, pattern *grammar.Pattern, changes []Change, previous []*Entry) (result *IncrementalResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("incremental reparse: %v", r)
		}
	}()

	started := time.Now()

	regions, ok := normalizeChanges(doc, changes)
	if !ok {
		// No usable range information: one whole-document region.
		regions = []Region{{
			StartOffset: 0,
			EndOffset:   len(doc.Content),
			StartLine:   1,
			EndLine:     doc.LineCount(),
		}}
	} else if shifts := editShifts(changes); len(shifts) > 0 {
		// Every previous offset at or beyond a length-changing edit is in
		// pre-edit coordinates. Move the whole list into post-edit
		// coordinates before any region math, or the retained remainder
		// anchors on the wrong bytes.
		shifted := make([]*Entry, len(previous))
		for i, entry := range previous {
			shifted[i] = shiftEntry(entry, shifts)
		}
		previous = shifted
	}

	for i := range regions {
		regions[i] = expandRegion(doc, regions[i], previous)
	}

	// Keep previous entries untouched by every region.
	var merged []*Entry
	for _, entry := range previous {
		if !entryInRegions(doc, entry, regions) {
			merged = append(merged, entry)
		}
	}

	// Re-match the full text, retaining only in-region entries.
	tracker := Track(doc.Content, g, DefaultSnapshotInterval)
	tokens := Scan(doc.Content, pattern)
	for _, entry := range Match(doc, g, tokens, tracker) {
		if entryInRegions(doc, entry, regions) {
			merged = append(merged, entry)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Open.Offset < merged[j].Open.Offset
	})

	return &IncrementalResult{
		Entries:         merged,
		AffectedRegions: regions,
		Elapsed:         time.Since(started),
	}, nil
}

// editShift is one length-changing edit: pre-edit offsets at or beyond
// end move by delta in the post-edit document.
type editShift struct {
	end   int
	delta int
}

// editShifts extracts the length-changing edits, ordered by end offset.
// Ranges are pre-edit coordinates and must not overlap.
func editShifts(changes []Change) []editShift {
	shifts := make([]editShift, 0, len(changes))
	for _, c := range changes {
		if c.Range == nil {
			continue
		}
		delta := len(c.NewText) - c.Range.Len()
		if delta != 0 {
			shifts = append(shifts, editShift{end: c.Range.EndOffset, delta: delta})
		}
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].end < shifts[j].end })
	return shifts
}

// shiftOffset maps a pre-edit offset to its post-edit position. Offsets
// inside a replaced range stay put; the entries holding them fall inside
// the change region and are re-derived anyway.
func shiftOffset(offset int, shifts []editShift) int {
	shifted := offset
	for _, s := range shifts {
		if offset >= s.end {
			shifted += s.delta
		}
	}
	return shifted
}

// shiftEntry returns a copy of the entry, children included, with every
// token offset mapped into post-edit coordinates.
func shiftEntry(e *Entry, shifts []editShift) *Entry {
	shifted := *e
	shifted.Open.Offset = shiftOffset(e.Open.Offset, shifts)
	shifted.Close.Offset = shiftOffset(e.Close.Offset, shifts)
	if len(e.Children) > 0 {
		children := make([]*Entry, len(e.Children))
		for i, child := range e.Children {
			children[i] = shiftEntry(child, shifts)
		}
		shifted.Children = children
	}
	return &shifted
}

// normalizeChanges converts edits into change regions in post-edit
// coordinates. Returns ok == false when any edit lacks range information.
func normalizeChanges(doc *document.Document, changes []Change) ([]Region, bool) {
	if len(changes) == 0 {
		return nil, false
	}

	regions := make([]Region, 0, len(changes))
	for _, c := range changes {
		if c.Range == nil {
			return nil, false
		}

		start := c.Range.StartOffset
		end := start + len(c.NewText)
		if start < 0 || start > len(doc.Content) {
			return nil, false
		}
		if end > len(doc.Content) {
			end = len(doc.Content)
		}

		regions = append(regions, withLineBounds(doc, Region{
			StartOffset: start,
			EndOffset:   end,
		}))
	}

	return regions, true
}

// expandRegion pulls the region outward over any previously-known scope
// whose open or close offset lies within the buffer distance of a region
// boundary, then extends the line bounds by one line on each side.
func expandRegion(doc *document.Document, region Region, previous []*Entry) Region {
	lo := region.StartOffset - regionBuffer
	hi := region.EndOffset + regionBuffer

	for _, entry := range previous {
		open := entry.Open.Offset
		closeEnd := entry.Close.End()

		if (open >= lo && open <= hi) || (closeEnd >= lo && closeEnd <= hi) {
			if open < region.StartOffset {
				region.StartOffset = open
			}
			if closeEnd > region.EndOffset {
				region.EndOffset = closeEnd
			}
		}
	}

	if region.StartOffset < 0 {
		region.StartOffset = 0
	}
	if region.EndOffset > len(doc.Content) {
		region.EndOffset = len(doc.Content)
	}

	region = withLineBounds(doc, region)
	if region.StartLine > 1 {
		region.StartLine--
	}
	if region.EndLine < doc.LineCount() {
		region.EndLine++
	}

	return region
}

// withLineBounds fills the region's line bounds from its offsets.
func withLineBounds(doc *document.Document, region Region) Region {
	region.StartLine = doc.Line(region.StartOffset)
	if region.StartLine < 1 {
		region.StartLine = 1
	}
	region.EndLine = doc.Line(region.EndOffset)
	if region.EndLine < region.StartLine {
		region.EndLine = region.StartLine
	}
	return region
}

// entryInRegions reports whether the entry's open or close line falls
// inside any region.
func entryInRegions(doc *document.Document, entry *Entry, regions []Region) bool {
	openLine := doc.Line(entry.Open.Offset)
	closeLine := doc.Line(entry.Close.Offset)

	for _, region := range regions {
		if region.containsLine(openLine) || region.containsLine(closeLine) {
			return true
		}
	}
	return false
}

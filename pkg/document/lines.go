package document

import "sort"

// BuildLines constructs line metadata from document content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char == '\n' {
			newlineStart := idx
			if idx > 0 && content[idx-1] == '\r' {
				newlineStart = idx - 1
			}

			lines = append(lines, LineInfo{
				StartOffset:  lineStart,
				NewlineStart: newlineStart,
				EndOffset:    idx + 1,
			})
			lineStart = idx + 1
		}
	}

	// Last line may not have a trailing newline.
	if lineStart <= len(content) {
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: len(content),
			EndOffset:    len(content),
		})
	}

	return lines
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.Lines)
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
// Returns (0, 0) if the offset is out of range.
func (d *Document) LineAt(offset int) (int, int) {
	if offset < 0 || len(d.Lines) == 0 {
		return 0, 0
	}

	if offset >= len(d.Content) {
		lastLine := d.Lines[len(d.Lines)-1]
		return len(d.Lines), offset - lastLine.StartOffset + 1
	}

	lineIdx := sort.Search(len(d.Lines), func(i int) bool {
		return d.Lines[i].EndOffset > offset
	})

	if lineIdx >= len(d.Lines) {
		lineIdx = len(d.Lines) - 1
	}

	lineInfo := d.Lines[lineIdx]
	if offset < lineInfo.StartOffset {
		return 0, 0
	}

	return lineIdx + 1, offset - lineInfo.StartOffset + 1
}

// Line returns just the 1-based line number for a byte offset.
func (d *Document) Line(offset int) int {
	line, _ := d.LineAt(offset)
	return line
}

// Offset converts 1-based line and column numbers to a byte offset.
// Returns (offset, true) on success, or (0, false) if out of range.
func (d *Document) Offset(line, col int) (int, bool) {
	if line < 1 || line > len(d.Lines) {
		return 0, false
	}

	lineInfo := d.Lines[line-1]
	if col < 1 {
		return 0, false
	}

	offset := lineInfo.StartOffset + col - 1

	// Column may point just past the end of the line (cursor positions).
	if offset > lineInfo.EndOffset {
		return 0, false
	}

	return offset, true
}

// LineContent returns the content of a 1-based line number, excluding the
// newline. Returns nil if the line number is out of range.
func (d *Document) LineContent(line int) []byte {
	if line < 1 || line > len(d.Lines) {
		return nil
	}

	lineInfo := d.Lines[line-1]
	return d.Content[lineInfo.StartOffset:lineInfo.NewlineStart]
}

// Slice returns the content between two byte offsets, clamped to the
// document bounds.
func (d *Document) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(d.Content) {
		end = len(d.Content)
	}
	if start >= end {
		return nil
	}
	return d.Content[start:end]
}

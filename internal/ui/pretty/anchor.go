package pretty

import (
	"fmt"
	"strings"

	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/scope"
)

// FormatAnchor formats a single decoration anchor for terminal output.
func (s *Styles) FormatAnchor(doc *document.Document, a scope.DecorationAnchor) string {
	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(doc.Path),
		a.Range.StartLine,
		a.Range.StartColumn,
	)

	label := s.Label.Render(a.Label)
	if a.Unmatched {
		label = s.Unmatched.Render(a.Label)
	}

	return fmt.Sprintf("  %s  %s\n", location, label)
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, anchorCount int) string {
	header := s.FilePath.Render(path)
	if anchorCount > 0 {
		word := "anchors"
		if anchorCount == 1 {
			word = "anchor"
		}
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", anchorCount, word))
	}
	return header
}

// FormatListing renders the document source with each anchor's label
// appended to the line its scope closes on, the way an editor would
// show it inline.
func (s *Styles) FormatListing(doc *document.Document, anchors []scope.DecorationAnchor) string {
	byLine := make(map[int][]scope.DecorationAnchor, len(anchors))
	for _, a := range anchors {
		byLine[a.Range.StartLine] = append(byLine[a.Range.StartLine], a)
	}

	width := numberWidth(doc.LineCount())

	var builder strings.Builder
	for line := 1; line <= doc.LineCount(); line++ {
		number := fmt.Sprintf("%*d", width, line)
		builder.WriteString(s.LineNumber.Render(number))
		builder.WriteString("  ")
		builder.WriteString(s.SourceLine.Render(string(doc.LineContent(line))))

		for _, a := range byLine[line] {
			builder.WriteString("  ")
			if a.Unmatched {
				builder.WriteString(s.Unmatched.Render(a.Label))
			} else {
				builder.WriteString(s.Label.Render(a.Label))
			}
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func numberWidth(lineCount int) int {
	width := 1
	for lineCount >= 10 {
		lineCount /= 10
		width++
	}
	return width
}

package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bastndev/bracketlens/pkg/cache"
	"github.com/bastndev/bracketlens/pkg/engine"
)

const summaryDividerWidth = 40

// FormatRunSummary formats per-run statistics as a single line.
// Example: "5 anchors (1 unmatched) in 2 files".
func (s *Styles) FormatRunSummary(files, anchors, unmatched int) string {
	if anchors == 0 {
		return s.Success.Render("No scopes to annotate") +
			s.Dim.Render(fmt.Sprintf(" (%d files checked)", files)) + "\n"
	}

	anchorWord := "anchors"
	if anchors == 1 {
		anchorWord = "anchor"
	}
	fileWord := "files"
	if files == 1 {
		fileWord = "file"
	}

	msg := fmt.Sprintf("%d %s", anchors, anchorWord)
	if unmatched > 0 {
		msg += fmt.Sprintf(" (%s)", s.Failure.Render(fmt.Sprintf("%d unmatched", unmatched)))
	}
	msg += fmt.Sprintf(" in %d %s", files, fileWord)

	return msg + "\n"
}

// FormatMetrics formats an engine cache and memory snapshot as a summary
// block.
func (s *Styles) FormatMetrics(m engine.Metrics) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Cache statistics"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	for _, stats := range []cache.Stats{m.ParseStates, m.Tokens, m.Results, m.Editors} {
		builder.WriteString(fmt.Sprintf("  %-14s %s entries, %s hits, %s misses, %s evictions\n",
			stats.Name+":",
			s.SummaryValue.Render(strconv.Itoa(stats.Entries)),
			s.Success.Render(strconv.FormatUint(stats.Hits, 10)),
			s.Dim.Render(strconv.FormatUint(stats.Misses, 10)),
			s.Dim.Render(strconv.FormatUint(stats.Evictions, 10)),
		))
	}

	builder.WriteString("\n")
	builder.WriteString("  Estimated usage:  " +
		s.SummaryValue.Render(formatBytes(m.UsageBytes)) + "\n")
	builder.WriteString("  Pressure tier:    " + s.formatTier(m.Tier) + "\n")

	if m.LowMemoryMode {
		builder.WriteString("  " + s.Failure.Render("Low-memory mode active") + "\n")
	}

	return builder.String()
}

func (s *Styles) formatTier(tier cache.PressureTier) string {
	switch tier {
	case cache.TierCritical, cache.TierHigh:
		return s.Failure.Render(tier.String())
	case cache.TierMedium:
		return s.Bold.Render(tier.String())
	default:
		return s.Success.Render(tier.String())
	}
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bastndev/bracketlens/internal/ui/pretty"
	"github.com/bastndev/bracketlens/pkg/cache"
	"github.com/bastndev/bracketlens/pkg/engine"
)

func TestFormatRunSummary(t *testing.T) {
	t.Parallel()

	s := pretty.NewStyles(false)

	tests := []struct {
		name      string
		files     int
		anchors   int
		unmatched int
		expected  string
	}{
		{
			name:     "nothing to annotate",
			files:    2,
			expected: "No scopes to annotate (2 files checked)\n",
		},
		{
			name:     "singular forms",
			files:    1,
			anchors:  1,
			expected: "1 anchor in 1 file\n",
		},
		{
			name:      "unmatched counted",
			files:     2,
			anchors:   5,
			unmatched: 1,
			expected:  "5 anchors (1 unmatched) in 2 files\n",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := s.FormatRunSummary(testCase.files, testCase.anchors, testCase.unmatched)
			assert.Equal(t, testCase.expected, got)
		})
	}
}

func TestFormatMetrics(t *testing.T) {
	t.Parallel()

	s := pretty.NewStyles(false)
	m := engine.Metrics{
		ParseStates: cache.Stats{Name: "parse_states", Entries: 3, Hits: 7, Misses: 2, Evictions: 1},
		Tokens:      cache.Stats{Name: "tokens"},
		Results:     cache.Stats{Name: "results"},
		Editors:     cache.Stats{Name: "editors"},
		UsageBytes:  2048,
		Tier:        cache.TierLow,
	}

	out := s.FormatMetrics(m)
	assert.Contains(t, out, "Cache statistics")
	assert.Contains(t, out, "parse_states:")
	assert.Contains(t, out, "3 entries, 7 hits, 2 misses, 1 evictions")
	assert.Contains(t, out, "Estimated usage:  2.0 KiB")
	assert.Contains(t, out, "Pressure tier:    "+cache.TierLow.String())
	assert.NotContains(t, out, "Low-memory mode")
}

func TestFormatMetricsLowMemoryNotice(t *testing.T) {
	t.Parallel()

	s := pretty.NewStyles(false)
	m := engine.Metrics{
		ParseStates:   cache.Stats{Name: "parse_states"},
		Tokens:        cache.Stats{Name: "tokens"},
		Results:       cache.Stats{Name: "results"},
		Editors:       cache.Stats{Name: "editors"},
		UsageBytes:    5 << 20,
		Tier:          cache.TierCritical,
		LowMemoryMode: true,
	}

	out := s.FormatMetrics(m)
	assert.Contains(t, out, "Estimated usage:  5.0 MiB")
	assert.Contains(t, out, "Low-memory mode active")
}

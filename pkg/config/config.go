// Package config defines core configuration types for bracketlens.
// These types are pure data structures; loading and merging live in
// internal/configloader.
package config

import "time"

// PerformanceMode controls how aggressively post-parse filters reduce
// decoration count for large or risky files.
type PerformanceMode string

const (
	ModeNormal      PerformanceMode = "normal"
	ModePerformance PerformanceMode = "performance"
	ModeMinimal     PerformanceMode = "minimal"
)

// IsValid returns true if the mode is one of the known values.
func (m PerformanceMode) IsValid() bool {
	switch m {
	case ModeNormal, ModePerformance, ModeMinimal:
		return true
	default:
		return false
	}
}

// CacheConfig holds one cache's TTL and entry capacity.
type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
}

// MemoryConfig holds the memory monitor's thresholds and cadence.
type MemoryConfig struct {
	MediumBytes   int           `yaml:"medium_bytes"`
	HighBytes     int           `yaml:"high_bytes"`
	CriticalBytes int           `yaml:"critical_bytes"`
	CheckInterval time.Duration `yaml:"check_interval"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Config is the root configuration for the scope engine.
type Config struct {
	// MinScopeLines excludes scopes spanning fewer lines from decoration.
	MinScopeLines int `yaml:"min_scope_lines"`

	// MaxDecorations caps the decoration list per document.
	MaxDecorations int `yaml:"max_decorations"`

	// MaxHeaderLength truncates inferred headers (in runes).
	MaxHeaderLength int `yaml:"max_header_length"`

	// MaxNestingDepth caps scope-tree traversal depth.
	MaxNestingDepth int `yaml:"max_nesting_depth"`

	// SnapshotInterval is the lexical-state snapshot interval in
	// characters.
	SnapshotInterval int `yaml:"snapshot_interval"`

	// MaxFileSize is the parse cutoff in bytes; larger documents return
	// an empty result rather than blocking.
	MaxFileSize int `yaml:"max_file_size"`

	// Mode selects the performance-filter tier.
	Mode PerformanceMode `yaml:"mode"`

	// Label glyphs.
	Prefix          string `yaml:"prefix"`
	UnmatchedPrefix string `yaml:"unmatched_prefix"`
	Separator       string `yaml:"separator"`

	// Debounce scheduling.
	DebounceBase time.Duration `yaml:"debounce_base"`
	DebounceMax  time.Duration `yaml:"debounce_max"`

	// Per-cache settings.
	ParseStateCache CacheConfig `yaml:"parse_state_cache"`
	TokenCache      CacheConfig `yaml:"token_cache"`
	ResultCache     CacheConfig `yaml:"result_cache"`
	EditorCache     CacheConfig `yaml:"editor_cache"`

	// Memory monitor settings.
	Memory MemoryConfig `yaml:"memory"`
}

// Default returns a Config with the standard defaults.
func Default() *Config {
	return &Config{
		MinScopeLines:    3,
		MaxDecorations:   500,
		MaxHeaderLength:  60,
		MaxNestingDepth:  64,
		SnapshotInterval: 100,
		MaxFileSize:      10 << 20,
		Mode:             ModeNormal,
		Prefix:           "<~ ",
		UnmatchedPrefix:  "<~ ❗",
		Separator:        "·",
		DebounceBase:     150 * time.Millisecond,
		DebounceMax:      2 * time.Second,
		ParseStateCache:  CacheConfig{TTL: 5 * time.Minute, Capacity: 64},
		TokenCache:       CacheConfig{TTL: 5 * time.Minute, Capacity: 64},
		ResultCache:      CacheConfig{TTL: 10 * time.Minute, Capacity: 128},
		EditorCache:      CacheConfig{TTL: 30 * time.Minute, Capacity: 64},
		Memory: MemoryConfig{
			MediumBytes:   16 << 20,
			HighBytes:     48 << 20,
			CriticalBytes: 96 << 20,
			CheckInterval: 2 * time.Minute,
			SweepInterval: 30 * time.Second,
		},
	}
}

// EffectiveMaxDecorations applies the performance-mode tiers to the
// configured decoration cap.
func (c *Config) EffectiveMaxDecorations() int {
	switch c.Mode {
	case ModePerformance:
		return c.MaxDecorations / 2
	case ModeMinimal:
		return c.MaxDecorations / 10
	default:
		return c.MaxDecorations
	}
}

// EffectiveMinScopeLines applies the performance-mode tiers to the
// minimum line span.
func (c *Config) EffectiveMinScopeLines() int {
	switch c.Mode {
	case ModePerformance:
		return c.MinScopeLines + 1
	case ModeMinimal:
		return c.MinScopeLines * 2
	default:
		return c.MinScopeLines
	}
}

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML parses a YAML document into a Config layered over the
// defaults: fields absent from the document keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToYAML serializes a Config.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Validate checks invariants a loaded Config must hold.
func (c *Config) Validate() error {
	if !c.Mode.IsValid() {
		return fmt.Errorf("invalid performance mode %q", c.Mode)
	}
	if c.MinScopeLines < 1 {
		return fmt.Errorf("min_scope_lines must be >= 1, got %d", c.MinScopeLines)
	}
	if c.MaxDecorations < 0 {
		return fmt.Errorf("max_decorations must be >= 0, got %d", c.MaxDecorations)
	}
	if c.MaxHeaderLength < 1 {
		return fmt.Errorf("max_header_length must be >= 1, got %d", c.MaxHeaderLength)
	}
	if c.SnapshotInterval < 1 {
		return fmt.Errorf("snapshot_interval must be >= 1, got %d", c.SnapshotInterval)
	}
	if c.DebounceBase < 0 || c.DebounceMax < c.DebounceBase {
		return fmt.Errorf("debounce window invalid: base %s, max %s", c.DebounceBase, c.DebounceMax)
	}
	return nil
}

// Package configloader resolves the engine configuration by merging an
// explicit config file, an upward project-file search, environment
// variables, and defaults.
package configloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastndev/bracketlens/pkg/config"
)

// ProjectConfigName is the project-level config file searched for upward
// from the working directory.
const ProjectConfigName = ".bracketlens.yml"

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to the current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config).
	// If set, project config discovery is skipped.
	ExplicitPath string

	// IgnoreEnv skips environment variable overrides.
	IgnoreEnv bool
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Path is the config file actually loaded, if any.
	Path string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration.
// Precedence (highest to lowest): environment variables, explicit config
// file, project config, defaults.
func Load(opts LoadOptions) (*LoadResult, error) {
	result := &LoadResult{Config: config.Default()}

	path := opts.ExplicitPath
	if path == "" {
		workDir := opts.WorkingDir
		if workDir == "" {
			var err error
			workDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("get working directory: %w", err)
			}
		}
		path = discoverProjectConfig(workDir)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			cfg, parseErr := config.FromYAML(data)
			if parseErr != nil {
				return nil, fmt.Errorf("load %s: %w", path, parseErr)
			}
			result.Config = cfg
			result.Path = path
		case opts.ExplicitPath != "":
			// An explicit path that cannot be read is an error; a missing
			// discovered file just means defaults.
			return nil, fmt.Errorf("read config: %w", err)
		case !errors.Is(err, os.ErrNotExist):
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping unreadable config %s: %v", path, err))
		}
	}

	if !opts.IgnoreEnv {
		applyEnv(result.Config, result)
	}

	if err := result.Config.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// discoverProjectConfig searches upward from dir for the project config
// file, returning "" when none exists.
func discoverProjectConfig(dir string) string {
	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

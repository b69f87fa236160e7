package configloader

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bastndev/bracketlens/pkg/config"
)

// Environment variable names recognized by the loader. Environment values
// take precedence over any config file.
const (
	EnvMode            = "BRACKETLENS_MODE"
	EnvMinScopeLines   = "BRACKETLENS_MIN_SCOPE_LINES"
	EnvMaxDecorations  = "BRACKETLENS_MAX_DECORATIONS"
	EnvMaxHeaderLength = "BRACKETLENS_MAX_HEADER_LENGTH"
	EnvMaxFileSize     = "BRACKETLENS_MAX_FILE_SIZE"
	EnvDebounceBase    = "BRACKETLENS_DEBOUNCE_BASE"
)

// applyEnv overlays recognized environment variables onto cfg, recording
// a warning for each malformed value rather than failing.
func applyEnv(cfg *config.Config, result *LoadResult) {
	if v := os.Getenv(EnvMode); v != "" {
		mode := config.PerformanceMode(v)
		if mode.IsValid() {
			cfg.Mode = mode
		} else {
			warnEnv(result, EnvMode, v)
		}
	}

	applyEnvInt(EnvMinScopeLines, result, func(n int) { cfg.MinScopeLines = n })
	applyEnvInt(EnvMaxDecorations, result, func(n int) { cfg.MaxDecorations = n })
	applyEnvInt(EnvMaxHeaderLength, result, func(n int) { cfg.MaxHeaderLength = n })
	applyEnvInt(EnvMaxFileSize, result, func(n int) { cfg.MaxFileSize = n })

	if v := os.Getenv(EnvDebounceBase); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.DebounceBase = d
		} else {
			warnEnv(result, EnvDebounceBase, v)
		}
	}
}

func applyEnvInt(name string, result *LoadResult, assign func(int)) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		warnEnv(result, name, v)
		return
	}
	assign(n)
}

func warnEnv(result *LoadResult, name, value string) {
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("ignoring invalid %s=%q", name, value))
}

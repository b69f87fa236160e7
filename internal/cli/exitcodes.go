package cli

// Exit codes for bracketlens.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitUnmatched indicates unmatched brackets were found (strict mode).
	ExitUnmatched = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromRun determines the exit code from the unmatched-bracket
// count and strict mode.
func ExitCodeFromRun(unmatched int, strict bool) int {
	if strict && unmatched > 0 {
		return ExitUnmatched
	}
	return ExitSuccess
}

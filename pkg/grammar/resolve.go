package grammar

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// ResolveLanguage detects the language id for a file from its name and
// content, normalized to the lowercase ids the built-in grammar set uses.
// Returns "" when detection fails; callers treat that as the default grammar.
func ResolveLanguage(filename string, content []byte) string {
	lang := enry.GetLanguage(filename, content)
	if lang == "" {
		return ""
	}
	return normalizeLanguage(lang)
}

// normalizeLanguage converts go-enry language names to grammar ids.
func normalizeLanguage(lang string) string {
	switch lang {
	case "Shell", "Bash":
		return "shell"
	case "TSX":
		return "typescript"
	case "JSX":
		return "javascript"
	}
	return strings.ToLower(lang)
}

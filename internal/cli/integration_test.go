package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastndev/bracketlens/internal/cli"
)

const testSourceWithScope = "function greet() {\n  return 1;\n}\n"

// execAnnotate runs the annotate command against the given files with an
// explicit minimal config, returning combined output and the execute error.
func execAnnotate(t *testing.T, extraArgs []string, files ...string) (string, error) {
	t.Helper()

	cfgDir := t.TempDir()
	cfgFile := filepath.Join(cfgDir, ".bracketlens.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("min_scope_lines: 3\n"), 0o644))

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	args := []string{"annotate", "--config", cfgFile, "--color", "never"}
	args = append(args, extraArgs...)
	args = append(args, files...)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String() + stderr.String(), err
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIntegration_AnnotateText(t *testing.T) {
	t.Parallel()

	file := writeSource(t, "greet.js", testSourceWithScope)

	output, err := execAnnotate(t, []string{"--language", "javascript"}, file)
	require.NoError(t, err)

	assert.Contains(t, output, "<~ #1-3 · function greet()")
	assert.Contains(t, output, "1 anchor in 1 file")
}

func TestIntegration_AnnotateJSON(t *testing.T) {
	t.Parallel()

	file := writeSource(t, "greet.js", testSourceWithScope)

	output, err := execAnnotate(t,
		[]string{"--language", "javascript", "--format", "json"}, file)
	require.NoError(t, err)

	var decoded struct {
		Path     string `json:"path"`
		Language string `json:"language"`
		Anchors  []struct {
			Line      int    `json:"line"`
			Column    int    `json:"column"`
			Label     string `json:"label"`
			LineSpan  int    `json:"line_span"`
			Unmatched bool   `json:"unmatched"`
		} `json:"anchors"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))

	assert.Equal(t, file, decoded.Path)
	assert.Equal(t, "javascript", decoded.Language)
	require.Len(t, decoded.Anchors, 1)
	assert.Equal(t, 3, decoded.Anchors[0].Line)
	assert.Equal(t, 1, decoded.Anchors[0].Column)
	assert.Equal(t, "<~ #1-3 · function greet()", decoded.Anchors[0].Label)
	assert.Equal(t, 3, decoded.Anchors[0].LineSpan)
	assert.False(t, decoded.Anchors[0].Unmatched)

	assert.NotContains(t, output, "in 1 file", "json output must not carry the text summary")
}

func TestIntegration_AnnotateListing(t *testing.T) {
	t.Parallel()

	file := writeSource(t, "greet.js", testSourceWithScope)

	output, err := execAnnotate(t,
		[]string{"--language", "javascript", "--format", "listing"}, file)
	require.NoError(t, err)

	assert.Contains(t, output, "1  function greet() {")
	assert.Contains(t, output, "3  }  <~ #1-3 · function greet()")
}

func TestIntegration_StrictUnmatched(t *testing.T) {
	t.Parallel()

	// Opening brace never closed; the scope is force-closed at end of input.
	file := writeSource(t, "broken.js", "function greet() {\n  a;\n  b;\n")

	output, err := execAnnotate(t,
		[]string{"--language", "javascript", "--strict"}, file)

	assert.ErrorIs(t, err, cli.ErrUnmatchedFound)
	assert.Contains(t, output, "1 unmatched")
}

func TestIntegration_UnmatchedWithoutStrictSucceeds(t *testing.T) {
	t.Parallel()

	file := writeSource(t, "broken.js", "function greet() {\n  a;\n  b;\n")

	_, err := execAnnotate(t, []string{"--language", "javascript"}, file)
	assert.NoError(t, err)
}

func TestIntegration_LanguageDetection(t *testing.T) {
	t.Parallel()

	file := writeSource(t, "greet.go", "func greet() {\n\tx := 1\n\t_ = x\n}\n")

	output, err := execAnnotate(t, []string{"--format", "json"}, file)
	require.NoError(t, err)

	var decoded struct {
		Language string `json:"language"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, "go", decoded.Language)
}

func TestIntegration_StatsFlag(t *testing.T) {
	t.Parallel()

	file := writeSource(t, "greet.js", testSourceWithScope)

	output, err := execAnnotate(t,
		[]string{"--language", "javascript", "--stats"}, file)
	require.NoError(t, err)

	assert.Contains(t, output, "Cache statistics")
	assert.Contains(t, output, "results:")
}

func TestIntegration_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := execAnnotate(t, nil, filepath.Join(t.TempDir(), "absent.js"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestIntegration_MissingConfigFileFails(t *testing.T) {
	t.Parallel()

	file := writeSource(t, "greet.js", testSourceWithScope)

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"annotate", "--config", "/nonexistent/config.yml", file})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration")
}

func TestIntegration_LanguagesCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
	cmd := cli.NewRootCommand(info)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"languages"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "go")
	assert.Contains(t, out.String(), "javascript")
}

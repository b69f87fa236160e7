package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bastndev/bracketlens/internal/configloader"
	"github.com/bastndev/bracketlens/internal/logging"
	"github.com/bastndev/bracketlens/internal/ui/pretty"
	"github.com/bastndev/bracketlens/pkg/document"
	"github.com/bastndev/bracketlens/pkg/engine"
	"github.com/bastndev/bracketlens/pkg/grammar"
	"github.com/bastndev/bracketlens/pkg/scope"
)

// ErrUnmatchedFound is returned when unmatched brackets are found in
// strict mode. It carries no message for the user; it only selects the
// exit code.
var ErrUnmatchedFound = errors.New("unmatched brackets found")

type annotateFlags struct {
	format   string
	language string
	strict   bool
	stats    bool
	watch    bool
}

func newAnnotateCommand() *cobra.Command {
	flags := &annotateFlags{}

	cmd := &cobra.Command{
		Use:   "annotate <files...>",
		Short: "Annotate bracket scopes in source files",
		Long:  annotateLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text",
		"output format: text, listing, json")
	cmd.Flags().StringVar(&flags.language, "language", "",
		"override language detection for all files")
	cmd.Flags().BoolVar(&flags.strict, "strict", false,
		"exit non-zero when unmatched brackets are found")
	cmd.Flags().BoolVar(&flags.stats, "stats", false,
		"print cache statistics after the run")
	cmd.Flags().BoolVar(&flags.watch, "watch", false,
		"reload the config file when it changes (with --config)")

	return cmd
}

const annotateLongDescription = `Annotate bracket scopes in source files.

Each file is parsed into a tree of bracket scopes; every scope spanning
enough lines gets an annotation on its closing line showing the line
range and a header inferred from the code around the opening bracket.
Unmatched brackets get a distinct prefix and survive truncation first.

Examples:
  bracketlens annotate main.go             # Annotate one file
  bracketlens annotate src/*.ts            # Annotate several files
  bracketlens annotate --format listing f  # Inline annotated source
  bracketlens annotate --format json f     # JSON for tooling
  bracketlens annotate --strict f          # Fail on unmatched brackets`

func runAnnotate(cmd *cobra.Command, args []string, flags *annotateFlags) error {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
	})
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if loadResult.Path != "" {
		logger.Debug("configuration loaded", logging.FieldConfig, loadResult.Path)
	}

	eng := engine.New(engine.Options{
		Config: loadResult.Config,
		Logger: logger,
	})
	defer eng.Close()

	if flags.watch && loadResult.Path != "" {
		if err := eng.WatchConfig(loadResult.Path); err != nil {
			logger.Warn("config watch unavailable", logging.FieldError, err)
		}
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))

	totalAnchors := 0
	totalUnmatched := 0

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		languageID := flags.language
		if languageID == "" {
			languageID = grammar.ResolveLanguage(path, content)
		}

		doc := document.New(path, languageID, content)
		result := eng.Annotate(doc)

		logger.Debug("annotated",
			logging.FieldPath, path,
			logging.FieldLanguage, languageID,
			logging.FieldScopes, scope.Count(result.Entries),
			logging.FieldDecorations, len(result.Anchors))

		totalAnchors += len(result.Anchors)
		totalUnmatched += countUnmatched(result.Anchors)

		switch flags.format {
		case "json":
			if err := writeJSON(out, path, languageID, result.Anchors); err != nil {
				return fmt.Errorf("encode %s: %w", path, err)
			}
		case "listing":
			fmt.Fprintln(out, styles.FormatFileHeader(path, len(result.Anchors)))
			fmt.Fprint(out, styles.FormatListing(doc, result.Anchors))
		default:
			fmt.Fprintln(out, styles.FormatFileHeader(path, len(result.Anchors)))
			for _, a := range result.Anchors {
				fmt.Fprint(out, styles.FormatAnchor(doc, a))
			}
		}
	}

	if flags.format != "json" {
		fmt.Fprint(out, styles.FormatRunSummary(len(args), totalAnchors, totalUnmatched))
	}
	if flags.stats {
		fmt.Fprint(out, styles.FormatMetrics(eng.Metrics()))
	}

	if ExitCodeFromRun(totalUnmatched, flags.strict) != ExitSuccess {
		return ErrUnmatchedFound
	}
	return nil
}

func countUnmatched(anchors []scope.DecorationAnchor) int {
	n := 0
	for _, a := range anchors {
		if a.Unmatched {
			n++
		}
	}
	return n
}

// jsonAnchor is the machine-readable anchor shape.
type jsonAnchor struct {
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Label     string `json:"label"`
	LineSpan  int    `json:"line_span"`
	Unmatched bool   `json:"unmatched,omitempty"`
}

type jsonFile struct {
	Path     string       `json:"path"`
	Language string       `json:"language"`
	Anchors  []jsonAnchor `json:"anchors"`
}

func writeJSON(out io.Writer, path, languageID string, anchors []scope.DecorationAnchor) error {
	file := jsonFile{
		Path:     path,
		Language: languageID,
		Anchors:  make([]jsonAnchor, 0, len(anchors)),
	}
	for _, a := range anchors {
		file.Anchors = append(file.Anchors, jsonAnchor{
			Line:      a.Range.StartLine,
			Column:    a.Range.StartColumn,
			Label:     a.Label,
			LineSpan:  a.LineSpan,
			Unmatched: a.Unmatched,
		})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

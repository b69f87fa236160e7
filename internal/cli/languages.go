package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bastndev/bracketlens/internal/ui/pretty"
	"github.com/bastndev/bracketlens/pkg/grammar"
)

func newLanguagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List languages with built-in grammars",
		Long: `List the language identifiers with built-in bracket grammars.

Files in any other language fall back to a generic grammar with
C-style comments and the common symbol bracket pairs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			colorMode, err := cmd.Flags().GetString("color")
			if err != nil {
				colorMode = "auto"
			}
			out := cmd.OutOrStdout()
			styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))

			set := grammar.NewBuiltinSet()
			for _, id := range set.Languages() {
				fmt.Fprintln(out, "  "+styles.Bold.Render(id))
			}
			return nil
		},
	}

	return cmd
}

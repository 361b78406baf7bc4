package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an emitter configuration file",
	Long: `Validate an emitter configuration file without scanning.

Every entry is built exactly as at startup, so unknown kinds, unknown
fields, bad URLs and bad templates are all reported.
File format is auto-detected from extension (.toml, .yaml, .yml, .json).

Examples:
  tilted validate -c /etc/tilted.toml`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd.OutOrStdout(), settings.Config); err != nil {
			fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
			os.Exit(1)
		}
	},
}

func runValidate(w io.Writer, path string) error {
	emitters, err := buildEmitters(path)
	if err != nil {
		return err
	}
	defer closeEmitters(emitters)

	names := make([]string, 0, len(emitters))
	for _, e := range emitters {
		names = append(names, fmt.Sprintf("%s (%s)", e.Name, e.Kind))
	}
	fmt.Fprintf(w, "VALID: %d emitter(s)", len(emitters))
	if len(names) > 0 {
		fmt.Fprintf(w, ": %s", strings.Join(names, ", "))
	}
	fmt.Fprintln(w)
	return nil
}

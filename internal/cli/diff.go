package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simrig-tools/simconf/internal/compare"
	"github.com/simrig-tools/simconf/internal/parser"
	"github.com/simrig-tools/simconf/internal/settings"
)

var diffCmd = &cobra.Command{
	Use:   "diff <left> <right>",
	Short: "Compare two configuration files of the same dialect",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().Bool("ini", false, "treat the files as INI instead of JSON settings")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	log := newLogger()

	parse := parser.NewJSONParser(log).ParseFile
	if ini, _ := cmd.Flags().GetBool("ini"); ini {
		parse = parser.NewINIParser(log).ParseFile
	}

	left, err := parse(args[0])
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	right, err := parse(args[1])
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[1], err)
	}

	diffs := compare.Configurations(left.FieldMap(), right.FieldMap())
	out := cmd.OutOrStdout()

	if len(diffs) == 0 {
		fmt.Fprintln(out, "No differences found.")
		return nil
	}

	for _, group := range compare.ByCategory(diffs) {
		fmt.Fprintf(out, "[%s]\n", group.Category)
		for _, d := range group.Diffs {
			switch d.Type {
			case compare.FieldAdded:
				fmt.Fprintf(out, "  + %s = %s\n", d.Name, compare.FormatValue(d.Right, d.FieldType))
			case compare.FieldRemoved:
				fmt.Fprintf(out, "  - %s = %s\n", d.Name, compare.FormatValue(d.Left, d.FieldType))
			case compare.TypeChanged:
				fmt.Fprintf(out, "  ~ %s: %s -> %s (type changed)\n", d.Name,
					compare.FormatValue(d.Left, typeOf(d.Left)), compare.FormatValue(d.Right, typeOf(d.Right)))
			case compare.ValueChanged:
				fmt.Fprintf(out, "  ~ %s: %s -> %s\n", d.Name,
					compare.FormatValue(d.Left, d.FieldType), compare.FormatValue(d.Right, d.FieldType))
			}
		}
	}

	s := compare.Summarize(diffs)
	fmt.Fprintf(out, "\n%d difference(s): %d changed, %d type changes, %d added, %d removed\n",
		s.Total, s.ValueChanged, s.TypeChanged, s.FieldAdded, s.FieldRemoved)
	return nil
}

func typeOf(v *settings.Value) settings.Type {
	if v == nil {
		return settings.TypeString
	}
	return v.Type
}

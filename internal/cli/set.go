package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Change a field value and write it back",
	Long: `Set a field to a new value. The value is coerced to the field's type
(integers and floats parse numeric text, booleans accept on/off words). The
file is patched in place: only the changed line is rewritten, comments and
formatting survive untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().Bool("dry-run", false, "show the change without writing files")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	m, err := loadModel()
	if err != nil {
		return err
	}

	path, raw := args[0], args[1]
	if _, ok := m.FieldValue(path); !ok {
		return fmt.Errorf("unknown field: %s", path)
	}

	out := cmd.OutOrStdout()
	if !m.SetFieldValue(path, raw) {
		fmt.Fprintln(out, "no change")
		return nil
	}

	value, _ := m.FieldValue(path)
	fmt.Fprintf(out, "%s = %s\n", path, value.String())

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		fmt.Fprintf(out, "dry run: %d pending change(s) not written\n", m.ChangeCount())
		return nil
	}

	settingsPath, iniPath, err := configPaths()
	if err != nil {
		return err
	}
	if err := backupFiles(settingsPath, iniPath); err != nil {
		return err
	}

	if err := m.Apply(); err != nil {
		return fmt.Errorf("applying changes: %w", err)
	}
	return nil
}

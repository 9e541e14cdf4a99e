package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/simrig-tools/simconf/internal/model"
)

const backupSuffix = ".bak"

var revertCmd = &cobra.Command{
	Use:   "revert [path]",
	Short: "Restore configuration from the backups written by set",
	Long: `set keeps a .bak copy of each file from before its write. Without
arguments, revert puts both backups back in place wholesale. With a field
path, only that field is reset to its backup value and patched into the
live file; other edits stay.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRevert,
}

func init() {
	rootCmd.AddCommand(revertCmd)
}

func runRevert(cmd *cobra.Command, args []string) error {
	settingsPath, iniPath, err := configPaths()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(args) == 0 {
		restored := 0
		for _, path := range []string{settingsPath, iniPath} {
			ok, err := restoreBackup(path)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "restored %s\n", path)
				restored++
			}
		}
		if restored == 0 {
			return fmt.Errorf("no backups found; set writes them before its first change")
		}
		return nil
	}

	path := args[0]

	m, err := loadModel()
	if err != nil {
		return err
	}
	if _, ok := m.FieldValue(path); !ok {
		return fmt.Errorf("unknown field: %s", path)
	}

	backup := model.New(newLogger())
	if err := backup.Load(settingsPath+backupSuffix, iniPath+backupSuffix); err != nil {
		return fmt.Errorf("loading backups: %w", err)
	}
	want, ok := backup.FieldValue(path)
	if !ok {
		return fmt.Errorf("field %s not present in backup", path)
	}

	if !m.SetFieldValue(path, want) {
		fmt.Fprintln(out, "already matches backup")
		return nil
	}
	if err := m.Apply(); err != nil {
		return fmt.Errorf("applying revert: %w", err)
	}
	fmt.Fprintf(out, "%s = %s\n", path, want.String())
	return nil
}

// backupFiles copies each file to its .bak sibling, replacing any earlier
// backup.
func backupFiles(paths ...string) error {
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("backing up %s: %w", path, err)
		}
		if err := os.WriteFile(path+backupSuffix, b, 0o644); err != nil {
			return fmt.Errorf("backing up %s: %w", path, err)
		}
	}
	return nil
}

// restoreBackup copies a .bak sibling over its file. It reports whether a
// backup existed.
func restoreBackup(path string) (bool, error) {
	b, err := os.ReadFile(path + backupSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return false, fmt.Errorf("restoring %s: %w", path, err)
	}
	return true, nil
}

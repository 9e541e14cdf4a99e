package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simrig-tools/simconf/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report external changes to the configuration files",
	Long: `Watch both configuration files and print a line whenever another
program (the game, an editor) modifies one of them. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	settingsPath, iniPath, err := configPaths()
	if err != nil {
		return err
	}

	w, err := watcher.New(newLogger())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	for _, path := range []string{settingsPath, iniPath} {
		if err := w.Add(path); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	w.OnChange(func(path string) {
		fmt.Fprintf(out, "changed: %s\n", path)
	})
	w.Start()

	fmt.Fprintf(out, "watching %s and %s (ctrl-c to stop)\n", settingsPath, iniPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

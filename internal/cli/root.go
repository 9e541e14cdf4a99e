// Package cli provides the simconf command-line interface, a thin consumer
// of the configuration model: it loads the settings/INI pair, lists and
// edits fields, and compares documents.
package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/simrig-tools/simconf/internal/logging"
	"github.com/simrig-tools/simconf/internal/model"
	"github.com/simrig-tools/simconf/internal/settings"
)

// modelReader is the read-only slice of the model the display helpers need.
type modelReader interface {
	FieldValue(path string) (settings.Value, bool)
	FieldInfo(path string) (*settings.FieldInfo, bool)
}

var rootCmd = &cobra.Command{
	Use:   "simconf",
	Short: "Inspect and edit game configuration files",
	Long: `simconf reads the game's commented JSON settings file and its INI
companion, exposes every field by dotted path, and writes edits back without
disturbing comments, ordering or formatting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// NewRootCmd wires flags and environment and returns the root command.
func NewRootCmd(version, commit, buildDate string) *cobra.Command {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate)

	// pflag panics on re-registration, so wiring runs once per process.
	if rootCmd.PersistentFlags().Lookup("settings") == nil {
		rootCmd.PersistentFlags().String("settings", "", "path to the JSON settings file")
		rootCmd.PersistentFlags().String("config", "", "path to the INI configuration file")
		rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
		rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

		viper.SetEnvPrefix("SIMCONF")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()

		for _, name := range []string{"settings", "config", "log-level", "log-format"} {
			if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
				panic(fmt.Sprintf("binding flag %s: %v", name, err))
			}
		}
	}

	return rootCmd
}

// Execute runs the CLI.
func Execute(version, commit, buildDate string) error {
	return NewRootCmd(version, commit, buildDate).Execute()
}

// newLogger builds the logger from the resolved flag/env values.
func newLogger() zerolog.Logger {
	return logging.NewFromConfigValues(viper.GetString("log-level"), viper.GetString("log-format"))
}

// configPaths resolves the settings/INI pair from flags or SIMCONF_SETTINGS /
// SIMCONF_CONFIG.
func configPaths() (settingsPath, iniPath string, err error) {
	settingsPath = viper.GetString("settings")
	iniPath = viper.GetString("config")
	if settingsPath == "" || iniPath == "" {
		return "", "", fmt.Errorf("both --settings and --config must be set (or SIMCONF_SETTINGS / SIMCONF_CONFIG)")
	}
	return settingsPath, iniPath, nil
}

// loadModel parses both files into a fresh model.
func loadModel() (*model.Model, error) {
	settingsPath, iniPath, err := configPaths()
	if err != nil {
		return nil, err
	}

	m := model.New(newLogger())
	if err := m.Load(settingsPath, iniPath); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return m, nil
}

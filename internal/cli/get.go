package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print the current value of a field",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().Bool("verbose", false, "print type, category and description too")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	m, err := loadModel()
	if err != nil {
		return err
	}

	path := args[0]
	value, ok := m.FieldValue(path)
	if !ok {
		return fmt.Errorf("unknown field: %s", path)
	}

	out := cmd.OutOrStdout()
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		fmt.Fprintln(out, value.String())
		return nil
	}

	info, _ := m.FieldInfo(path)
	fmt.Fprintf(out, "path:     %s\n", path)
	fmt.Fprintf(out, "value:    %s\n", value.String())
	if info != nil {
		fmt.Fprintf(out, "type:     %s\n", info.Type)
		fmt.Fprintf(out, "category: %s\n", info.Category)
		if info.Description != "" {
			fmt.Fprintf(out, "info:     %s\n", info.Description)
		}
	}
	return nil
}

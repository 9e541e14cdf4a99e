package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List configuration fields by category",
	RunE:  runFields,
}

func init() {
	fieldsCmd.Flags().String("search", "", "filter fields whose name contains the query")
	fieldsCmd.Flags().String("category", "", "show only the given category")
	fieldsCmd.Flags().Bool("descriptions", false, "print field descriptions")
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, _ []string) error {
	m, err := loadModel()
	if err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	category, _ := cmd.Flags().GetString("category")
	withDesc, _ := cmd.Flags().GetBool("descriptions")

	if search != "" {
		for _, path := range m.SearchFields(search) {
			printField(cmd, m, path, withDesc)
		}
		return nil
	}

	for _, cat := range m.Categories() {
		if category != "" && cat.Name != category {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", cat.Name)
		for _, path := range cat.Fields {
			printField(cmd, m, path, withDesc)
		}
	}
	return nil
}

func printField(cmd *cobra.Command, m modelReader, path string, withDesc bool) {
	value, ok := m.FieldValue(path)
	if !ok {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s = %s\n", path, value.String())
	if withDesc {
		if info, ok := m.FieldInfo(path); ok && info.Description != "" {
			fmt.Fprintf(out, "      %s\n", info.Description)
		}
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zachkp/dev-portfolio/internal/content"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a portfolio content file",
	Long: `validate parses a portfolio YAML file and reports every problem found.
Without an argument the embedded default content is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		p, err := content.Load(path)
		if err != nil {
			return err
		}
		name := path
		if name == "" {
			name = "embedded content"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d skill groups, %d projects, %d awards)\n",
			name, len(p.Skills), len(p.Projects), len(p.Awards))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

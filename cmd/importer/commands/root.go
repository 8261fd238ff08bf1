package commands

import (
	"github.com/spf13/cobra"
)

var planFile string

// Execute runs the importer CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Import finishing materials from BigBox",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&planFile, "plan", "import_plan.yaml", "import plan YAML file")

	root.AddCommand(runCmd(), validateCmd(), lastCmd())
	return root
}

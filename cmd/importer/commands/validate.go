package commands

import (
	"fmt"

	"jamb/services/importer"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check an import plan without calling BigBox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := importer.LoadPlan(planFile)
			if err != nil {
				return err
			}
			codes := map[string]bool{}
			for _, e := range plan.Entries {
				codes[e.WorkCode] = true
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries across %d work codes\n", planFile, len(plan.Entries), len(codes))
			return nil
		},
	}
}

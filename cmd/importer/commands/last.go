package commands

import (
	"fmt"

	"jamb/config"
	"jamb/database"
	"jamb/database/repository"
	"jamb/services/importer"

	"github.com/spf13/cobra"
)

func lastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the summary of the most recent import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadConfig()
			db, err := database.OpenMaterialsDB(config.AppConfig.MaterialsDatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			report, err := repository.NewPostgresMaterialsRepo(db).LastImport()
			if err != nil {
				return err
			}
			if report == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no import has run yet")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (finished %s)\n", importer.Summary(*report), report.FinishedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

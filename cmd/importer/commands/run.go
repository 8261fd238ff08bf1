package commands

import (
	"errors"
	"fmt"

	"jamb/config"
	"jamb/database"
	"jamb/database/repository"
	"jamb/services/importer"
	"jamb/services/materials"
	"jamb/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every plan entry and upsert the materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := importer.LoadPlan(planFile)
			if err != nil {
				return err
			}

			config.LoadConfig()
			cfg := config.AppConfig
			if cfg.BigBoxAPIKey == "" {
				return errors.New("BIGBOX_API_KEY is not set")
			}
			logger := utils.GetLogger()
			defer logger.Sync()

			db, err := database.OpenMaterialsDB(cfg.MaterialsDatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(db); err != nil {
				return err
			}

			repo := repository.NewPostgresMaterialsRepo(db)
			im := &importer.Importer{
				Client:      importer.NewBigBoxClient(cfg.BigBoxBaseURL, cfg.BigBoxAPIKey),
				Materials:   &materials.DefaultMaterialsService{Repo: repo},
				History:     repo,
				Concurrency: concurrency,
			}

			report, err := im.Run(cmd.Context(), plan)
			if err != nil {
				return err
			}
			logger.Info("Import finished", zap.String("plan", planFile), zap.Int("failed", report.Failed))
			fmt.Fprintln(cmd.OutOrStdout(), importer.Summary(report))
			if report.Failed > 0 {
				return fmt.Errorf("%d plan entries failed", report.Failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "plan entries fetched in parallel")
	return cmd
}

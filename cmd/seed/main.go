// Command seed loads a catalog YAML file into MongoDB.
package main

import (
	"context"
	"fmt"
	"os"

	"jamb/config"
	"jamb/database"
	"jamb/database/repository"
	"jamb/services/catalog"
	"jamb/utils"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var file string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the services catalog from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := catalog.LoadSeed(file)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d categories, %d services\n", file, len(seed.Categories), len(seed.Services))
				return nil
			}

			config.LoadConfig()
			database.InitDB()
			defer database.CloseDB(context.Background())

			svc := &catalog.DefaultCatalogService{Repo: repository.NewMongoCatalogRepo()}
			// Cached reads would otherwise serve the old catalog until they expire.
			if config.AppConfig.RedisAddr != "" {
				utils.InitRedis()
				svc.Cache = &catalog.RedisCache{Client: utils.GetCacheClient()}
			}

			categories, services, err := seed.Apply(cmd.Context(), svc)
			fmt.Fprintf(cmd.OutOrStdout(), "upserted %d categories and %d services\n", categories, services)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "catalog YAML file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing")
	return cmd
}

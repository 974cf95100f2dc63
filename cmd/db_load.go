package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/buildwise/buildwise/internal/utils"
	"github.com/buildwise/buildwise/pkg/storage"
)

// loadCmd upserts seed components into the catalog.
var loadCmd = &cobra.Command{
	Use:   "load <file.json>",
	Short: "Load components from a JSON seed file into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prune, _ := cmd.Flags().GetBool("prune")
		quiet, _ := cmd.Flags().GetBool("quiet")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		items, err := storage.ParseSeed(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		utils.Log.Debugf("Parsed %d components from %s", len(items), args[0])

		load := func() error {
			db, err := openCatalog()
			if err != nil {
				return err
			}
			defer db.Close()

			changes, err := db.UpsertComponents(context.Background(), items, prune)
			if err != nil {
				return err
			}
			if !quiet {
				printChanges(changes)
			}
			utils.Log.Infof("Loaded %d components, %d changes", len(items), len(changes))
			return nil
		}

		// Postgres serializes writers itself
		if dsn := viper.GetString("db.dsn"); !storage.IsPostgres(dsn) {
			return utils.WithDBLock(dsn, load)
		}
		return load()
	},
}

func printChanges(changes []storage.Change) {
	for _, c := range changes {
		switch c.ChangeType {
		case storage.ChangeAdded:
			fmt.Printf("+  %-12s %-40s %.2f\n", c.Category, c.Name, c.Price)
		case storage.ChangeRemoved:
			fmt.Printf("-  %-12s %-40s %.2f\n", c.Category, c.Name, c.Price)
		case storage.ChangeUpdated:
			fmt.Printf("~  %-12s %-40s %.2f -> %.2f\n", c.Category, c.Name, c.OldPrice, c.Price)
		}
	}
}

func init() {
	dbCmd.AddCommand(loadCmd)
	loadCmd.Flags().Bool("prune", false, "Delete components of the loaded categories that are missing from the file")
	loadCmd.Flags().BoolP("quiet", "q", false, "Do not print individual changes")
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/buildwise/buildwise/pkg/storage"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the component catalog database",
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := viper.GetString("db.dsn")

		if storage.IsPostgres(dsn) {
			psqlPath, err := exec.LookPath("psql")
			if err != nil {
				return fmt.Errorf("psql command not found in your PATH. Please install it to use the db shell")
			}
			c := exec.Command(psqlPath, dsn)
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			return c.Run()
		}

		if _, err := os.Stat(dsn); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dsn)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dsn, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dsn)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-category counts and price ranges of the catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCatalog()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("The catalog is empty. Load components with 'buildwise db load'.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "CATEGORY\tCOMPONENTS\tAVAILABLE\tMIN\tMAX\tAVG\t")

		var total, available int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t\n", s.Category, s.Count, s.Available, s.MinPrice, s.MaxPrice, s.AvgPrice)
			total += s.Count
			available += s.Available
		}

		fmt.Fprintln(w, " \t \t \t \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t \t \t \t\n", total, available)

		w.Flush()

		return nil
	},
}

// openCatalog opens the store named by db.dsn.
func openCatalog() (*storage.DB, error) {
	dsn := viper.GetString("db.dsn")
	db, err := storage.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", dsn, err)
	}
	return db, nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(statsCmd)
}

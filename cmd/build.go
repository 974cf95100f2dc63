package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/buildwise/buildwise/internal/utils"
	"github.com/buildwise/buildwise/pkg/benchmarks"
	"github.com/buildwise/buildwise/pkg/parts"
	"github.com/buildwise/buildwise/pkg/wizard"
)

// buildCmd runs the configurator against the catalog.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Configure a compatible PC build for a budget and workload",
	Example: `  buildwise build --budget 1500 --profile gaming
  buildwise build --budget unlimited --profile multithreaded --monitor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		budgetStr, _ := cmd.Flags().GetString("budget")
		profileStr, _ := cmd.Flags().GetString("profile")
		minStorage, _ := cmd.Flags().GetInt("min-storage")
		monitor, _ := cmd.Flags().GetBool("monitor")
		asJSON, _ := cmd.Flags().GetBool("json")
		trace, _ := cmd.Flags().GetBool("trace")

		budget, err := wizard.ParseBudget(budgetStr)
		if err != nil {
			return err
		}
		profile, err := wizard.ParseProfile(profileStr)
		if err != nil {
			return err
		}
		req := wizard.Request{Budget: budget, Profile: profile, MinStorageGB: minStorage, IncludeMonitor: monitor}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		pol, err := loadPolicy()
		if err != nil {
			return err
		}
		table, err := benchmarks.Load(ctx, benchmarks.Source{
			File: viper.GetString("benchmarks.file"),
			URL:  viper.GetString("benchmarks.url"),
		})
		if err != nil {
			return err
		}
		utils.Log.Debugf("Using benchmark table %s", table.Version)

		db, err := openCatalog()
		if err != nil {
			return err
		}
		defer db.Close()

		rec := &wizard.Recorder{}
		sink := wizard.MultiSink{wizard.LogSink{Logger: utils.Log}, rec}
		cfg := wizard.New(db, wizard.WithPolicy(pol), wizard.WithBenchmarks(table), wizard.WithSink(sink))

		res, err := cfg.Configure(ctx, req)
		if trace {
			printTrace(rec.Events())
		}
		if err != nil {
			if asJSON {
				printJSON(wizard.FailureFrom(err))
			}
			return err
		}

		if asJSON {
			printJSON(res)
			return nil
		}
		printResult(res, req.Budget)
		return nil
	},
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		utils.Log.Error(err)
	}
}

func printResult(res *wizard.Result, budget wizard.Budget) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tQTY\tCOMPONENT\tUNIT PRICE\t")
	for _, cat := range parts.Categories {
		list := res.Build[cat]
		if len(list) == 0 {
			continue
		}
		// identical units collapse into one line
		counts := map[string]int{}
		var order []parts.Component
		for _, c := range list {
			if counts[c.ID] == 0 {
				order = append(order, c)
			}
			counts[c.ID]++
		}
		for _, c := range order {
			fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\t\n", cat, counts[c.ID], c.Name, c.Price)
		}
	}
	fmt.Fprintln(w, " \t \t \t \t")
	fmt.Fprintf(w, "TOTAL\t \t(budget %s)\t%.2f\t\n", budget, res.TotalCost)
	w.Flush()

	psu := fmt.Sprintf("\nRecommended PSU wattage: %dW", res.RecommendedWattage)
	if res.RelaxedPSU {
		psu += " (no unit met it; closest available chosen)"
	}
	fmt.Println(psu)
	if !res.UnderBudget {
		fmt.Println("Warning: the build exceeds the budget.")
	}
	if len(res.Downgrades) > 0 {
		fmt.Println("Downgrades applied:")
		for _, d := range res.Downgrades {
			to := d.To
			if to == "" {
				to = "(removed)"
			}
			fmt.Printf("  %2d. %-12s %s -> %s (saved %.2f)\n", d.Iteration, d.Category, d.From, to, d.Saving)
		}
	}
}

func printTrace(events []wizard.Event) {
	for _, e := range events {
		var kv []string
		for k, v := range e.Fields {
			kv = append(kv, fmt.Sprintf("%s=%v", k, v))
		}
		id := e.RequestID
		if len(id) > 8 {
			id = id[:8]
		}
		cat := string(e.Category)
		if cat == "" {
			cat = "-"
		}
		fmt.Fprintf(os.Stderr, "[%s] %-10s %-12s %s %s\n", id, e.Stage, cat, e.Message, strings.Join(kv, " "))
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("budget", "b", "", "Budget in dollars, or \"unlimited\"")
	buildCmd.Flags().StringP("profile", "p", "gaming", "Workload profile: gaming or multithreaded")
	buildCmd.Flags().Int("min-storage", 0, "Minimum total storage in GB (0 for the default)")
	buildCmd.Flags().Bool("monitor", false, "Include a monitor in the build")
	buildCmd.Flags().Bool("json", false, "Print the result as JSON")
	buildCmd.Flags().Bool("trace", false, "Print every configurator event to stderr")
	buildCmd.MarkFlagRequired("budget")
}

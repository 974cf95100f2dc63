package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

// listCmd runs a catalog query, the same kind the configurator issues.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog components matching a query",
	Example: `  buildwise db list --category cpu --max-price 300
  buildwise db list --category motherboard --socket AM5 --memory DDR5 --sort price --desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catName, _ := cmd.Flags().GetString("category")
		cat, ok := parts.ParseCategory(catName)
		if !ok {
			return fmt.Errorf("unknown category %q, expected one of %s", catName, categoryNames())
		}

		q := catalog.Query{Category: cat}
		q.MinPrice, _ = cmd.Flags().GetFloat64("min-price")
		q.MaxPrice, _ = cmd.Flags().GetFloat64("max-price")
		q.Limit, _ = cmd.Flags().GetInt("limit")
		q.Desc, _ = cmd.Flags().GetBool("desc")
		all, _ := cmd.Flags().GetBool("all")
		q.AvailableOnly = !all
		if s, _ := cmd.Flags().GetString("socket"); s != "" {
			q.Sockets = []string{string(parts.CanonicalSocket(s))}
		}
		if m, _ := cmd.Flags().GetString("memory"); m != "" {
			q.MemoryType = parts.CanonicalMemoryType(m)
		}
		q.NameContains, _ = cmd.Flags().GetString("name")
		sortKey, _ := cmd.Flags().GetString("sort")
		q.Sort = catalog.SortKey(sortKey)

		db, err := openCatalog()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := db.Find(context.Background(), q)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No components match.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tDETAILS\tAVAILABLE")
		for _, c := range items {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%t\n", c.ID, c.Name, c.Price, details(c), c.Available)
		}
		return w.Flush()
	},
}

// details renders the attributes that matter for a component's category.
func details(c parts.Component) string {
	var d []string
	if c.Socket != "" {
		d = append(d, string(c.Socket))
	}
	if c.Chipset != "" {
		d = append(d, c.Chipset)
	}
	for _, m := range c.MemoryTypes {
		d = append(d, string(m))
	}
	if c.FormFactor != "" {
		d = append(d, c.FormFactor)
	}
	if c.CapacityGB > 0 {
		d = append(d, fmt.Sprintf("%dGB", c.CapacityGB))
	}
	if c.StorageType != "" {
		d = append(d, string(c.StorageType))
	}
	if c.Wattage > 0 {
		d = append(d, fmt.Sprintf("%dW", c.Wattage))
	}
	if c.TDP > 0 {
		d = append(d, fmt.Sprintf("TDP %dW", c.TDP))
	}
	return strings.Join(d, " ")
}

func categoryNames() string {
	names := make([]string, len(parts.Categories))
	for i, c := range parts.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func init() {
	dbCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("category", "c", "", "Component category ("+categoryNames()+")")
	listCmd.Flags().Float64("min-price", 0, "Minimum price")
	listCmd.Flags().Float64("max-price", 0, "Maximum price (0 for no cap)")
	listCmd.Flags().String("socket", "", "Only components for this socket")
	listCmd.Flags().String("memory", "", "Only components supporting this memory type")
	listCmd.Flags().String("name", "", "Only components whose name contains this text")
	listCmd.Flags().String("sort", "price", "Sort key: price, performance, single_core, multi_core, capacity, wattage")
	listCmd.Flags().Bool("desc", false, "Sort descending")
	listCmd.Flags().IntP("limit", "n", 0, "Maximum number of results (0 for all)")
	listCmd.Flags().Bool("all", false, "Include unavailable components")
	listCmd.MarkFlagRequired("category")
}

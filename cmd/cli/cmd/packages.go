// Package cmd - packages command
package cmd

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"aurora-quote/core/catalog"
	"aurora-quote/core/selfcheck"
	"aurora-quote/core/ui"
	"aurora-quote/internal/config"
	"aurora-quote/internal/errors"
)

var packagesFormat string

// packagesCmd lists the packages with their default totals
var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List packages with their default totals",
	Long: `List every package of the active matrix with its default equipment and
the hours and price of an unedited quote.`,
	Args: cobra.NoArgs,
	RunE: runPackages,
}

func init() {
	packagesCmd.Flags().StringVarP(&packagesFormat, "format", "f", "table", "output format (table, json)")
}

// packageSummary is one row of the packages listing
type packageSummary struct {
	ID        catalog.PackageID `json:"id"`
	Title     string            `json:"title"`
	Equipment string            `json:"default_equipment"`
	Services  int               `json:"services"`
	Hours     float64           `json:"hours"`
	Price     int64             `json:"price"`
	Problem   string            `json:"problem,omitempty"`
}

func runPackages(cmd *cobra.Command, args []string) error {
	if packagesFormat != "table" && packagesFormat != "json" {
		return errors.Newf(errors.TypeInput, "unknown format %q: expected table or json", packagesFormat)
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	c := e.Catalog()
	stats := c.Stats()

	rows := make([]packageSummary, 0, len(catalog.KnownPackages))
	for _, id := range catalog.KnownPackages {
		row := packageSummary{ID: id, Services: stats.ByPackage[id].Offered}
		if pkg, ok := c.Package(id); ok {
			row.Title = pkg.Title
			row.Equipment = formatEquipment(pkg.DefaultEquipment)
		}
		totals, diag := selfcheck.DefaultTotals(c, id, e.Rate())
		if diag != nil {
			row.Problem = string(diag.Kind)
		}
		row.Hours = totals.TotalHours
		row.Price = totals.TotalPrice
		rows = append(rows, row)
	}

	if packagesFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	currency := config.Get().Pricing.Currency
	w := newWriter(cmd)
	w.Header("Packages")
	table := w.NewTable("Package", "Title", "Default equipment", "Services", "Hours", "Price").AlignRight(3, 4, 5)
	for _, row := range rows {
		price := ui.FormatMoney(row.Price, currency)
		if row.Problem != "" {
			price = row.Problem
		}
		table.AddRow(string(row.ID), row.Title, row.Equipment,
			strconv.Itoa(row.Services), ui.FormatHours(row.Hours), price)
	}
	table.Render()

	if e.CatalogBroken() {
		w.Println("")
		w.Error("Service matrix failed its self-check; run `aurora-quote check` for details")
	}
	return nil
}

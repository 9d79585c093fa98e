// Package cmd - quote command
package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
	"aurora-quote/core/equipment"
	"aurora-quote/core/pricing"
	"aurora-quote/core/quote"
	"aurora-quote/internal/config"
	"aurora-quote/internal/errors"
)

var (
	quotePackage  string
	quoteFormat   string
	quoteSets     []string
	quoteShowZero bool
)

// equipment flags, applied on top of the package default equipment
var equipmentFlags = []string{"regular", "smart", "other", "scanners", "printers"}

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Build a quote for one package",
	Long: `Resolve a package preset, apply the client's equipment and price the result.

Equipment flags you leave out keep the package default. --set pins a service
quantity and may be repeated.

Examples:
  aurora-quote quote --package retail_only
  aurora-quote quote -p producer_retail --regular 3 --smart 1 --printers 2
  aurora-quote quote -p wholesale_only --set reg_chz=2 --format json`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quotePackage, "package", "p", "", "package id (retail_only, wholesale_only, producer_only, producer_retail) [REQUIRED]")
	quoteCmd.Flags().IntP("regular", "r", 0, "number of regular cash registers")
	quoteCmd.Flags().Int("smart", 0, "number of smart-terminal registers")
	quoteCmd.Flags().Int("other", 0, "number of other registers")
	quoteCmd.Flags().Int("scanners", 0, "number of barcode scanners")
	quoteCmd.Flags().Int("printers", 0, "number of label printers")
	quoteCmd.Flags().StringArrayVar(&quoteSets, "set", nil, "pin a service quantity as id=qty")
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "table", "output format (table, json)")
	quoteCmd.Flags().BoolVar(&quoteShowZero, "all", false, "also show services with quantity 0")
	_ = quoteCmd.MarkFlagRequired("package")
}

// quoteResult is the JSON form of a quote
type quoteResult struct {
	SessionID     string                   `json:"session_id"`
	Package       catalog.PackageID        `json:"package"`
	Equipment     equipment.Snapshot       `json:"equipment"`
	Lines         []*quote.ServiceLine     `json:"lines"`
	Totals        pricing.Totals           `json:"totals"`
	Currency      string                   `json:"currency"`
	CatalogBroken bool                     `json:"catalog_broken"`
	Diagnostics   []diagnostics.Diagnostic `json:"diagnostics"`
}

func runQuote(cmd *cobra.Command, args []string) error {
	if quoteFormat != "table" && quoteFormat != "json" {
		return errors.Newf(errors.TypeInput, "unknown format %q: expected table or json", quoteFormat)
	}
	overrides, err := parseOverrides(quoteSets)
	if err != nil {
		return err
	}

	e, err := newEngine()
	if err != nil {
		return err
	}

	sess := e.NewSession()
	if diag := sess.SelectPackage(catalog.PackageID(quotePackage)); diag != nil {
		return errors.Input(diag.String()).WithContext("known", catalog.KnownPackages)
	}

	snap, err := equipmentFromFlags(cmd, sess.Equipment())
	if err != nil {
		return err
	}
	sess.UpdateEquipment(snap)

	for _, o := range overrides {
		if err := sess.SetQuantity(o.id, o.qty); err != nil {
			return err
		}
	}

	lines := sess.Lines()
	totals, diags := e.ComputeTotals(lines)
	cfg := config.Get()

	if quoteFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(quoteResult{
			SessionID:     sess.ID(),
			Package:       sess.Package(),
			Equipment:     sess.Equipment(),
			Lines:         lines,
			Totals:        totals,
			Currency:      cfg.Pricing.Currency,
			CatalogBroken: e.CatalogBroken(),
			Diagnostics:   diags,
		})
	}

	w := newWriter(cmd)
	title := string(sess.Package())
	if pkg, ok := e.Catalog().Package(sess.Package()); ok && pkg.Title != "" {
		title = pkg.Title
	}

	summary := w.NewQuoteSummary()
	summary.Package = title
	summary.Lines = lines
	summary.Totals = totals
	summary.Currency = cfg.Pricing.Currency
	summary.ShowZero = quoteShowZero
	summary.CatalogBroken = e.CatalogBroken()
	summary.Render()

	eq := sess.Equipment()
	w.Debug("session %s: regular=%d smart=%d other=%d scanners=%d printers=%d",
		sess.ID(), eq.Regular, eq.Smart, eq.Other, eq.Scanners, eq.Printers)
	return nil
}

// equipmentFromFlags overlays the equipment flags the user set on base
func equipmentFromFlags(cmd *cobra.Command, base equipment.Snapshot) (equipment.Snapshot, error) {
	targets := map[string]*int{
		"regular":  &base.Regular,
		"smart":    &base.Smart,
		"other":    &base.Other,
		"scanners": &base.Scanners,
		"printers": &base.Printers,
	}
	for _, name := range equipmentFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetInt(name)
		if err != nil {
			return base, errors.Wrapf(errors.TypeInput, err, "invalid --%s", name)
		}
		if v < 0 {
			return base, errors.Newf(errors.TypeInput, "--%s must not be negative", name)
		}
		*targets[name] = v
	}
	return base, nil
}

type override struct {
	id  string
	qty int
}

// parseOverrides reads id=qty pairs. A later pair for the same id wins; the
// result is sorted by id.
func parseOverrides(pairs []string) ([]override, error) {
	byID := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		id, value, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, errors.Newf(errors.TypeInput, "invalid --set %q: expected id=qty", pair)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "invalid quantity in --set %q", pair)
		}
		if qty < 0 {
			return nil, errors.Newf(errors.TypeInput, "quantity in --set %q must not be negative", pair)
		}
		byID[id] = qty
	}

	result := make([]override, 0, len(byID))
	for id, qty := range byID {
		result = append(result, override{id: id, qty: qty})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].id < result[j].id })
	return result, nil
}

func formatEquipment(s equipment.Snapshot) string {
	parts := []string{}
	for _, p := range []struct {
		name  string
		count int
	}{
		{"regular", s.Regular}, {"smart", s.Smart}, {"other", s.Other},
		{"scanners", s.Scanners}, {"printers", s.Printers},
	} {
		if p.count > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", p.name, p.count))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

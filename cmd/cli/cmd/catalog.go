// Package cmd - catalog commands
package cmd

import (
	"github.com/spf13/cobra"

	"aurora-quote/adapters/matrix"
	"aurora-quote/core/catalog"
	"aurora-quote/core/diagnostics"
)

var (
	importOut string
	exportOut string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Import and export the service matrix",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Convert a matrix file (usually a spreadsheet) to JSON or XLSX",
	Long: `Read a .xlsx, .json or .hcl matrix and write it out in the format chosen
by the --out extension. --sheet picks the spreadsheet sheet (default is the
first one). Rows that had to be repaired are listed.

Examples:
  aurora-quote catalog import prices.xlsx --sheet "Лист1" --out matrix.json
  aurora-quote catalog import matrix.hcl --out matrix.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the active matrix as JSON or XLSX",
	Args:  cobra.NoArgs,
	RunE:  runCatalogExport,
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	catalogImportCmd.Flags().StringVarP(&importOut, "out", "o", "matrix.json", "output file (.json or .xlsx)")
	catalogExportCmd.Flags().StringVarP(&exportOut, "out", "o", "matrix.json", "output file (.json or .xlsx)")
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	c, err := matrix.LoadFile(args[0], catalogSheet)
	if err != nil {
		return err
	}
	if err := matrix.SaveFile(importOut, c); err != nil {
		return err
	}
	reportWritten(cmd, c, importOut)
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	if err := matrix.SaveFile(exportOut, e.Catalog()); err != nil {
		return err
	}
	reportWritten(cmd, e.Catalog(), exportOut)
	return nil
}

func reportWritten(cmd *cobra.Command, c *catalog.Catalog, path string) {
	w := newWriter(cmd)
	stats := c.Stats()
	w.Success("Wrote %d services for %d packages to %s", stats.Services, stats.Packages, path)
	if defects := diagnostics.FromDefects(c.Defects()); len(defects) > 0 {
		w.DiagnosticList("Repaired rows", defects)
	}
}

// Package cmd - check command
package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"aurora-quote/internal/errors"
)

var checkFormat string

// checkCmd validates the active matrix
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the service matrix and run the self-check",
	Long: `Report repaired catalog rows, packages that resolve to no services and
packages whose default totals differ from the golden table.

Exits non-zero when the self-check fails.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "table", "output format (table, json)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkFormat != "table" && checkFormat != "json" {
		return errors.Newf(errors.TypeInput, "unknown format %q: expected table or json", checkFormat)
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	report := e.Startup()

	if checkFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		w := newWriter(cmd)
		stats := e.Catalog().Stats()
		w.Header("Service matrix check")
		w.Info("%d services (%d equipment-driven), %d packages", stats.Services, stats.AutoServices, stats.Packages)
		w.Println("")
		w.DiagnosticList("Catalog defects", report.Defects)
		w.DiagnosticList("Preset validation", report.Validation)
		w.DiagnosticList("Self-check", report.SelfCheck)
		w.Println("")
		if report.Broken {
			w.Error("Service matrix is broken; quotes may be wrong")
		} else {
			w.Success("Service matrix is healthy")
		}
	}

	if report.Broken {
		return errors.Catalog("service matrix failed its self-check").
			WithContext("mismatches", len(report.SelfCheck))
	}
	return nil
}

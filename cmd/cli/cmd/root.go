// Package cmd provides the CLI commands for aurora-quote.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aurora-quote/adapters/matrix"
	"aurora-quote/core/engine"
	"aurora-quote/core/ui"
	"aurora-quote/internal/config"
	"aurora-quote/internal/errors"
	"aurora-quote/internal/logging"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile      string
	verbose      bool
	noColor      bool
	catalogFile  string
	catalogSheet string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aurora-quote",
	Short: "Build service quotes from package presets and client equipment",
	Long: `aurora-quote turns a package (class of client engagement) and the
client's equipment into a list of billable services, hours and a price.

Quantities of equipment-driven services follow the register, scanner and
printer counts; everything else starts from the package preset.

Examples:
  aurora-quote quote --package retail_only --regular 3
  aurora-quote quote --package wholesale_only --set reg_chz=2 --format json
  aurora-quote packages
  aurora-quote check --catalog matrix.xlsx`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aurora-quote/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "service matrix (.json, .hcl or .xlsx); default is the built-in matrix")
	rootCmd.PersistentFlags().StringVar(&catalogSheet, "sheet", "", "sheet to read from an .xlsx matrix")

	// Add subcommands
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(packagesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	config.LoadDotEnv()

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}
	if catalogFile != "" {
		cfg.Catalog.Path = catalogFile
	}
	if catalogSheet != "" {
		cfg.Catalog.Sheet = catalogSheet
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// newEngine builds the engine the commands work with from the global config.
// With SelfCheckOnStart the catalog is checked once before use.
func newEngine() (*engine.Engine, error) {
	cfg := config.Get()

	opts := []engine.Option{engine.WithLogger(logging.Named("engine"))}
	if cfg.Pricing.RatePerHour != 0 {
		opts = append(opts, engine.WithRate(cfg.Pricing.RatePerHour))
	}

	var e *engine.Engine
	if cfg.Catalog.Path == "" {
		e = engine.New(nil, opts...)
	} else {
		c, err := matrix.LoadFile(cfg.Catalog.Path, cfg.Catalog.Sheet)
		if err != nil {
			return nil, err
		}
		e = engine.New(c, opts...)
	}

	if cfg.Diagnostics.SelfCheckOnStart {
		report := e.Startup()
		if report.Broken && cfg.Diagnostics.FailOnBroken {
			return nil, errors.Catalog("service matrix failed its self-check").
				WithContext("mismatches", len(report.SelfCheck))
		}
	}
	return e, nil
}

func newWriter(cmd *cobra.Command) *ui.Writer {
	w := ui.NewWriter(cmd.OutOrStdout(), noColor)
	if verbose {
		w.SetVerbosity(2)
	}
	return w
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aurora-quote version %s\n", Version)
	},
}

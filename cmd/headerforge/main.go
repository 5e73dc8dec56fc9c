package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	version = "dev" // Will be set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "headerforge",
	Short: "Statistically realistic browser headers and fingerprints",
	Long: `Headerforge samples Bayesian-network models of real browser traffic to
produce HTTP request header sets and browser fingerprints that are mutually
consistent and statistically realistic.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(headersCmd)
	rootCmd.AddCommand(fingerprintCmd)
}

// Commands are defined in separate files:
// - headersCmd and fingerprintCmd in generate.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	profileFile string
	profileName string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fairvalue",
	Short: "Equity fair-value estimation and watchlist scoring",
	Long: `fairvalue estimates what a share is worth from public fundamentals.

Four independent models (EV/EBITDA, DCF, Graham number, earnings multiple)
feed a weighted composite, a valuation band verdict and 3-year entry/exit
price bands.

Usage:
  go run ./cmd/fairvalue [command]

Examples:
  go run ./cmd/fairvalue analyze AAPL
  go run ./cmd/fairvalue batch --watchlist watchlist.csv
  go run ./cmd/fairvalue search "apple"
  go run ./cmd/fairvalue api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileFile, "profiles", "", "YAML file with weighting profiles")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "default", "profile name to use from the profiles file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

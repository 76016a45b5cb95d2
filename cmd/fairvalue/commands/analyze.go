package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/format"
	"github.com/wonny/fairvalue/internal/valuation"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Estimate fair value for one ticker",
	Long: `Fetch fundamentals and price history for one ticker and print the
full valuation snapshot: the four model estimates, the weighted composite,
the valuation band and the 3-year entry/exit prices.

Example:
  go run ./cmd/fairvalue analyze AAPL
  go run ./cmd/fairvalue analyze TSLA --mode strict`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeMode string

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "", "composite mode (strict|tolerant), overrides the profile")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(args[0])

	s, cleanup, err := buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	prof, err := resolveProfile()
	if err != nil {
		return err
	}
	mode, err := prof.ParsedMode()
	if err != nil {
		return err
	}
	if analyzeMode != "" {
		if mode, err = valuation.ParseMode(analyzeMode); err != nil {
			return err
		}
	}

	snap, err := s.assembler.Assemble(cmd.Context(), symbol, prof.WeightSet(), mode)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", symbol, err)
	}

	printSnapshot(snap)
	return nil
}

func printSnapshot(snap *contracts.Snapshot) {
	cur := snap.Currency

	fmt.Printf("\n%s — %s\n", snap.Symbol, snap.Name)
	if snap.Industry != "" || snap.Country != "" {
		fmt.Printf("%s | %s | %s cap\n", snap.Industry, snap.Country, snap.CapTier)
	}
	fmt.Println(strings.Repeat("-", 44))

	fmt.Printf("%-24s %s\n", "Current price", format.Currency(contracts.AmountOf(snap.CurrentPrice), cur))
	fmt.Println()
	fmt.Printf("%-24s %s\n", "EV/EBITDA estimate", format.Currency(snap.Estimates.EV, cur))
	fmt.Printf("%-24s %s\n", "DCF estimate", format.Currency(snap.Estimates.DCF, cur))
	fmt.Printf("%-24s %s\n", "Graham estimate", format.Currency(snap.Estimates.Graham, cur))
	fmt.Printf("%-24s %s\n", "P/E estimate", format.Currency(snap.Estimates.PE, cur))
	fmt.Println()
	fmt.Printf("%-24s %s\n", "Weighted fair value", format.Currency(snap.Combined, cur))
	fmt.Printf("%-24s %s\n", "Expected return", format.Percent(snap.ExpectedReturnPct))
	fmt.Printf("%-24s %s\n", "Undervalued (EV)", format.Percent(snap.UndervaluedPct))

	band := string(snap.Band)
	if band == "" {
		band = "-"
	}
	signal := string(snap.Signal)
	if signal == "" {
		signal = "-"
	}
	fmt.Printf("%-24s %s\n", "Valuation band", band)
	fmt.Printf("%-24s %s\n", "Signal", signal)
	fmt.Println()
	fmt.Printf("%-24s %s\n", "3y high", format.Currency(snap.High3Y, cur))
	fmt.Printf("%-24s %s\n", "3y low", format.Currency(snap.Low3Y, cur))
	fmt.Printf("%-24s %s\n", "Entry price (low +5%)", format.Currency(snap.EntryPrice, cur))
	fmt.Printf("%-24s %s\n", "Exit price (high -5%)", format.Currency(snap.ExitPrice, cur))
	fmt.Println()
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Look up ticker symbols by company name",
	Long: `Search the market data provider for ticker symbols matching a
free-text query.

Example:
  go run ./cmd/fairvalue search "apple"
  go run ./cmd/fairvalue search reliance`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	s, cleanup, err := buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	matches, err := s.provider.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}

	if len(matches) == 0 {
		fmt.Printf("No matches for %q\n", query)
		return nil
	}

	fmt.Printf("\n%-10s %-40s %s\n", "SYMBOL", "NAME", "EXCHANGE")
	fmt.Println(strings.Repeat("-", 64))
	for _, m := range matches {
		fmt.Printf("%-10s %-40s %s\n", m.Symbol, m.DisplayName, m.Exchange)
	}

	return nil
}

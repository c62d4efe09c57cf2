package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

var (
	searchTopK         int
	searchDenseWeight  float64
	searchSparseWeight float64
	searchJSON         bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs hybrid search across the indexed documents. Dense
semantic and sparse keyword rankings are fused with reciprocal rank
fusion; the weights tilt the fusion toward either side.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchDenseWeight, "dense-weight", domain.DefaultDenseWeight, "dense ranking weight [0,1]")
	searchCmd.Flags().Float64Var(&searchSparseWeight, "sparse-weight", domain.DefaultSparseWeight, "sparse ranking weight [0,1]")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := domain.Query{
		Text:         args[0],
		TopK:         searchTopK,
		DenseWeight:  searchDenseWeight,
		SparseWeight: searchSparseWeight,
	}

	result, err := searchService.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	return outputSearchTable(cmd, result)
}

func outputSearchJSON(cmd *cobra.Command, result domain.RetrievalResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result domain.RetrievalResult) error {
	if len(result) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for _, hit := range result {
		cmd.Printf("  [%d] %s (%.4f)\n", hit.Rank, hit.SourcePath, hit.Score)
		cmd.Printf("      %s\n", snippet(hit.Text, 120))
		cmd.Println()
	}
	return nil
}

// snippet truncates text to at most n characters on a single line.
func snippet(text string, n int) string {
	out := make([]rune, 0, n)
	for _, r := range text {
		if r == '\n' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
		if len(out) >= n {
			return string(out) + "..."
		}
	}
	return string(out)
}

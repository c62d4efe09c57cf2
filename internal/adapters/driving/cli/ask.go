package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question answered from the indexed documents",
	Long: `Runs a bounded retrieval loop and generates an answer strictly
from the retrieved context. When the index holds nothing relevant the
command reports that instead of guessing.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full turn as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	turn, err := askService.Ask(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(turn, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(turn.Answer)

	if !turn.Grounded {
		cmd.Println()
		cmd.Println("(no grounded answer was possible from the index)")
		return nil
	}

	// List the distinct sources that informed the answer.
	seen := make(map[string]bool)
	var sources []string
	for _, call := range turn.ToolCalls {
		for _, hit := range call {
			if !seen[hit.SourcePath] {
				seen[hit.SourcePath] = true
				sources = append(sources, hit.SourcePath)
			}
		}
	}
	if len(sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	return nil
}

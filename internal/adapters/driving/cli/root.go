// Package cli implements the chorus command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/chorus-labs/chorus-cli/internal/core/ports/driving"
	"github.com/chorus-labs/chorus-cli/internal/logger"
)

// version is set by Execute from the build's version string.
var version = "dev"

// verboseFlag enables pipeline logging to stderr.
var verboseFlag bool

// Injected services. Commands check for nil so the CLI degrades with a
// clear error when a service could not be configured.
var (
	ingestService driving.IngestService
	searchService driving.SearchService
	askService    driving.AskService
)

var rootCmd = &cobra.Command{
	Use:   "chorus",
	Short: "Hybrid retrieval and grounded question answering over local documents",
	Long: `Chorus indexes local text documents into a hybrid dense+sparse
vector index and answers questions strictly from the indexed content.

Typical workflow:
  chorus ingest ./docs        build the index (no-op if already built)
  chorus search "topic"       inspect what retrieval finds
  chorus ask "a question"     get a context-grounded answer`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"print retrieval pipeline details to stderr")
}

// Services bundles the driving ports the CLI depends on.
type Services struct {
	Ingest driving.IngestService
	Search driving.SearchService
	Ask    driving.AskService
}

// SetServices injects the service implementations. Must be called
// before Execute.
func SetServices(s Services) {
	ingestService = s.Ingest
	searchService = s.Search
	askService = s.Ask
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

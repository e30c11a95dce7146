package commands

import (
	"github.com/spf13/cobra"

	"github.com/nemoctl/nemoctl/cmd/nemoctl/handlers"
)

// Resolve returns the command that runs chart resolution on its own.
func Resolve() *cobra.Command {
	var opts handlers.ResolveOptions
	var verbose bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve which chart a deploy would install",
		Long: `Query the configured chart repositories and report which chart a
deploy would install. This is a pure read: the cluster is not contacted and
nothing is mutated. Exits non-zero only when no matching chart and no
complete component bundle exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Resolve(cmd.Context(), newLogger(verbose), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.NGCAPIKey, "ngc-api-key", "", "NGC API key (default: NGC_API_KEY environment variable)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/nemoctl/nemoctl/cmd/nemoctl/handlers"
)

// Doctor returns the command for the read-only prerequisite checks.
func Doctor() *cobra.Command {
	var opts handlers.DoctorOptions
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check client tools and cluster connectivity",
		Long: `Check the static preconditions of a deployment without mutating
anything: required client tools on PATH and a reachable cluster API server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), newLogger(verbose), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: KUBECONFIG or ~/.kube/config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

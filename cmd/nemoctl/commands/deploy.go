package commands

import (
	"github.com/spf13/cobra"

	"github.com/nemoctl/nemoctl/cmd/nemoctl/handlers"
)

// Deploy returns the command for the full provisioning run.
//
// The sequence is: prerequisite checks, namespace and secret provisioning,
// chart resolution across the configured repositories, then the install.
// The NGC API key is taken from --ngc-api-key, the config file, or the
// NGC_API_KEY environment variable, in that order.
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions
	var verbose bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision secrets and install the guardrails chart stack",
		Long: `Deploy the NeMo guardrails microservice stack.

The run halts before any mutating action if a required client tool is
missing or the cluster is unreachable. Secret provisioning is idempotent:
re-running with the same or updated credentials converges to the same end
state.

When the primary chart is absent but all component charts are available,
the run stops and lists them; pass --install-components to install the
components individually instead.

Examples:
  # Deploy with the key from the environment
  NGC_API_KEY=nvapi-... nemoctl deploy

  # Deploy into a custom namespace with a config file
  nemoctl deploy --config nemoctl.yaml --namespace guardrails`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), newLogger(verbose), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: KUBECONFIG or ~/.kube/config)")
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "Target namespace (default: nemo)")
	cmd.Flags().StringVar(&opts.NGCAPIKey, "ngc-api-key", "", "NGC API key (default: NGC_API_KEY environment variable)")
	cmd.Flags().BoolVar(&opts.InstallComponents, "install-components", false, "Install component charts when the primary chart is absent")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

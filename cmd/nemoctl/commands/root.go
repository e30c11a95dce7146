// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the nemoctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nemoctl",
		Short: "Deploy the NeMo guardrails microservice stack onto a Kubernetes cluster",
	}

	cmd.AddCommand(Deploy())
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Resolve())
	cmd.AddCommand(Version())

	return cmd
}

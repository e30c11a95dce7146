package handlers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/nemoctl/nemoctl/internal/prereq"
)

// DoctorOptions carries the flag values for the doctor command.
type DoctorOptions struct {
	Kubeconfig string
}

// Doctor runs the read-only prerequisite checks: client tools on PATH and
// cluster connectivity. It mutates nothing.
func Doctor(ctx context.Context, log logr.Logger, opts DoctorOptions) error {
	results := checkTools()
	for _, r := range results.Results {
		if r.Found {
			fmt.Printf("  ok      %s (%s)\n", r.Tool.Name, r.Path)
		} else if r.Tool.Required {
			fmt.Printf("  missing %s - %s\n          install: %s\n", r.Tool.Name, r.Tool.Description, r.Tool.InstallURL)
		} else {
			fmt.Printf("  absent  %s (optional) - %s\n", r.Tool.Name, r.Tool.Description)
		}
	}
	if err := results.Err(); err != nil {
		return err
	}

	kubeconfig, err := readKubeconfig(opts.Kubeconfig)
	if err != nil {
		return err
	}
	cluster, err := newClusterClient(kubeconfig)
	if err != nil {
		return err
	}
	if err := prereq.CheckCluster(ctx, cluster); err != nil {
		return err
	}

	fmt.Println("  ok      cluster reachable")
	log.V(1).Info("doctor checks passed")
	return nil
}

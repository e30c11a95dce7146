package handlers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/nemoctl/nemoctl/internal/charts"
	"github.com/nemoctl/nemoctl/internal/config"
)

// ResolveOptions carries the flag values for the resolve command.
type ResolveOptions struct {
	ConfigPath string
	NGCAPIKey  string
}

// Resolve runs chart resolution and prints the result. It is a pure read
// against the configured repositories; the cluster is never contacted.
// NotFound maps to a non-zero exit so scripts can gate on it.
func Resolve(ctx context.Context, log logr.Logger, opts ResolveOptions) error {
	cfg, err := resolveConfig(DeployOptions{ConfigPath: opts.ConfigPath, NGCAPIKey: opts.NGCAPIKey})
	if err != nil {
		return err
	}

	resolver := charts.NewResolver(log, charts.WithQueryTimeout(cfg.Timeouts.RepositoryQuery))
	res := resolver.Resolve(ctx, newRepositories(cfg), cfg.Chart.Pattern, cfg.Chart.Components)

	printResolution(cfg, res)

	if res.Status == charts.StatusNotFound {
		return fmt.Errorf("chart %q not found in any configured repository", cfg.Chart.Pattern)
	}
	return nil
}

func printResolution(cfg *config.Config, res charts.Resolution) {
	fmt.Printf("status: %s\n", res.Status)

	switch res.Status {
	case charts.StatusFound:
		fmt.Printf("chart:  %s/%s@%s\n", res.Chosen.Repository, res.Chosen.Name, res.Chosen.Version)
	case charts.StatusFoundAlternate:
		fmt.Printf("the primary chart %q is absent; component charts found:\n", cfg.Chart.Pattern)
		for _, e := range res.Candidates {
			fmt.Printf("  %s/%s@%s\n", e.Repository, e.Name, e.Version)
		}
	case charts.StatusNotFound:
		if len(res.Candidates) > 0 {
			fmt.Println("charts returned by the repositories:")
			for _, e := range res.Candidates {
				fmt.Printf("  %s/%s@%s\n", e.Repository, e.Name, e.Version)
			}
		}
	}
}

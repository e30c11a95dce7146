// Package handlers implements the business logic for CLI commands.
//
// Handler functions are framework-agnostic and are called by the command
// definitions in the commands package. Collaborators are constructed through
// package-level factory variables so tests can inject fakes.
package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/nemoctl/nemoctl/internal/charts"
	"github.com/nemoctl/nemoctl/internal/config"
	"github.com/nemoctl/nemoctl/internal/helmclient"
	"github.com/nemoctl/nemoctl/internal/k8s"
	"github.com/nemoctl/nemoctl/internal/orchestration"
	"github.com/nemoctl/nemoctl/internal/prereq"
	"github.com/nemoctl/nemoctl/internal/secrets"
)

// installer is the subset of helmclient.Client used by the deploy handler.
type installer interface {
	InstallOrUpgrade(ctx context.Context, releaseName string, ref helmclient.ChartRef, values map[string]interface{}) error
}

// Factory function variables - replaced in tests for dependency injection.
var (
	loadConfigFile = config.LoadFile

	checkTools = func() *prereq.CheckResults {
		return prereq.Check(prereq.DefaultTools())
	}

	newClusterClient = func(kubeconfig []byte) (k8s.Client, error) {
		return k8s.NewFromKubeconfig(kubeconfig)
	}

	newInstaller = func(kubeconfig []byte, namespace string, log logr.Logger, timeout time.Duration) (installer, error) {
		return helmclient.NewClient(kubeconfig, namespace, log, helmclient.WithInstallTimeout(timeout))
	}

	newRepositories = buildRepositories

	readKubeconfig = loadKubeconfig
)

// DeployOptions carries the flag values for the deploy command.
type DeployOptions struct {
	ConfigPath string
	Kubeconfig string
	Namespace  string
	NGCAPIKey  string

	// InstallComponents installs the component charts individually when
	// only an alternate bundle is found. Without it, FoundAlternate is a
	// non-zero exit that lists the candidates.
	InstallComponents bool
}

// Deploy runs the full provisioning sequence: prerequisite checks, secret
// provisioning, chart resolution, and the install invocation.
func Deploy(ctx context.Context, log logr.Logger, opts DeployOptions) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	kubeconfig, err := readKubeconfig(cfg.Kubeconfig)
	if err != nil {
		return err
	}

	cluster, err := newClusterClient(kubeconfig)
	if err != nil {
		return err
	}

	provisioner := secrets.NewProvisioner(cluster)
	resolver := charts.NewResolver(log, charts.WithQueryTimeout(cfg.Timeouts.RepositoryQuery))
	repos := newRepositories(cfg)

	var resolution charts.Resolution

	phases := []orchestration.Phase{
		orchestration.NewPhase("preflight", func(ctx context.Context) error {
			if err := checkTools().Err(); err != nil {
				return err
			}
			return prereq.CheckCluster(ctx, cluster)
		}),
		orchestration.NewPhase("namespace", func(ctx context.Context) error {
			return cluster.EnsureNamespace(ctx, cfg.Namespace)
		}),
		orchestration.NewPhase("secrets", func(ctx context.Context) error {
			return provisionSecrets(ctx, provisioner, cfg)
		}),
		orchestration.NewPhase("resolve", func(ctx context.Context) error {
			resolution = resolver.Resolve(ctx, repos, cfg.Chart.Pattern, cfg.Chart.Components)
			log.Info("resolution complete", "status", string(resolution.Status))
			return nil
		}),
		orchestration.NewPhase("install", func(ctx context.Context) error {
			install, err := newInstaller(kubeconfig, cfg.Namespace, log, cfg.Timeouts.Install)
			if err != nil {
				return err
			}
			return installResolved(ctx, install, cfg, resolution, opts.InstallComponents)
		}),
	}

	return orchestration.RunPhases(ctx, log, phases)
}

// resolveConfig layers flag values over the config file (or defaults) and
// the NGC_API_KEY environment variable.
func resolveConfig(opts DeployOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := loadConfigFile(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.Namespace != "" {
		cfg.Namespace = opts.Namespace
	}
	if opts.Kubeconfig != "" {
		cfg.Kubeconfig = opts.Kubeconfig
	}
	if opts.NGCAPIKey != "" {
		cfg.NGCAPIKey = opts.NGCAPIKey
	}
	if cfg.NGCAPIKey == "" {
		cfg.NGCAPIKey = os.Getenv("NGC_API_KEY")
	}
	if cfg.NGCAPIKey == "" {
		return nil, fmt.Errorf("NGC API key is required (flag --ngc-api-key or NGC_API_KEY)")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// provisionSecrets creates the registry pull secret and the API-key secret.
func provisionSecrets(ctx context.Context, p *secrets.Provisioner, cfg *config.Config) error {
	pullSecret := secrets.Spec{
		Name:      cfg.Registry.SecretName,
		Namespace: cfg.Namespace,
		Kind:      secrets.KindRegistry,
		Fields: map[string]string{
			"server":   cfg.Registry.Server,
			"username": cfg.Registry.Username,
			"password": cfg.NGCAPIKey,
		},
	}
	if err := p.Provision(ctx, pullSecret); err != nil {
		return err
	}

	apiSecret := secrets.Spec{
		Name:      cfg.APISecret.Name,
		Namespace: cfg.Namespace,
		Kind:      secrets.KindGeneric,
		Fields: map[string]string{
			cfg.APISecret.Key: cfg.NGCAPIKey,
		},
	}
	return p.Provision(ctx, apiSecret)
}

// installResolved maps the resolution status to install actions. NotFound
// and an unapproved FoundAlternate are surfaced as errors so the CLI exits
// non-zero; resolution itself never fails.
func installResolved(ctx context.Context, install installer, cfg *config.Config, res charts.Resolution, installComponents bool) error {
	switch res.Status {
	case charts.StatusFound:
		ref := chartRef(cfg, *res.Chosen)
		if cfg.Chart.Version != "" {
			ref.Version = cfg.Chart.Version
		}
		return install.InstallOrUpgrade(ctx, cfg.Chart.ReleaseName, ref, cfg.Chart.Values)

	case charts.StatusFoundAlternate:
		if !installComponents {
			return fmt.Errorf("chart %q not found; component charts are available (%s) - rerun with --install-components to install them",
				cfg.Chart.Pattern, formatEntries(res.Candidates))
		}
		for _, component := range res.Candidates {
			if err := install.InstallOrUpgrade(ctx, component.Name, chartRef(cfg, component), nil); err != nil {
				return err
			}
		}
		return nil

	default:
		if len(res.Candidates) == 0 {
			return fmt.Errorf("chart %q not found and no charts were returned by any repository", cfg.Chart.Pattern)
		}
		return fmt.Errorf("chart %q not found; available charts: %s", cfg.Chart.Pattern, formatEntries(res.Candidates))
	}
}

// chartRef builds the install reference for an entry, attaching NGC
// credentials when the entry's repository is marked authenticated.
func chartRef(cfg *config.Config, entry charts.Entry) helmclient.ChartRef {
	ref := helmclient.ChartRef{
		Name:    entry.Name,
		Version: entry.Version,
	}
	for _, r := range cfg.Repositories {
		if r.Name == entry.Repository {
			ref.RepoURL = r.URL
			if r.Authenticated {
				ref.Username = cfg.Registry.Username
				ref.Password = cfg.NGCAPIKey
			}
			break
		}
	}
	return ref
}

// buildRepositories constructs the queryable repositories in config order.
func buildRepositories(cfg *config.Config) []charts.Repository {
	repos := make([]charts.Repository, 0, len(cfg.Repositories))
	for _, r := range cfg.Repositories {
		var opts []charts.HelmRepositoryOption
		if r.Authenticated {
			opts = append(opts, charts.WithCredentials(cfg.Registry.Username, cfg.NGCAPIKey))
		}
		repos = append(repos, charts.NewHelmRepository(r.Name, r.URL, opts...))
	}
	return repos
}

func formatEntries(entries []charts.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s/%s@%s", e.Repository, e.Name, e.Version))
	}
	return strings.Join(parts, ", ")
}

// Package helmclient installs charts programmatically through the Helm v3
// action API, working from in-memory kubeconfig bytes.
package helmclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
)

const defaultInstallTimeout = 10 * time.Minute

// Client performs Helm release operations against one namespace.
type Client struct {
	namespace    string
	settings     *cli.EnvSettings
	actionConfig *action.Configuration
	log          logr.Logger
	timeout      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithInstallTimeout overrides the wait timeout for installs and upgrades.
func WithInstallTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a Helm client from kubeconfig bytes.
func NewClient(kubeconfig []byte, namespace string, log logr.Logger, opts ...Option) (*Client, error) {
	c := &Client{
		namespace: namespace,
		settings:  cli.New(),
		log:       log,
		timeout:   defaultInstallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	actionConfig := new(action.Configuration)
	restGetter := newInMemoryRESTClientGetter(kubeconfig, namespace)

	debugLog := func(format string, v ...interface{}) {
		log.V(1).Info(fmt.Sprintf(format, v...))
	}
	if err := actionConfig.Init(restGetter, namespace, "secret", debugLog); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	c.actionConfig = actionConfig
	return c, nil
}

// ChartRef locates a chart to install: repository URL plus name, version,
// and optional basic-auth credentials for the repository.
type ChartRef struct {
	RepoURL  string
	Name     string
	Version  string
	Username string
	Password string
}

// InstallOrUpgrade installs the chart or upgrades the release if it already
// exists. The call waits for the release to become ready.
func (c *Client) InstallOrUpgrade(ctx context.Context, releaseName string, ref ChartRef, values map[string]interface{}) error {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(releaseName); err != nil {
		return c.install(ctx, releaseName, ref, values)
	}
	return c.upgrade(ctx, releaseName, ref, values)
}

func (c *Client) install(ctx context.Context, releaseName string, ref ChartRef, values map[string]interface{}) error {
	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = releaseName
	installClient.Namespace = c.namespace
	installClient.CreateNamespace = true
	installClient.Version = ref.Version
	installClient.Wait = true
	installClient.Timeout = c.timeout

	ch, err := c.loadChart(&installClient.ChartPathOptions, ref)
	if err != nil {
		return err
	}

	c.log.Info("installing release", "release", releaseName, "chart", ref.Name, "version", ref.Version)
	if _, err := installClient.RunWithContext(ctx, ch, values); err != nil {
		return fmt.Errorf("helm install of %s failed: %w", releaseName, err)
	}
	return nil
}

func (c *Client) upgrade(ctx context.Context, releaseName string, ref ChartRef, values map[string]interface{}) error {
	upgradeClient := action.NewUpgrade(c.actionConfig)
	upgradeClient.Namespace = c.namespace
	upgradeClient.Version = ref.Version
	upgradeClient.Wait = true
	upgradeClient.Timeout = c.timeout
	upgradeClient.ReuseValues = false

	ch, err := c.loadChart(&upgradeClient.ChartPathOptions, ref)
	if err != nil {
		return err
	}

	c.log.Info("upgrading release", "release", releaseName, "chart", ref.Name, "version", ref.Version)
	if _, err := upgradeClient.RunWithContext(ctx, releaseName, ch, values); err != nil {
		return fmt.Errorf("helm upgrade of %s failed: %w", releaseName, err)
	}
	return nil
}

// loadChart locates the chart through the action's path options so version
// constraints and repository credentials are honored.
func (c *Client) loadChart(cp *action.ChartPathOptions, ref ChartRef) (*chart.Chart, error) {
	cp.RepoURL = ref.RepoURL
	cp.Version = ref.Version
	cp.Username = ref.Username
	cp.Password = ref.Password

	chartPath, err := cp.LocateChart(ref.Name, c.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to locate chart %s in repo %s: %w", ref.Name, ref.RepoURL, err)
	}

	ch, err := loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", ref.Name, err)
	}
	return ch, nil
}

// ReleaseExists reports whether a release with the given name exists.
func (c *Client) ReleaseExists(releaseName string) bool {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	_, err := histClient.Run(releaseName)
	return err == nil
}

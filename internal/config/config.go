// Package config defines the explicit configuration struct passed into each
// component at construction. No behavior is driven by process-wide mutable
// state; the CLI resolves flags and environment once, into this struct.
package config

import (
	"fmt"
	"time"
)

// Config is the full configuration for a deployment run.
type Config struct {
	// Namespace is the target namespace for secrets and the release.
	Namespace string `mapstructure:"namespace"`

	// Kubeconfig is the path to the kubeconfig file. Empty means the
	// standard KUBECONFIG / ~/.kube/config resolution.
	Kubeconfig string `mapstructure:"kubeconfig"`

	// NGCAPIKey authenticates against NGC: it is the registry pull
	// password and the value of the API-key secret. Usually supplied via
	// flag or the NGC_API_KEY environment variable rather than the file.
	NGCAPIKey string `mapstructure:"ngcApiKey"`

	Registry     RegistryConfig     `mapstructure:"registry"`
	APISecret    APISecretConfig    `mapstructure:"apiSecret"`
	Repositories []RepositoryConfig `mapstructure:"repositories"`
	Chart        ChartConfig        `mapstructure:"chart"`
	Timeouts     TimeoutConfig      `mapstructure:"timeouts"`
}

// RegistryConfig describes the private image registry pull secret.
type RegistryConfig struct {
	Server     string `mapstructure:"server"`
	Username   string `mapstructure:"username"`
	SecretName string `mapstructure:"secretName"`
}

// APISecretConfig describes the generic API-key secret consumed by the
// deployed services.
type APISecretConfig struct {
	Name string `mapstructure:"name"`
	Key  string `mapstructure:"key"`
}

// RepositoryConfig identifies one chart repository to query, in priority
// order. Earlier repositories win on chart-name collisions.
type RepositoryConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`

	// Authenticated controls whether the NGC credentials are sent when
	// downloading this repository's index.
	Authenticated bool `mapstructure:"authenticated"`
}

// ChartConfig describes what to install.
type ChartConfig struct {
	// Pattern is the substring identifying the desired primary chart.
	Pattern string `mapstructure:"pattern"`

	// Components are the chart names that together form an acceptable
	// alternate bundle when the primary chart is absent.
	Components []string `mapstructure:"components"`

	// ReleaseName is the Helm release name for the primary chart.
	ReleaseName string `mapstructure:"releaseName"`

	// Version pins the chart version; empty installs the newest.
	Version string `mapstructure:"version"`

	// Values are passed through to the chart.
	Values map[string]interface{} `mapstructure:"values"`
}

// TimeoutConfig bounds the external calls.
type TimeoutConfig struct {
	// RepositoryQuery applies per repository during resolution.
	RepositoryQuery time.Duration `mapstructure:"repositoryQuery"`

	// Install is the wait timeout for the Helm install or upgrade.
	Install time.Duration `mapstructure:"install"`
}

// Default returns the configuration for deploying the NeMo microservices
// stack from NGC. A config file and flags override individual fields.
func Default() *Config {
	return &Config{
		Namespace: "nemo",
		Registry: RegistryConfig{
			Server:     "nvcr.io",
			Username:   "$oauthtoken",
			SecretName: "nvcrimagepullsecret",
		},
		APISecret: APISecretConfig{
			Name: "ngc-api",
			Key:  "NGC_API_KEY",
		},
		Repositories: []RepositoryConfig{
			{
				Name:          "nemo-microservices",
				URL:           "https://helm.ngc.nvidia.com/nvidia/nemo-microservices",
				Authenticated: true,
			},
			{
				Name:          "nvidia",
				URL:           "https://helm.ngc.nvidia.com/nvidia",
				Authenticated: true,
			},
		},
		Chart: ChartConfig{
			Pattern:     "nemo-microservices-helm-chart",
			Components:  []string{"nemo-guardrails", "nim-llm"},
			ReleaseName: "nemo",
		},
		Timeouts: TimeoutConfig{
			RepositoryQuery: 30 * time.Second,
			Install:         10 * time.Minute,
		},
	}
}

// Validate checks the configuration before any component is constructed.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if len(c.Repositories) == 0 {
		return fmt.Errorf("at least one chart repository is required")
	}
	for i, r := range c.Repositories {
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("repository %d requires both name and url", i)
		}
	}
	if c.Chart.Pattern == "" {
		return fmt.Errorf("chart pattern is required")
	}
	if c.Chart.ReleaseName == "" {
		return fmt.Errorf("chart release name is required")
	}
	if c.Registry.Server == "" || c.Registry.Username == "" {
		return fmt.Errorf("registry server and username are required")
	}
	return nil
}

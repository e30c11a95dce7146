package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/nemoctl/nemoctl/internal/charts"
	"github.com/nemoctl/nemoctl/internal/config"
	"github.com/nemoctl/nemoctl/internal/helmclient"
	"github.com/nemoctl/nemoctl/internal/k8s"
	"github.com/nemoctl/nemoctl/internal/prereq"
)

var testKubeconfig = []byte(`apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
    insecure-skip-tls-verify: true
  name: test
contexts:
- context:
    cluster: test
    user: test
  name: test
current-context: test
users:
- name: test
  user:
    token: test-token
`)

// stubRepository serves fixed entries for handler tests.
type stubRepository struct {
	name    string
	entries []charts.Entry
}

func (s *stubRepository) Name() string { return s.name }

func (s *stubRepository) URL() string { return "https://example.com/" + s.name }

func (s *stubRepository) Query(context.Context) ([]charts.Entry, error) {
	return s.entries, nil
}

// recordingInstaller captures install invocations.
type recordingInstaller struct {
	installs []string
	refs     []helmclient.ChartRef
	err      error
}

func (r *recordingInstaller) InstallOrUpgrade(_ context.Context, releaseName string, ref helmclient.ChartRef, _ map[string]interface{}) error {
	r.installs = append(r.installs, releaseName)
	r.refs = append(r.refs, ref)
	return r.err
}

// setupDeploy wires fakes into the factory variables and restores them on
// cleanup. Returns the fake clientset and the recording installer.
func setupDeploy(t *testing.T, indexed []charts.Entry) (*fake.Clientset, *recordingInstaller) {
	t.Helper()

	clientset := fake.NewSimpleClientset()
	installed := &recordingInstaller{}

	origCheck := checkTools
	origCluster := newClusterClient
	origInstaller := newInstaller
	origRepos := newRepositories
	origKubeconfig := readKubeconfig
	t.Cleanup(func() {
		checkTools = origCheck
		newClusterClient = origCluster
		newInstaller = origInstaller
		newRepositories = origRepos
		readKubeconfig = origKubeconfig
	})

	checkTools = func() *prereq.CheckResults { return &prereq.CheckResults{} }
	newClusterClient = func([]byte) (k8s.Client, error) {
		return k8s.NewFromClientset(clientset), nil
	}
	newInstaller = func([]byte, string, logr.Logger, time.Duration) (installer, error) {
		return installed, nil
	}
	newRepositories = func(cfg *config.Config) []charts.Repository {
		name := cfg.Repositories[0].Name
		entries := make([]charts.Entry, len(indexed))
		for i, e := range indexed {
			e.Repository = name
			entries[i] = e
		}
		return []charts.Repository{&stubRepository{name: name, entries: entries}}
	}
	readKubeconfig = func(string) ([]byte, error) { return testKubeconfig, nil }

	return clientset, installed
}

func TestDeploy_PrimaryChartFound(t *testing.T) {
	clientset, installed := setupDeploy(t, []charts.Entry{
		{Name: "nemo-microservices-helm-chart", Version: "1.2.0"},
	})

	err := Deploy(context.Background(), logr.Discard(), DeployOptions{NGCAPIKey: "nvapi-test"})
	require.NoError(t, err)

	// Namespace and both secrets were provisioned.
	_, err = clientset.CoreV1().Namespaces().Get(context.Background(), "nemo", metav1.GetOptions{})
	require.NoError(t, err)
	_, err = clientset.CoreV1().Secrets("nemo").Get(context.Background(), "nvcrimagepullsecret", metav1.GetOptions{})
	require.NoError(t, err)
	_, err = clientset.CoreV1().Secrets("nemo").Get(context.Background(), "ngc-api", metav1.GetOptions{})
	require.NoError(t, err)

	// The resolved chart was installed under the configured release name.
	require.Equal(t, []string{"nemo"}, installed.installs)
	assert.Equal(t, "nemo-microservices-helm-chart", installed.refs[0].Name)
	assert.Equal(t, "1.2.0", installed.refs[0].Version)
	assert.Equal(t, "https://helm.ngc.nvidia.com/nvidia/nemo-microservices", installed.refs[0].RepoURL)
	assert.Equal(t, "nvapi-test", installed.refs[0].Password, "authenticated repository gets NGC credentials")
}

func TestDeploy_FoundAlternateRequiresApproval(t *testing.T) {
	_, installed := setupDeploy(t, []charts.Entry{
		{Name: "nemo-guardrails", Version: "0.9"},
		{Name: "nim-llm", Version: "2.0"},
	})

	err := Deploy(context.Background(), logr.Discard(), DeployOptions{NGCAPIKey: "nvapi-test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--install-components")
	assert.Empty(t, installed.installs, "nothing is installed without approval")
}

func TestDeploy_FoundAlternateInstallsComponents(t *testing.T) {
	_, installed := setupDeploy(t, []charts.Entry{
		{Name: "nemo-guardrails", Version: "0.9"},
		{Name: "nim-llm", Version: "2.0"},
	})

	err := Deploy(context.Background(), logr.Discard(), DeployOptions{
		NGCAPIKey:         "nvapi-test",
		InstallComponents: true,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"nemo-guardrails", "nim-llm"}, installed.installs)
}

func TestDeploy_NotFound(t *testing.T) {
	_, installed := setupDeploy(t, nil)

	err := Deploy(context.Background(), logr.Discard(), DeployOptions{NGCAPIKey: "nvapi-test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Empty(t, installed.installs)
}

func TestDeploy_MissingAPIKey(t *testing.T) {
	t.Setenv("NGC_API_KEY", "")

	err := Deploy(context.Background(), logr.Discard(), DeployOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NGC API key is required")
}

func TestDeploy_MissingRequiredTool(t *testing.T) {
	_, installed := setupDeploy(t, []charts.Entry{
		{Name: "nemo-microservices-helm-chart", Version: "1.2.0"},
	})

	checkTools = func() *prereq.CheckResults {
		return &prereq.CheckResults{
			Missing: []prereq.Tool{{Name: "kubectl", Required: true}},
		}
	}

	err := Deploy(context.Background(), logr.Discard(), DeployOptions{NGCAPIKey: "nvapi-test"})
	require.Error(t, err)

	var missing *prereq.MissingToolError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "kubectl", missing.Tool)
	assert.Empty(t, installed.installs, "halt before any mutating action")
}

func TestDeploy_NamespaceOverride(t *testing.T) {
	clientset, _ := setupDeploy(t, []charts.Entry{
		{Name: "nemo-microservices-helm-chart", Version: "1.2.0"},
	})

	err := Deploy(context.Background(), logr.Discard(), DeployOptions{
		NGCAPIKey: "nvapi-test",
		Namespace: "custom-ns",
	})
	require.NoError(t, err)

	_, err = clientset.CoreV1().Namespaces().Get(context.Background(), "custom-ns", metav1.GetOptions{})
	assert.NoError(t, err)
}

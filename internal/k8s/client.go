// Package k8s wraps the Kubernetes API operations needed to prepare a
// cluster for a chart installation: secrets, namespaces, and a lightweight
// connectivity probe.
package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Client provides the cluster operations used by the orchestrator.
type Client interface {
	// CreateSecret creates or replaces a secret in the specified namespace.
	// If the secret already exists, it is deleted and recreated so the data
	// is exactly as specified, never merged.
	CreateSecret(ctx context.Context, secret *corev1.Secret) error

	// DeleteSecret deletes a secret, returning nil if not found.
	DeleteSecret(ctx context.Context, namespace, name string) error

	// EnsureNamespace creates a namespace, treating "already exists" as
	// success.
	EnsureNamespace(ctx context.Context, name string) error

	// ServerVersion probes the API server and returns its version string.
	ServerVersion(ctx context.Context) (string, error)
}

// client implements Client using k8s.io/client-go.
type client struct {
	clientset kubernetes.Interface
}

// NewFromKubeconfig creates a Client from kubeconfig bytes. Working from
// bytes avoids writing the kubeconfig to a temporary file.
func NewFromKubeconfig(kubeconfig []byte) (Client, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return &client{clientset: clientset}, nil
}

// NewFromClientset creates a Client from a pre-configured clientset.
// Useful for testing with fake clients.
func NewFromClientset(clientset kubernetes.Interface) Client {
	return &client{clientset: clientset}
}

// ServerVersion issues a discovery request against the API server. It is
// the read-only connectivity probe run before any mutating action.
func (c *client) ServerVersion(_ context.Context) (string, error) {
	info, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return "", fmt.Errorf("failed to reach API server: %w", err)
	}
	return info.GitVersion, nil
}

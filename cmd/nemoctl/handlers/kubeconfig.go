package handlers

import (
	"fmt"
	"os"
	"path/filepath"
)

// loadKubeconfig reads the kubeconfig bytes, resolving the path the way
// kubectl does: explicit path, then KUBECONFIG, then ~/.kube/config.
func loadKubeconfig(explicit string) ([]byte, error) {
	path := explicit
	if path == "" {
		path = os.Getenv("KUBECONFIG")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".kube", "config")
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig %s: %w", path, err)
	}
	return data, nil
}

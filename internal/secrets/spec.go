// Package secrets provisions the credential objects a chart installation
// depends on: the image-registry pull secret and generic key-value secrets.
// Provisioning is idempotent; re-running converges to the same end state.
package secrets

import "fmt"

// Kind selects how a Spec is materialized as a Kubernetes secret.
type Kind string

const (
	// KindRegistry produces a kubernetes.io/dockerconfigjson pull secret.
	// Required fields: server, username, password.
	KindRegistry Kind = "registry"

	// KindGeneric produces an Opaque secret from the field mapping.
	KindGeneric Kind = "generic"
)

// Spec declares a secret to provision.
type Spec struct {
	Name      string
	Namespace string
	Kind      Kind
	Fields    map[string]string
}

// registryFields are the keys a registry spec must carry.
var registryFields = []string{"server", "username", "password"}

// Validate checks the spec before any cluster call is made.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("secret name is required")
	}
	if s.Namespace == "" {
		return fmt.Errorf("secret namespace is required")
	}

	switch s.Kind {
	case KindRegistry:
		for _, field := range registryFields {
			if s.Fields[field] == "" {
				return fmt.Errorf("registry secret %s requires field %q", s.Name, field)
			}
		}
	case KindGeneric:
		if len(s.Fields) == 0 {
			return fmt.Errorf("generic secret %s requires at least one field", s.Name)
		}
	default:
		return fmt.Errorf("unknown secret kind %q", s.Kind)
	}

	return nil
}

package secrets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nemoctl/nemoctl/internal/k8s"
)

// ProvisioningError reports a cluster rejection while creating or replacing
// a secret. It is fatal for the current run; the run itself is safe to
// retry because provisioning is idempotent.
type ProvisioningError struct {
	Namespace string
	Name      string
	Err       error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to provision secret %s/%s: %v", e.Namespace, e.Name, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// Provisioner creates or replaces namespaced secret objects.
type Provisioner struct {
	client k8s.Client
}

// NewProvisioner creates a Provisioner backed by the given cluster client.
func NewProvisioner(client k8s.Client) *Provisioner {
	return &Provisioner{client: client}
}

// Provision validates the spec, builds the secret object, and replaces any
// same-named secret in the cluster. Any pre-existing secret is removed
// first, so no half-populated state survives a successful call and repeated
// calls converge to the same end state.
func (p *Provisioner) Provision(ctx context.Context, spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	secret, err := build(spec)
	if err != nil {
		return err
	}

	if err := p.client.CreateSecret(ctx, secret); err != nil {
		return &ProvisioningError{Namespace: spec.Namespace, Name: spec.Name, Err: err}
	}

	return nil
}

// build materializes the spec as a corev1.Secret.
func build(spec Spec) (*corev1.Secret, error) {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
		},
	}

	switch spec.Kind {
	case KindRegistry:
		payload, err := dockerConfigJSON(spec.Fields["server"], spec.Fields["username"], spec.Fields["password"])
		if err != nil {
			return nil, fmt.Errorf("failed to encode pull secret %s: %w", spec.Name, err)
		}
		secret.Type = corev1.SecretTypeDockerConfigJson
		secret.Data = map[string][]byte{
			corev1.DockerConfigJsonKey: payload,
		}
	case KindGeneric:
		secret.Type = corev1.SecretTypeOpaque
		secret.StringData = spec.Fields
	}

	return secret, nil
}

// dockerConfigJSON encodes registry credentials in the .dockerconfigjson
// layout the kubelet expects for image pulls.
func dockerConfigJSON(server, username, password string) ([]byte, error) {
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	cfg := map[string]interface{}{
		"auths": map[string]interface{}{
			server: map[string]string{
				"username": username,
				"password": password,
				"auth":     auth,
			},
		},
	}
	return json.Marshal(cfg)
}

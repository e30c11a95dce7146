// Package prereq verifies static preconditions before any mutating action:
// required client tools on PATH and a reachable cluster API server.
package prereq

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nemoctl/nemoctl/internal/k8s"
)

// MissingToolError reports a required tool absent from PATH.
type MissingToolError struct {
	Tool string
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("required tool %q not found in PATH", e.Tool)
}

// ClusterUnreachableError reports a failed connectivity probe.
type ClusterUnreachableError struct {
	Err error
}

func (e *ClusterUnreachableError) Error() string {
	return fmt.Sprintf("cluster unreachable: %v", e.Err)
}

func (e *ClusterUnreachableError) Unwrap() error { return e.Err }

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// DefaultTools returns the default set of tools to check. Chart queries and
// installs run in-process, so only kubectl is mandatory; it is needed for
// follow-up diagnostics and port-forwarding against the deployed stack.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "kubectl",
			Required:    true,
			Description: "Required for inspecting the deployed stack and port-forwarding",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
		},
		{
			Name:        "helm",
			Required:    false,
			Description: "Useful for manual chart inspection; installs run in-process",
			InstallURL:  "https://helm.sh/docs/intro/install/",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// Err returns a MissingToolError for the first missing required tool, or
// nil when all required tools are present.
func (r *CheckResults) Err() error {
	for _, tool := range r.Missing {
		if tool.Required {
			return &MissingToolError{Tool: tool.Name}
		}
	}
	return nil
}

// Check verifies that the specified tools are available on PATH.
// It performs no mutation and no network access.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := exec.LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = toolVersion(tool.Name)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckCluster probes the API server with a discovery request. A failure is
// a fatal precondition, not a transient fault; no retries are attempted.
func CheckCluster(ctx context.Context, client k8s.Client) error {
	if _, err := client.ServerVersion(ctx); err != nil {
		return &ClusterUnreachableError{Err: err}
	}
	return nil
}

// toolVersion attempts to get the version of a tool, best effort.
func toolVersion(name string) string {
	versionFlags := []string{"--version", "version", "-v"}

	for _, flag := range versionFlags {
		// #nosec G204 - name comes from trusted Tool definitions, not user input
		cmd := exec.Command(name, flag)
		output, err := cmd.Output()
		if err == nil {
			lines := strings.Split(string(output), "\n")
			if len(lines) > 0 {
				return strings.TrimSpace(lines[0])
			}
		}
	}

	return ""
}

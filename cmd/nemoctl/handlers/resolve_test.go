package handlers

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemoctl/nemoctl/internal/charts"
	"github.com/nemoctl/nemoctl/internal/config"
)

func stubResolveRepos(t *testing.T, entries []charts.Entry) {
	t.Helper()

	orig := newRepositories
	t.Cleanup(func() { newRepositories = orig })

	newRepositories = func(cfg *config.Config) []charts.Repository {
		name := cfg.Repositories[0].Name
		tagged := make([]charts.Entry, len(entries))
		for i, e := range entries {
			e.Repository = name
			tagged[i] = e
		}
		return []charts.Repository{&stubRepository{name: name, entries: tagged}}
	}
}

func TestResolve_Found(t *testing.T) {
	stubResolveRepos(t, []charts.Entry{
		{Name: "nemo-microservices-helm-chart", Version: "1.2.0"},
	})

	err := Resolve(context.Background(), logr.Discard(), ResolveOptions{NGCAPIKey: "nvapi-test"})
	assert.NoError(t, err)
}

func TestResolve_FoundAlternateIsNotAnError(t *testing.T) {
	stubResolveRepos(t, []charts.Entry{
		{Name: "nemo-guardrails", Version: "0.9"},
		{Name: "nim-llm", Version: "2.0"},
	})

	err := Resolve(context.Background(), logr.Discard(), ResolveOptions{NGCAPIKey: "nvapi-test"})
	assert.NoError(t, err, "an alternate bundle is a decision point, not a failure")
}

func TestResolve_NotFound(t *testing.T) {
	stubResolveRepos(t, nil)

	err := Resolve(context.Background(), logr.Discard(), ResolveOptions{NGCAPIKey: "nvapi-test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

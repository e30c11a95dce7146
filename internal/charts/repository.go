// Package charts resolves which Helm chart to install when the exact chart
// name is uncertain across multiple repositories.
//
// Repositories are queried through a typed interface that returns structured
// entries, never raw command output. Resolution is a pure read: it performs
// no cluster mutation and can be retried freely.
package charts

import (
	"context"
	"fmt"

	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/repo"
)

// Repository is a queryable chart repository index.
type Repository interface {
	// Name returns the repository name used in Entry.Repository.
	Name() string

	// URL returns the repository URL for diagnostics.
	URL() string

	// Query downloads the repository index and returns its charts.
	Query(ctx context.Context) ([]Entry, error)
}

// HelmRepositoryOption configures a helm-backed repository.
type HelmRepositoryOption func(*helmRepository)

// WithCredentials sets basic-auth credentials for the index download.
// NGC-hosted repositories authenticate with username "$oauthtoken" and the
// NGC API key as password.
func WithCredentials(username, password string) HelmRepositoryOption {
	return func(r *helmRepository) {
		r.entry.Username = username
		r.entry.Password = password
	}
}

// WithCacheDir overrides the directory used to cache downloaded index files.
func WithCacheDir(dir string) HelmRepositoryOption {
	return func(r *helmRepository) {
		r.cacheDir = dir
	}
}

// helmRepository queries a chart repository using helm's repo machinery.
type helmRepository struct {
	entry    *repo.Entry
	settings *cli.EnvSettings
	cacheDir string
}

// NewHelmRepository creates a Repository backed by a Helm chart repository
// at the given URL.
func NewHelmRepository(name, url string, opts ...HelmRepositoryOption) Repository {
	r := &helmRepository{
		entry: &repo.Entry{
			Name: name,
			URL:  url,
		},
		settings: cli.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *helmRepository) Name() string { return r.entry.Name }

func (r *helmRepository) URL() string { return r.entry.URL }

// Query downloads the repository index file and flattens it into entries,
// one per chart version. The context is checked before and after the
// download; the download itself is bounded by the resolver's per-repository
// timeout.
func (r *helmRepository) Query(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chartRepo, err := repo.NewChartRepository(r.entry, getter.All(r.settings))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository %s: %w", r.entry.URL, err)
	}
	if r.cacheDir != "" {
		chartRepo.CachePath = r.cacheDir
	}

	indexPath, err := chartRepo.DownloadIndexFile()
	if err != nil {
		return nil, fmt.Errorf("failed to download index for %s: %w", r.entry.URL, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index, err := repo.LoadIndexFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load index for %s: %w", r.entry.URL, err)
	}

	var entries []Entry
	for name, versions := range index.Entries {
		for _, v := range versions {
			if v.Metadata == nil {
				continue
			}
			entries = append(entries, Entry{
				Repository: r.entry.Name,
				Name:       name,
				Version:    v.Metadata.Version,
			})
		}
	}
	return entries, nil
}

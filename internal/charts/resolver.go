package charts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"
)

const defaultQueryTimeout = 30 * time.Second

// Resolver decides which concrete chart reference to install.
type Resolver struct {
	log     logr.Logger
	timeout time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithQueryTimeout sets the per-repository query timeout. One slow or
// unreachable repository must not stall resolution indefinitely.
func WithQueryTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(log logr.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		log:     log,
		timeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// queryResult pairs a repository's input position with its entries.
type queryResult struct {
	entries []Entry
	err     error
}

// Resolve queries every repository, aggregates and deduplicates the results,
// and applies the fallback policy:
//
//  1. A repository query failure is logged and treated as an empty result
//     set for that repository. Resolution never aborts because one
//     repository is unreachable.
//  2. Entries are deduplicated by (repository, name), keeping the newest
//     version of each chart. On a cross-repository name collision the
//     repository listed earliest wins for the chosen chart.
//  3. If any entry matches pattern (substring), Status is Found and Chosen
//     is the preferred match.
//  4. Otherwise, if every name in required is present, Status is
//     FoundAlternate and Candidates holds the component entries; Chosen is
//     unset because combining components is the caller's decision.
//  5. Otherwise Status is NotFound and Candidates holds the full
//     deduplicated set for diagnostics.
//
// Resolve mutates nothing and always returns a Resolution, never an error.
func (r *Resolver) Resolve(ctx context.Context, repos []Repository, pattern string, required []string) Resolution {
	results := r.queryAll(ctx, repos)

	entries := dedupe(repos, results)

	// Primary match: substring on the chart name.
	var matches []Entry
	for _, e := range entries {
		if strings.Contains(e.Name, pattern) {
			matches = append(matches, e)
		}
	}
	if len(matches) > 0 {
		chosen := matches[0]
		return Resolution{
			Status:     StatusFound,
			Chosen:     &chosen,
			Candidates: matches,
		}
	}

	// Alternate bundle: every required component must be present.
	if len(required) > 0 {
		components := make([]Entry, 0, len(required))
		seen := make(map[string]bool, len(required))
		for _, e := range entries {
			for _, name := range required {
				if e.Name == name && !seen[name] {
					components = append(components, e)
					seen[name] = true
				}
			}
		}
		if len(components) == len(required) {
			return Resolution{
				Status:     StatusFoundAlternate,
				Candidates: components,
			}
		}
	}

	return Resolution{
		Status:     StatusNotFound,
		Candidates: entries,
	}
}

// queryAll issues repository queries concurrently and joins on all of them.
// Each query runs under its own timeout so aggregation is never blocked by
// a single repository.
func (r *Resolver) queryAll(ctx context.Context, repos []Repository) []queryResult {
	results := make([]queryResult, len(repos))

	var wg sync.WaitGroup
	for i, rep := range repos {
		wg.Add(1)
		go func(i int, rep Repository) {
			defer wg.Done()
			results[i] = r.query(ctx, rep)
		}(i, rep)
	}
	wg.Wait()

	for i, res := range results {
		if res.err != nil {
			r.log.Info("repository query failed, treating as empty",
				"repository", repos[i].Name(), "url", repos[i].URL(), "error", res.err.Error())
		}
	}
	return results
}

// query runs a single repository query under the per-repository timeout.
// If the query does not return in time, the repository is treated as
// unreachable even if the underlying download is still in flight.
func (r *Resolver) query(ctx context.Context, rep Repository) queryResult {
	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan queryResult, 1)
	go func() {
		entries, err := rep.Query(qctx)
		done <- queryResult{entries: entries, err: err}
	}()

	select {
	case res := <-done:
		return res
	case <-qctx.Done():
		return queryResult{err: qctx.Err()}
	}
}

// dedupe unions all query results keyed by (repository, name), keeping the
// newest version of each chart. The returned slice is ordered by repository
// input position, then chart name, so resolution is deterministic for a
// fixed set of index contents.
func dedupe(repos []Repository, results []queryResult) []Entry {
	type key struct {
		repo string
		name string
	}
	best := make(map[key]Entry)
	repoPos := make(map[string]int, len(repos))
	for i, rep := range repos {
		if _, ok := repoPos[rep.Name()]; !ok {
			repoPos[rep.Name()] = i
		}
	}

	for _, res := range results {
		if res.err != nil {
			continue
		}
		for _, e := range res.entries {
			k := key{repo: e.Repository, name: e.Name}
			cur, ok := best[k]
			if !ok || newerVersion(e.Version, cur.Version) {
				best[k] = e
			}
		}
	}

	entries := make([]Entry, 0, len(best))
	for _, e := range best {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		pi, pj := repoPos[entries[i].Repository], repoPos[entries[j].Repository]
		if pi != pj {
			return pi < pj
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// newerVersion reports whether version a is newer than b. Versions are
// compared as semver when both parse; otherwise the comparison falls back
// to lexicographic ordering on the raw strings.
func newerVersion(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.GreaterThan(vb)
	}
	return a > b
}

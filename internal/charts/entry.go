package charts

// Entry identifies a single chart offered by a repository index.
type Entry struct {
	// Repository is the name of the repository that listed the chart.
	Repository string

	// Name is the chart name as it appears in the index.
	Name string

	// Version is the chart version string, usually semver.
	Version string
}

// Status is the outcome of a resolution attempt. "Not found" is a status,
// not an error; callers decide whether it is fatal.
type Status string

const (
	// StatusFound means the expected chart was located.
	StatusFound Status = "Found"

	// StatusFoundAlternate means the expected chart is absent but every
	// required component chart is available. The caller decides how to
	// combine the components; Chosen is left unset.
	StatusFoundAlternate Status = "FoundAlternate"

	// StatusNotFound means neither the expected chart nor a complete
	// component set was located.
	StatusNotFound Status = "NotFound"
)

// Resolution is the immutable result of resolving a chart against a set of
// repositories.
type Resolution struct {
	Status Status

	// Chosen is the chart to install. Set only when Status is StatusFound.
	Chosen *Entry

	// Candidates holds the entries relevant to the status: the matching
	// entries for StatusFound, the component entries for
	// StatusFoundAlternate, and the full deduplicated index for
	// StatusNotFound (for diagnostic display).
	Candidates []Entry
}

package updating

// Candidate identifies one pending plugin update. Immutable once enqueued.
type Candidate struct {
	// Name is the stable plugin name, also used as the install target
	// file name.
	Name string
	// DisplayName is what progress messages call the plugin.
	DisplayName string
	// URL is where the plugin artifact is downloaded from.
	URL string
	// SHA256 is the expected hex digest of the artifact.
	SHA256 string
}

// Metadata carries the manifest entry that produced a candidate.
type Metadata struct {
	Version string
	Size    int64
}

// Pending pairs a candidate with its manifest metadata.
type Pending struct {
	Candidate Candidate
	Meta      Metadata
}

// Queue is the ordered list of pending updates for one run. The order is
// the order in which candidates are presented to the orchestrator and
// drives the [i/N] progress numbering, so it must stay stable for the
// lifetime of the run.
type Queue []Pending

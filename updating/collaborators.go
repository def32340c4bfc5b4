package updating

import "context"

// ProgressFunc receives raw progress samples during a download. total is
// non-positive when the server did not announce a size. speed is in KiB/s.
type ProgressFunc func(transferred int64, total int64, speed float64)

// Fetcher downloads one artifact into a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url string, dest string, progress ProgressFunc) error
}

// Verifier checks a downloaded artifact against the candidate's expected
// checksum.
type Verifier interface {
	Verify(candidate Candidate, path string) error
}

// Installer installs a verified artifact. Install may leave the plugin
// directory partially mutated when it fails.
type Installer interface {
	Install(candidate Candidate, meta Metadata, path string) error
}

// Restarter replaces the host process. Restart only returns when the
// process was not actually replaced.
type Restarter interface {
	Restart() error
}

// Localizer resolves user-facing message text by key.
type Localizer interface {
	Text(key string) string
}

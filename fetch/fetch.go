package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-errors/errors"
	"github.com/plugland/plugd/updating"
)

// Error wraps any failure while downloading an artifact.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return "download of " + e.URL + " failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPFetcher downloads plugin artifacts over HTTP(S) while sampling
// transferred bytes and speed for the progress callback.
type HTTPFetcher struct {
	client *http.Client
	log    Logger
}

// Compile time check for protocol compatibility
var _ updating.Fetcher = (*HTTPFetcher)(nil)

type Config struct {
	Client *http.Client
	Logger Logger
}

func NewHTTPFetcher(config *Config) *HTTPFetcher {
	fetcher := &HTTPFetcher{
		client: http.DefaultClient,
	}

	if config.Client != nil {
		fetcher.client = config.Client
	}

	if config.Logger != nil {
		fetcher.log = config.Logger
	} else {
		fetcher.log = noopLogger{}
	}

	return fetcher
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, dest string, progress updating.ProgressFunc) error {
	f.log.Debugf("Downloading %v to %v", url, dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{URL: url, Err: err}
	}

	res, err := f.client.Do(req)
	if err != nil {
		return &Error{URL: url, Err: err}
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &Error{URL: url, Err: errors.Errorf("unexpected status %v", res.Status)}
	}

	out, err := os.Create(dest)
	if err != nil {
		return &Error{URL: url, Err: err}
	}

	sampler := &progressSampler{
		total:    res.ContentLength,
		progress: progress,
		started:  time.Now(),
	}

	_, err = io.Copy(out, io.TeeReader(res.Body, sampler))

	if cerr := out.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return &Error{URL: url, Err: err}
	}

	// Publish the final byte count even if it arrived between samples.
	sampler.emit()

	f.log.Debugf("Downloaded %v bytes from %v", sampler.transferred, url)

	return nil
}

// progressSampler counts the bytes streaming through it and reports them
// together with the average download speed, at most a few times per
// second to keep message churn low.
type progressSampler struct {
	transferred int64
	total       int64
	progress    updating.ProgressFunc
	started     time.Time
	lastSample  time.Time
}

const sampleInterval = 200 * time.Millisecond

func (s *progressSampler) Write(p []byte) (int, error) {
	s.transferred += int64(len(p))

	if time.Since(s.lastSample) >= sampleInterval {
		s.lastSample = time.Now()
		s.emit()
	}

	return len(p), nil
}

func (s *progressSampler) emit() {
	if s.progress == nil {
		return
	}

	speed := 0.0
	if elapsed := time.Since(s.started).Seconds(); elapsed > 0 {
		speed = float64(s.transferred) / 1000 / elapsed
	}

	s.progress(s.transferred, s.total, speed)
}

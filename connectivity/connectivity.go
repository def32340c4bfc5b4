package connectivity

import (
	"net/http"
	"time"
)

type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	switch s {
	case Offline:
		return "OFFLINE"
	case Online:
		return "ONLINE"
	default:
		return "INVALID STATE"
	}
}

// Reporter tells whether the device currently has network access. The
// daemon skips update cycles while offline instead of failing every
// download.
type Reporter interface {
	CurrentState() State
}

// ProbeReporter decides connectivity by probing a well-known URL.
type ProbeReporter struct {
	url    string
	client *http.Client
}

// Compile time check for protocol compatibility
var _ Reporter = (*ProbeReporter)(nil)

func NewProbeReporter(url string) *ProbeReporter {
	return &ProbeReporter{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (r *ProbeReporter) CurrentState() State {
	res, err := r.client.Head(r.url)
	if err != nil {
		return Offline
	}

	res.Body.Close()

	return Online
}

// AlwaysOnline never reports the device offline, for tests and machines
// with guaranteed connectivity.
type AlwaysOnline struct{}

// Compile time check for protocol compatibility
var _ Reporter = (*AlwaysOnline)(nil)

func NewAlwaysOnline() *AlwaysOnline {
	return &AlwaysOnline{}
}

func (r *AlwaysOnline) CurrentState() State {
	return Online
}

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-errors/errors"
	"github.com/plugland/plugd/catalog"
	"github.com/plugland/plugd/connectivity"
	"github.com/plugland/plugd/updating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyLocale struct{}

func (keyLocale) Text(key string) string { return key }

type stubFetcher struct {
	err error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string, dest string, progress updating.ProgressFunc) error {
	if f.err != nil {
		return f.err
	}

	return os.WriteFile(dest, []byte("artifact"), 0644)
}

type stubVerifier struct{}

func (stubVerifier) Verify(candidate updating.Candidate, path string) error { return nil }

type stubInstaller struct{}

func (stubInstaller) Install(candidate updating.Candidate, meta updating.Metadata, path string) error {
	return nil
}

type stubRestarter struct {
	restarts int
}

func (r *stubRestarter) Restart() error {
	r.restarts++
	return nil
}

func newTestDaemon(t *testing.T, queue updating.Queue, fetcher *stubFetcher) (*Daemon, *stubRestarter) {
	t.Helper()

	restarter := &stubRestarter{}

	daemon := New(&Config{
		Source:       catalog.NewStaticSource(queue),
		Fetcher:      fetcher,
		Verifier:     stubVerifier{},
		Installer:    stubInstaller{},
		Restarter:    restarter,
		Locale:       keyLocale{},
		Connectivity: connectivity.NewAlwaysOnline(),
		ArtifactPath: filepath.Join(t.TempDir(), "artifact"),
		TickInterval: time.Millisecond,
	})

	return daemon, restarter
}

// stepUntil ticks the daemon until the condition holds or the deadline
// passes.
func stepUntil(t *testing.T, daemon *Daemon, condition func() bool) {
	t.Helper()

	deadline := time.After(5 * time.Second)

	for !condition() {
		select {
		case <-deadline:
			require.Fail(t, "condition never became true")
		default:
		}

		daemon.tick()
		time.Sleep(time.Millisecond)
	}
}

func TestDaemonAdvancesAfterEmptyQueue(t *testing.T) {
	daemon, restarter := newTestDaemon(t, nil, &stubFetcher{})

	require.NoError(t, daemon.StartCycle())
	assert.Equal(t, StageUpdating, daemon.Stage())

	stepUntil(t, daemon, func() bool {
		return daemon.Stage() == StageServing
	})

	assert.Equal(t, 0, restarter.restarts)

	snapshot := daemon.SessionSnapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, "", snapshot.Message)
	assert.True(t, snapshot.ReadyToAdvance)
}

func TestDaemonRestartsAfterSuccessfulCycle(t *testing.T) {
	queue := updating.Queue{
		{
			Candidate: updating.Candidate{Name: "greeter", DisplayName: "Greeter", URL: "http://updates.example.com/greeter"},
			Meta:      updating.Metadata{Version: "1.0.0"},
		},
	}

	daemon, restarter := newTestDaemon(t, queue, &stubFetcher{})

	require.NoError(t, daemon.StartCycle())

	stepUntil(t, daemon, func() bool {
		return daemon.Stage() == StageServing
	})

	// The stub restarter returns instead of replacing the process, which
	// lets the daemon advance to serving afterwards.
	assert.Equal(t, 1, restarter.restarts)
}

func TestDaemonConfirmFlowAfterFailedCycle(t *testing.T) {
	queue := updating.Queue{
		{
			Candidate: updating.Candidate{Name: "greeter", DisplayName: "Greeter", URL: "http://updates.example.com/greeter"},
			Meta:      updating.Metadata{Version: "1.0.0"},
		},
	}

	fetcher := &stubFetcher{err: errors.New("connection refused")}
	daemon, restarter := newTestDaemon(t, queue, fetcher)

	require.NoError(t, daemon.StartCycle())

	// The cycle failed before any install, so the daemon waits for an
	// explicit continue confirmation.
	stepUntil(t, daemon, func() bool {
		snapshot := daemon.SessionSnapshot()
		return snapshot != nil && snapshot.AwaitingContinueConfirm
	})

	assert.Equal(t, StageUpdating, daemon.Stage())

	daemon.Confirm()

	stepUntil(t, daemon, func() bool {
		return daemon.Stage() == StageServing
	})

	assert.Equal(t, 0, restarter.restarts)

	snapshot := daemon.SessionSnapshot()
	assert.False(t, snapshot.AwaitingContinueConfirm, "the confirm flag is cleared once consumed")
}

func TestDaemonRejectsConcurrentCycles(t *testing.T) {
	daemon, _ := newTestDaemon(t, nil, &stubFetcher{})

	require.NoError(t, daemon.StartCycle())
	assert.Error(t, daemon.StartCycle())

	stepUntil(t, daemon, func() bool {
		return daemon.Stage() == StageServing
	})

	// A finished cycle frees the slot for the next one.
	require.NoError(t, daemon.StartCycle())
}

func TestDaemonSnapshotBeforeAnyCycle(t *testing.T) {
	daemon, _ := newTestDaemon(t, nil, &stubFetcher{})

	assert.Nil(t, daemon.SessionSnapshot())
	assert.Nil(t, daemon.SubscribeSession())
}

func TestDaemonSkipsCycleWhileOffline(t *testing.T) {
	daemon, restarter := newTestDaemon(t, updating.Queue{
		{
			Candidate: updating.Candidate{Name: "greeter", URL: "http://updates.example.com/greeter"},
		},
	}, &stubFetcher{})
	daemon.connectivity = offlineReporter{}

	require.NoError(t, daemon.StartCycle())

	stepUntil(t, daemon, func() bool {
		return daemon.Stage() == StageServing
	})

	assert.Equal(t, 0, restarter.restarts)
}

type offlineReporter struct{}

func (offlineReporter) CurrentState() connectivity.State { return connectivity.Offline }

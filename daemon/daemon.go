package daemon

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-errors/errors"
	"github.com/plugland/plugd/catalog"
	"github.com/plugland/plugd/connectivity"
	"github.com/plugland/plugd/updating"
)

// Stage is where the daemon currently is in its lifecycle.
type Stage int32

const (
	// StageUpdating means an update cycle is running and the daemon is
	// waiting for it to hand over control.
	StageUpdating Stage = iota
	// StageServing is the regular operation after the update cycle.
	StageServing
)

func (s Stage) String() string {
	switch s {
	case StageUpdating:
		return "UPDATING"
	case StageServing:
		return "SERVING"
	default:
		return "INVALID STAGE"
	}
}

type Config struct {
	Source       catalog.Source
	Fetcher      updating.Fetcher
	Verifier     updating.Verifier
	Installer    updating.Installer
	Restarter    updating.Restarter
	Locale       updating.Localizer
	Connectivity connectivity.Reporter
	// ArtifactPath is the temporary file downloads land in.
	ArtifactPath string
	// RestartDelay is the pause before an automatic restart.
	RestartDelay time.Duration
	// TickInterval drives the foreground loop.
	TickInterval time.Duration
	Listen       string
	Logger       Logger
	Api          Api
}

// Daemon is the central controller for everything plugd does. It owns
// the single foreground loop that, once per tick, consumes a pending
// confirmation signal and polls the update scheduler.
type Daemon struct {
	source       catalog.Source
	fetcher      updating.Fetcher
	verifier     updating.Verifier
	installer    updating.Installer
	restarter    updating.Restarter
	locale       updating.Localizer
	connectivity connectivity.Reporter
	artifactPath string
	restartDelay time.Duration
	tickInterval time.Duration
	listen       string
	log          Logger
	api          Api

	stage        atomic.Int32
	confirm      atomic.Bool
	cycleRunning atomic.Bool

	// cycleMtx guards the per-cycle state below, which is replaced each
	// time a new cycle starts and read from API handlers.
	cycleMtx  sync.Mutex
	session   *updating.Session
	gate      *updating.Gate
	scheduler *updating.Scheduler

	listeners []net.Listener
	done      chan struct{}
}

func New(config *Config) *Daemon {
	daemon := &Daemon{
		source:       config.Source,
		fetcher:      config.Fetcher,
		verifier:     config.Verifier,
		installer:    config.Installer,
		restarter:    config.Restarter,
		locale:       config.Locale,
		connectivity: config.Connectivity,
		artifactPath: config.ArtifactPath,
		restartDelay: config.RestartDelay,
		tickInterval: config.TickInterval,
		listen:       config.Listen,
		api:          config.Api,
		done:         make(chan struct{}),
	}

	if config.Logger != nil {
		daemon.log = config.Logger
	} else {
		daemon.log = noopLogger{}
	}

	if daemon.tickInterval <= 0 {
		daemon.tickInterval = 100 * time.Millisecond
	}

	if config.Api != nil {
		config.Api.SetDaemon(daemon)
	}

	return daemon
}

// Run starts the API, kicks off the initial update cycle and then drives
// the foreground loop until Shutdown. It blocks until the daemon is shut
// down.
func (d *Daemon) Run() error {
	if d.api != nil {
		lis, err := net.Listen("tcp", d.listen)
		if err != nil {
			return errors.Errorf("API server unable to listen on %v", d.listen)
		}

		d.listeners = append(d.listeners, lis)

		go func() {
			if err := d.api.Serve(lis); err != nil {
				d.log.Errorf("Could not serve api: %v", err)
			}
		}()

		d.log.Infof("Serving API on %v", d.listen)
	}

	if err := d.StartCycle(); err != nil {
		return err
	}

	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.tick()

		case <-d.done:
			// finish loop when program is done
			return nil
		}
	}
}

// StartCycle begins one update cycle on a background goroutine. Only one
// cycle runs at a time.
func (d *Daemon) StartCycle() error {
	if !d.cycleRunning.CompareAndSwap(false, true) {
		return errors.New("an update cycle is already running")
	}

	d.stage.Store(int32(StageUpdating))

	session := updating.NewSession()
	gate := updating.NewGate(&updating.GateConfig{
		Session:      session,
		Restarter:    d.restarter,
		Locale:       d.locale,
		RestartDelay: d.restartDelay,
		Logger:       d.log,
	})
	scheduler := updating.NewScheduler(session, d.advanceStage)

	d.cycleMtx.Lock()
	d.session = session
	d.gate = gate
	d.scheduler = scheduler
	d.cycleMtx.Unlock()

	d.log.Infof("Starting update cycle")

	go d.runWorker(session, gate)

	return nil
}

// runWorker is the background half of a cycle: it detects pending
// updates and drains them through the orchestrator. It runs unsupervised
// to completion.
func (d *Daemon) runWorker(session *updating.Session, gate *updating.Gate) {
	gate.Begin()

	session.SetMessage(d.locale.Text(updating.KeyChecking))

	if d.connectivity.CurrentState() == connectivity.Offline {
		d.log.Warnf("Device is offline, skipping update cycle")
		session.ClearMessage()
		session.MarkReady()
		return
	}

	queue, err := d.source.PendingUpdates(context.Background())
	if err != nil {
		d.log.Errorf("Could not check for updates: %v", err)
		session.ClearMessage()
		session.MarkReady()
		return
	}

	orchestrator := updating.NewOrchestrator(&updating.OrchestratorConfig{
		Queue:        queue,
		Session:      session,
		Gate:         gate,
		Fetcher:      d.fetcher,
		Verifier:     d.verifier,
		Installer:    d.installer,
		Locale:       d.locale,
		ArtifactPath: d.artifactPath,
		Logger:       d.log,
	})

	orchestrator.Run(context.Background())
}

// tick is one step of the foreground loop.
func (d *Daemon) tick() {
	if d.confirm.CompareAndSwap(true, false) {
		if gate := d.currentGate(); gate != nil {
			gate.Confirm()
		}
	}

	if scheduler := d.currentScheduler(); scheduler != nil {
		scheduler.Tick()
	}
}

// Confirm latches one confirmation input for the next tick.
func (d *Daemon) Confirm() {
	d.confirm.Store(true)
}

func (d *Daemon) advanceStage() {
	d.stage.Store(int32(StageServing))
	d.cycleRunning.Store(false)

	d.log.Infof("Update cycle finished, now serving")
}

func (d *Daemon) Stage() Stage {
	return Stage(d.stage.Load())
}

// SessionSnapshot returns the current update session state, or nil when
// no cycle ever ran.
func (d *Daemon) SessionSnapshot() *updating.Snapshot {
	d.cycleMtx.Lock()
	session := d.session
	d.cycleMtx.Unlock()

	if session == nil {
		return nil
	}

	return session.Snapshot()
}

// SubscribeSession subscribes to change notifications of the current
// session, or returns nil when no cycle ever ran.
func (d *Daemon) SubscribeSession() *updating.SessionClient {
	d.cycleMtx.Lock()
	session := d.session
	d.cycleMtx.Unlock()

	if session == nil {
		return nil
	}

	return session.Subscribe()
}

func (d *Daemon) currentGate() *updating.Gate {
	d.cycleMtx.Lock()
	defer d.cycleMtx.Unlock()

	return d.gate
}

func (d *Daemon) currentScheduler() *updating.Scheduler {
	d.cycleMtx.Lock()
	defer d.cycleMtx.Unlock()

	return d.scheduler
}

func (d *Daemon) Shutdown() {
	for _, lis := range d.listeners {
		if err := lis.Close(); err != nil {
			d.log.Errorf("Could not close listener: %v", err)
		}
	}

	close(d.done)
}

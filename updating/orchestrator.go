package updating

import (
	"context"
	"fmt"
	"os"
)

// Orchestrator drains an update queue start to finish on a background
// goroutine, publishing progress into the session as it goes. Candidates
// are processed strictly one at a time; a failing candidate never aborts
// the batch. Once the queue is drained, the aggregate outcome is handed
// to the gate.
type Orchestrator struct {
	queue        Queue
	session      *Session
	gate         *Gate
	fetcher      Fetcher
	verifier     Verifier
	installer    Installer
	locale       Localizer
	artifactPath string
	log          Logger
}

type OrchestratorConfig struct {
	Queue     Queue
	Session   *Session
	Gate      *Gate
	Fetcher   Fetcher
	Verifier  Verifier
	Installer Installer
	Locale    Localizer
	// ArtifactPath is the well-known temporary file every candidate is
	// downloaded to, one after another.
	ArtifactPath string
	Logger       Logger
}

func NewOrchestrator(config *OrchestratorConfig) *Orchestrator {
	orchestrator := &Orchestrator{
		queue:        config.Queue,
		session:      config.Session,
		gate:         config.Gate,
		fetcher:      config.Fetcher,
		verifier:     config.Verifier,
		installer:    config.Installer,
		locale:       config.Locale,
		artifactPath: config.ArtifactPath,
	}

	if config.Logger != nil {
		orchestrator.log = config.Logger
	} else {
		orchestrator.log = noopLogger{}
	}

	return orchestrator
}

// Run processes every queued candidate and resolves the gate. It is meant
// to run on its own goroutine and cannot be cancelled once started; ctx
// only bounds the individual download requests.
func (o *Orchestrator) Run(ctx context.Context) {
	if len(o.queue) == 0 {
		o.log.Infof("No pending updates")
		o.session.ClearMessage()
		o.session.MarkReady()
		return
	}

	failures := false
	restartRequired := false
	total := len(o.queue)

	for i, pending := range o.queue {
		err := o.processOne(ctx, i+1, total, pending, &restartRequired)
		if err == nil {
			continue
		}

		o.log.Errorf("Update of %v failed: %v", pending.Candidate.Name, err)
		failures = true

		// The artifact of a failed attempt is useless, drop it.
		if err := os.Remove(o.artifactPath); err != nil && !os.IsNotExist(err) {
			o.log.Warnf("Could not remove artifact: %v", err)
		}
	}

	o.gate.Resolve(failures, restartRequired)
}

func (o *Orchestrator) processOne(ctx context.Context, position int, total int, pending Pending, restartRequired *bool) error {
	candidate := pending.Candidate

	o.log.Infof("[%d/%d] Updating %v from %v", position, total, candidate.Name, candidate.URL)

	o.publishStep(position, total, candidate, o.locale.Text(KeyDownloading))

	err := o.fetcher.Fetch(ctx, candidate.URL, o.artifactPath, func(transferred, totalBytes int64, speed float64) {
		step := fmt.Sprintf("%s %s", o.locale.Text(KeyDownloading), FormatProgress(transferred, totalBytes, speed))
		o.publishStep(position, total, candidate, step)
	})
	if err != nil {
		return err
	}

	o.publishStep(position, total, candidate, o.locale.Text(KeyVerifying))

	if err := o.verifier.Verify(candidate, o.artifactPath); err != nil {
		return err
	}

	// Installing may already have mutated the plugin directory by the time
	// it fails, so a restart is necessary from this point on regardless of
	// the outcome.
	*restartRequired = true

	o.publishStep(position, total, candidate, o.locale.Text(KeyInstalling))

	if err := o.installer.Install(candidate, pending.Meta, o.artifactPath); err != nil {
		return err
	}

	o.log.Infof("Installed %v %v", candidate.Name, pending.Meta.Version)

	return nil
}

func (o *Orchestrator) publishStep(position int, total int, candidate Candidate, step string) {
	o.session.SetMessage(fmt.Sprintf("[%d/%d] %s %s: %s",
		position, total, o.locale.Text(KeyUpdating), candidate.DisplayName, step))
}

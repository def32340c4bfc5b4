package updating

import (
	"sync/atomic"
	"time"
)

type GateState int32

const (
	GateIdle GateState = iota
	GateProcessing
	GateAutoRestarting
	GateAwaitingRestartConfirm
	GateAwaitingContinueConfirm
	GateTerminal
)

func (s GateState) String() string {
	switch s {
	case GateIdle:
		return "IDLE"
	case GateProcessing:
		return "PROCESSING"
	case GateAutoRestarting:
		return "AUTO_RESTARTING"
	case GateAwaitingRestartConfirm:
		return "AWAITING_RESTART_CONFIRM"
	case GateAwaitingContinueConfirm:
		return "AWAITING_CONTINUE_CONFIRM"
	case GateTerminal:
		return "TERMINAL"
	default:
		return "INVALID STATE"
	}
}

// Gate translates the aggregate outcome of an update run into the
// required follow-up: restart right away, restart after an explicit
// confirmation, or continue after an explicit confirmation.
type Gate struct {
	state        atomic.Int32
	session      *Session
	restarter    Restarter
	locale       Localizer
	restartDelay time.Duration
	log          Logger
}

type GateConfig struct {
	Session   *Session
	Restarter Restarter
	Locale    Localizer
	// RestartDelay is the pause before an automatic restart. Its only
	// purpose is to let the final message render before the process is
	// replaced.
	RestartDelay time.Duration
	Logger       Logger
}

func NewGate(config *GateConfig) *Gate {
	gate := &Gate{
		session:      config.Session,
		restarter:    config.Restarter,
		locale:       config.Locale,
		restartDelay: config.RestartDelay,
	}

	if config.Logger != nil {
		gate.log = config.Logger
	} else {
		gate.log = noopLogger{}
	}

	return gate
}

func (g *Gate) State() GateState {
	return GateState(g.state.Load())
}

// Begin moves the gate into the processing state when a run starts.
func (g *Gate) Begin() {
	g.state.Store(int32(GateProcessing))
}

// Resolve consumes the aggregate outcome of a finished run. Without
// failures the process restarts with no confirmation step. With failures
// the session shows the terminal failure message and the confirm flag
// matching restartRequired is armed; the session only becomes ready to
// advance through a later Confirm.
func (g *Gate) Resolve(failures bool, restartRequired bool) {
	if !failures {
		g.state.Store(int32(GateAutoRestarting))
		g.session.SetMessage(g.locale.Text(KeyRestarting))

		g.log.Infof("All updates installed, restarting in %v", g.restartDelay)
		time.Sleep(g.restartDelay)

		g.restart()
		return
	}

	g.session.SetMessage(g.locale.Text(KeyFailed))

	if restartRequired {
		g.log.Infof("Updates failed after an install attempt, awaiting restart confirmation")
		g.session.SetSubMessage(g.locale.Text(KeyReboot))
		g.state.Store(int32(GateAwaitingRestartConfirm))
		g.session.ArmRestartConfirm()
	} else {
		g.log.Infof("Updates failed before any install attempt, awaiting continue confirmation")
		g.session.SetSubMessage(g.locale.Text(KeyContinue))
		g.state.Store(int32(GateAwaitingContinueConfirm))
		g.session.ArmContinueConfirm()
	}
}

// Confirm consumes one confirmation signal. Repeated signals after the
// flag has been cleared have no further effect.
func (g *Gate) Confirm() {
	switch g.State() {
	case GateAwaitingRestartConfirm:
		if !g.session.ConsumeRestartConfirm() {
			return
		}

		g.restart()

	case GateAwaitingContinueConfirm:
		if !g.session.ConsumeContinueConfirm() {
			return
		}

		g.state.Store(int32(GateTerminal))
		g.session.MarkReady()
	}
}

func (g *Gate) restart() {
	g.state.Store(int32(GateTerminal))

	if err := g.restarter.Restart(); err != nil {
		g.log.Errorf("Could not restart: %v", err)
	}

	// Restart only returns when the process was not replaced, so let the
	// host move on instead of waiting forever.
	g.session.MarkReady()
}

package updating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestGate() (*Gate, *Session, *fakeRestarter) {
	session := NewSession()
	restarter := &fakeRestarter{}

	gate := NewGate(&GateConfig{
		Session:   session,
		Restarter: restarter,
		Locale:    keyLocale{},
	})

	return gate, session, restarter
}

func TestGateStartsIdle(t *testing.T) {
	gate, _, _ := newTestGate()

	assert.Equal(t, GateIdle, gate.State())

	gate.Begin()
	assert.Equal(t, GateProcessing, gate.State())
}

func TestGateResolveWithoutFailuresRestarts(t *testing.T) {
	gate, session, restarter := newTestGate()
	gate.Begin()

	gate.Resolve(false, true)

	assert.Equal(t, 1, restarter.restarts)
	assert.Equal(t, GateTerminal, gate.State())
	assert.Equal(t, KeyRestarting, session.Message())
	assert.True(t, session.Ready())
}

func TestGateResolveFailuresAfterInstallAttempt(t *testing.T) {
	gate, session, restarter := newTestGate()
	gate.Begin()

	gate.Resolve(true, true)

	assert.Equal(t, GateAwaitingRestartConfirm, gate.State())
	assert.Equal(t, KeyFailed, session.Message())
	assert.Equal(t, KeyReboot, session.SubMessage())
	assert.True(t, session.AwaitingRestartConfirm())
	assert.False(t, session.Ready())
	assert.Equal(t, 0, restarter.restarts)
}

func TestGateResolveFailuresWithoutInstallAttempt(t *testing.T) {
	gate, session, _ := newTestGate()
	gate.Begin()

	gate.Resolve(true, false)

	assert.Equal(t, GateAwaitingContinueConfirm, gate.State())
	assert.Equal(t, KeyContinue, session.SubMessage())
	assert.True(t, session.AwaitingContinueConfirm())
	assert.False(t, session.Ready())
}

func TestGateConfirmIsNoopOutsideAwaitingStates(t *testing.T) {
	gate, session, restarter := newTestGate()

	gate.Confirm()

	assert.Equal(t, GateIdle, gate.State())
	assert.Equal(t, 0, restarter.restarts)
	assert.False(t, session.Ready())
}

func TestGateStateString(t *testing.T) {
	assert.Equal(t, "IDLE", GateIdle.String())
	assert.Equal(t, "PROCESSING", GateProcessing.String())
	assert.Equal(t, "AUTO_RESTARTING", GateAutoRestarting.String())
	assert.Equal(t, "AWAITING_RESTART_CONFIRM", GateAwaitingRestartConfirm.String())
	assert.Equal(t, "AWAITING_CONTINUE_CONFIRM", GateAwaitingContinueConfirm.String())
	assert.Equal(t, "TERMINAL", GateTerminal.String())
}

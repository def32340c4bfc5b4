package updating

// Scheduler is the foreground half of the update handoff. The host polls
// it once per tick; it never blocks and fires the downstream transition
// exactly once, on the first tick that observes the session ready to
// advance. Only the host's single foreground goroutine may call Tick.
type Scheduler struct {
	session *Session
	advance func()
	fired   bool
}

func NewScheduler(session *Session, advance func()) *Scheduler {
	return &Scheduler{
		session: session,
		advance: advance,
	}
}

// Tick polls the session once and reports whether the transition fired on
// this tick.
func (s *Scheduler) Tick() bool {
	if s.fired || !s.session.Ready() {
		return false
	}

	s.fired = true
	s.advance()

	return true
}

func (s *Scheduler) Fired() bool {
	return s.fired
}

package updating

import (
	"sync"
	"sync/atomic"
)

// Snapshot is a read-only view of the session for presentation layers.
type Snapshot struct {
	Message                 string `json:"message"`
	SubMessage              string `json:"subMessage"`
	AwaitingRestartConfirm  bool   `json:"awaitingRestartConfirm"`
	AwaitingContinueConfirm bool   `json:"awaitingContinueConfirm"`
	ReadyToAdvance          bool   `json:"readyToAdvance"`
}

// Session carries the shared progress and outcome state of one update run.
//
// The background worker is the only writer of the message fields; the
// foreground loop only ever clears the confirm flags. The message fields
// are display-only and last-write-wins, so a reader observing a value that
// is stale by one tick is fine. readyToAdvance and the confirm flags
// transition through compare-and-swap so a consumed signal cannot fire the
// same action twice.
type Session struct {
	message    atomic.Value // string
	subMessage atomic.Value // string

	awaitingRestartConfirm  atomic.Bool
	awaitingContinueConfirm atomic.Bool
	readyToAdvance          atomic.Bool

	clientMtx    sync.Mutex
	clients      map[uint32]*SessionClient
	nextClientID uint32
}

func NewSession() *Session {
	s := &Session{
		clients: make(map[uint32]*SessionClient),
	}

	s.message.Store("")
	s.subMessage.Store("")

	return s
}

func (s *Session) Message() string {
	return s.message.Load().(string)
}

func (s *Session) SubMessage() string {
	return s.subMessage.Load().(string)
}

func (s *Session) SetMessage(message string) {
	s.message.Store(message)
	s.notify()
}

func (s *Session) ClearMessage() {
	s.message.Store("")
	s.notify()
}

func (s *Session) SetSubMessage(message string) {
	s.subMessage.Store(message)
	s.notify()
}

// ArmRestartConfirm asks for an explicit restart confirmation. At most one
// of the two confirm flags is set at any time.
func (s *Session) ArmRestartConfirm() {
	s.awaitingContinueConfirm.Store(false)
	s.awaitingRestartConfirm.Store(true)
	s.notify()
}

// ArmContinueConfirm asks for an explicit confirmation before moving on.
func (s *Session) ArmContinueConfirm() {
	s.awaitingRestartConfirm.Store(false)
	s.awaitingContinueConfirm.Store(true)
	s.notify()
}

// ConsumeRestartConfirm clears the restart confirm flag and reports
// whether this call was the one that cleared it.
func (s *Session) ConsumeRestartConfirm() bool {
	return s.awaitingRestartConfirm.CompareAndSwap(true, false)
}

// ConsumeContinueConfirm clears the continue confirm flag and reports
// whether this call was the one that cleared it.
func (s *Session) ConsumeContinueConfirm() bool {
	return s.awaitingContinueConfirm.CompareAndSwap(true, false)
}

func (s *Session) AwaitingRestartConfirm() bool {
	return s.awaitingRestartConfirm.Load()
}

func (s *Session) AwaitingContinueConfirm() bool {
	return s.awaitingContinueConfirm.Load()
}

// MarkReady signals the scheduler that it may advance. The flag never
// reverts to false; the first call wins and is reported with true.
func (s *Session) MarkReady() bool {
	if !s.readyToAdvance.CompareAndSwap(false, true) {
		return false
	}

	s.notify()

	return true
}

func (s *Session) Ready() bool {
	return s.readyToAdvance.Load()
}

func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		Message:                 s.Message(),
		SubMessage:              s.SubMessage(),
		AwaitingRestartConfirm:  s.AwaitingRestartConfirm(),
		AwaitingContinueConfirm: s.AwaitingContinueConfirm(),
		ReadyToAdvance:          s.Ready(),
	}
}

// SessionClient receives a snapshot whenever the session changes.
type SessionClient struct {
	Snapshots  chan *Snapshot
	Id         uint32
	cancelChan chan struct{}
	session    *Session
}

// Subscribe registers a client for session change notifications.
func (s *Session) Subscribe() *SessionClient {
	client := &SessionClient{
		Snapshots:  make(chan *Snapshot, 16),
		cancelChan: make(chan struct{}),
		session:    s,
	}

	s.clientMtx.Lock()
	client.Id = s.nextClientID
	s.nextClientID++
	s.clients[client.Id] = client
	s.clientMtx.Unlock()

	return client
}

func (c *SessionClient) Cancel() {
	c.session.clientMtx.Lock()
	delete(c.session.clients, c.Id)
	c.session.clientMtx.Unlock()

	close(c.cancelChan)
}

func (s *Session) notify() {
	snapshot := s.Snapshot()

	s.clientMtx.Lock()
	defer s.clientMtx.Unlock()

	for _, client := range s.clients {
		select {
		case client.Snapshots <- snapshot:
		default:
			// Slow clients miss intermediate snapshots rather than
			// stalling the worker.
		}
	}
}

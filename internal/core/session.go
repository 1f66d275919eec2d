package core

import (
	"sync"

	"github.com/google/uuid"
)

const (
	// AnonymousName is the display name of sessions that never set one.
	AnonymousName = "Anonymous"
	// DefaultSendBuffer is the outbox capacity used when none is configured.
	DefaultSendBuffer = 256
)

// Session is the server-side state of one live connection.
// The transport drains Outbox onto the wire until Done is closed.
type Session struct {
	ID string

	mu   sync.RWMutex
	name string
	room string

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession constructs an unjoined session. An empty id gets a random UUID.
func NewSession(id string, buffer int) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Session{
		ID:   id,
		name: AnonymousName,
		out:  make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Name returns the current display name.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Room returns the name of the joined room, or "" when unjoined.
func (s *Session) Room() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

func (s *Session) setName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

func (s *Session) setRoom(room string) {
	s.mu.Lock()
	s.room = room
	s.mu.Unlock()
}

// Outbox yields encoded frames in the order they were enqueued.
func (s *Session) Outbox() <-chan []byte {
	return s.out
}

// Done is closed once the session is terminated.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Closed reports whether the session has been terminated.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close terminates the session. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// enqueue hands a frame to the writer without blocking.
// Returns false when the session is closed or its outbox is full.
func (s *Session) enqueue(frame []byte) bool {
	if s.Closed() {
		return false
	}
	select {
	case s.out <- frame:
		return true
	default:
		return false
	}
}

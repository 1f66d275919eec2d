package core

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/metrics"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// Broadcaster fans encoded frames out to session outboxes. It also tracks every
// connected session for global announcements.
type Broadcaster struct {
	log     *zerolog.Logger
	metrics *metrics.Recorder

	mu       sync.RWMutex
	sessions map[*Session]struct{}
}

// NewBroadcaster creates a broadcaster with no known sessions.
func NewBroadcaster(logger *zerolog.Logger, rec *metrics.Recorder) *Broadcaster {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broadcaster{
		log:      logger,
		metrics:  rec,
		sessions: make(map[*Session]struct{}),
	}
}

func (b *Broadcaster) register(s *Session) {
	b.mu.Lock()
	b.sessions[s] = struct{}{}
	b.mu.Unlock()
}

func (b *Broadcaster) unregister(s *Session) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[s]; !ok {
		return false
	}
	delete(b.sessions, s)
	return true
}

// Sessions returns a snapshot of the connected sessions.
func (b *Broadcaster) Sessions() []*Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Session, 0, len(b.sessions))
	for s := range b.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of connected sessions.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

// ToOne sends a frame to a single session.
func (b *Broadcaster) ToOne(s *Session, frame any) {
	payload, ok := b.encode(frame)
	if !ok {
		return
	}
	b.deliver(s, payload)
}

// ToRoom sends a frame to every current member of the room.
func (b *Broadcaster) ToRoom(r *Room, frame any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.toMembers(r.members, frame)
}

// ToAll sends a frame to every connected session regardless of room.
func (b *Broadcaster) ToAll(frame any) {
	payload, ok := b.encode(frame)
	if !ok {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.sessions {
		b.deliver(s, payload)
	}
}

// toMembers encodes once and enqueues the same bytes for each member.
// Callers hold the room lock.
func (b *Broadcaster) toMembers(members []*Session, frame any) {
	if len(members) == 0 {
		return
	}
	payload, ok := b.encode(frame)
	if !ok {
		return
	}
	for _, s := range members {
		b.deliver(s, payload)
	}
}

func (b *Broadcaster) deliver(s *Session, payload []byte) {
	if s.Closed() {
		return
	}
	if !s.enqueue(payload) && !s.Closed() {
		b.metrics.FrameDropped()
		b.log.Debug().Str("session_id", s.ID).Msg("outbox full, frame dropped")
	}
}

func (b *Broadcaster) encode(frame any) ([]byte, bool) {
	payload, err := proto.Encode(frame)
	if err != nil {
		b.log.Error().Err(err).Msg("encode outbound frame")
		return nil, false
	}
	return payload, true
}

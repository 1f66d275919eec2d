package core

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/metrics"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// Hub coordinates sessions, rooms and broadcasts. It is the only entry point
// the transport layer needs: Connect, Dispatch, Reject and Disconnect.
type Hub struct {
	rooms   *Registry
	bcast   *Broadcaster
	log     *zerolog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewHub creates a hub with the default rooms seeded. Logger and recorder may be nil.
func NewHub(maxHistory int, logger *zerolog.Logger, rec *metrics.Recorder) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	b := NewBroadcaster(logger, rec)
	return &Hub{
		rooms:   NewRegistry(maxHistory, b, rec),
		bcast:   b,
		log:     logger,
		metrics: rec,
		now:     time.Now,
	}
}

// Registry exposes the room registry.
func (h *Hub) Registry() *Registry {
	return h.rooms
}

// Connect registers a new session and sends it the room list.
func (h *Hub) Connect(s *Session) {
	h.rooms.connect(s)
	h.metrics.SessionOpened()
	h.log.Debug().Str("session_id", s.ID).Msg("session connected")
}

// Disconnect leaves the current room, forgets the session and terminates it.
func (h *Hub) Disconnect(s *Session) {
	if h.rooms.leave(s) {
		h.log.Debug().Str("session_id", s.ID).Str("user", s.Name()).Msg("left room on disconnect")
	}
	if h.bcast.unregister(s) {
		h.metrics.SessionClosed()
	}
	s.Close()
	h.log.Debug().Str("session_id", s.ID).Msg("session disconnected")
}

// Reject answers a frame that never reached the dispatcher with an error frame.
func (h *Hub) Reject(s *Session, err error) {
	var coreErr *CoreError
	if !errors.As(err, &coreErr) {
		coreErr = ErrInvalidFrame
	}
	h.metrics.FrameRejected(coreErr.Code)
	h.replyError(s, coreErr)
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	return h.bcast.Count()
}

// Shutdown terminates every connected session so their transports wind down.
func (h *Hub) Shutdown() {
	for _, s := range h.bcast.Sessions() {
		s.Close()
	}
}

func (h *Hub) replyError(s *Session, err *CoreError) {
	h.bcast.ToOne(s, proto.NewError(err.Code, err.Message))
}

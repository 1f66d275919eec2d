package core

import (
	"errors"
	"strings"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// Dispatch applies one decoded client frame to the session.
//
// Frames that require a joined room (message, media, typing) are ignored while
// the session is unjoined. Client mistakes are answered with an error frame to
// the sender only.
func (h *Hub) Dispatch(s *Session, in proto.Inbound) {
	switch frame := in.(type) {
	case proto.Join:
		h.handleJoin(s, frame)
	case proto.Chat:
		h.handleChat(s, frame)
	case proto.Media:
		h.handleMedia(s, frame)
	case proto.CreateRoom:
		h.handleCreateRoom(s, frame)
	case proto.Typing:
		h.handleTyping(s, frame)
	case proto.Unknown:
		h.log.Debug().Str("session_id", s.ID).Str("type", frame.Type).Msg("ignoring unknown frame type")
	default:
		h.log.Warn().Str("session_id", s.ID).Msgf("unhandled inbound frame %T", in)
	}
}

func (h *Hub) handleJoin(s *Session, frame proto.Join) {
	h.rooms.leave(s)

	name := strings.TrimSpace(frame.Username)
	if name == "" {
		name = AnonymousName
	}
	roomName := strings.TrimSpace(frame.Room)
	if roomName == "" {
		roomName = DefaultRoom
	}

	s.setName(name)
	h.rooms.join(s, roomName)
	h.log.Info().Str("session_id", s.ID).Str("user", name).Str("room", roomName).Msg("user joined room")
}

func (h *Hub) handleChat(s *Session, frame proto.Chat) {
	room, ok := h.currentRoom(s)
	if !ok {
		return
	}
	msg, err := NewTextMessage(room.Name(), s.Name(), frame.Message, h.now())
	if err != nil {
		return
	}
	room.appendAndBroadcast(msg, h.bcast)
	h.metrics.MessageRelayed(MessageText.String())
}

func (h *Hub) handleMedia(s *Session, frame proto.Media) {
	room, ok := h.currentRoom(s)
	if !ok {
		return
	}
	kind, ok := ParseMediaKind(frame.Kind)
	if !ok {
		h.metrics.FrameRejected(ErrCodeInvalidMedia)
		h.replyError(s, ErrInvalidMedia)
		return
	}
	msg, err := NewMediaMessage(room.Name(), s.Name(), Media{
		Kind:     kind,
		Payload:  frame.Data(),
		FileName: frame.FileName,
	}, h.now())
	if err != nil {
		h.metrics.FrameRejected(ErrCodeInvalidMedia)
		h.replyError(s, ErrInvalidMedia)
		return
	}
	room.appendAndBroadcast(msg, h.bcast)
	h.metrics.MessageRelayed(string(kind))
}

func (h *Hub) handleCreateRoom(s *Session, frame proto.CreateRoom) {
	room, err := h.rooms.Create(frame.Room)
	if err != nil {
		var coreErr *CoreError
		if errors.As(err, &coreErr) {
			h.metrics.FrameRejected(coreErr.Code)
			h.replyError(s, coreErr)
		}
		return
	}
	h.log.Info().Str("session_id", s.ID).Str("room", room.Name()).Msg("room created")
}

func (h *Hub) handleTyping(s *Session, frame proto.Typing) {
	room, ok := h.currentRoom(s)
	if !ok || !room.Has(s) {
		return
	}
	// Only this session's read loop moves it between rooms, so membership
	// holds until the relay completes.
	h.bcast.ToRoom(room, frame.Raw)
}

func (h *Hub) currentRoom(s *Session) (*Room, bool) {
	name := s.Room()
	if name == "" {
		return nil, false
	}
	return h.rooms.Get(name)
}

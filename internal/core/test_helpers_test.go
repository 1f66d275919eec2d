package core

import (
	"encoding/json"
	"testing"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// frame is a loose decoding of any outbound frame.
type frame struct {
	Type      string              `json:"type"`
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Room      string              `json:"room"`
	Username  string              `json:"username"`
	FileData  string              `json:"fileData"`
	FileName  string              `json:"fileName"`
	Timestamp int64               `json:"timestamp"`
	Users     []string            `json:"users"`
	Rooms     []proto.RoomSummary `json:"rooms"`
	Messages  []json.RawMessage   `json:"messages"`
	Raw       []byte              `json:"-"`
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(DefaultMaxHistory, nil, nil)
}

// connect registers a fresh session and discards the initial room list.
func connect(t *testing.T, hub *Hub, id string) *Session {
	t.Helper()
	s := NewSession(id, 512)
	hub.Connect(s)
	mustFrame(t, s, proto.TypeRoomList)
	return s
}

func join(t *testing.T, hub *Hub, s *Session, user, room string) {
	t.Helper()
	hub.Dispatch(s, proto.Join{Username: user, Room: room})
}

// nextFrame pops the next queued frame. Dispatch is synchronous, so anything
// the hub sent is already in the outbox.
func nextFrame(t *testing.T, s *Session) (frame, bool) {
	t.Helper()
	select {
	case raw := <-s.Outbox():
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("decode outbound frame %q: %v", raw, err)
		}
		f.Raw = raw
		return f, true
	default:
		return frame{}, false
	}
}

// mustFrame skips frames until one of the given type is found.
func mustFrame(t *testing.T, s *Session, typ string) frame {
	t.Helper()
	for {
		f, ok := nextFrame(t, s)
		if !ok {
			t.Fatalf("session %s: expected %q frame not received", s.ID, typ)
		}
		if f.Type == typ {
			return f
		}
	}
}

// drain discards every queued frame and returns them.
func drain(t *testing.T, s *Session) []frame {
	t.Helper()
	var out []frame
	for {
		f, ok := nextFrame(t, s)
		if !ok {
			return out
		}
		out = append(out, f)
	}
}

func expectNoFrames(t *testing.T, s *Session) {
	t.Helper()
	if f, ok := nextFrame(t, s); ok {
		t.Fatalf("session %s: unexpected frame %s", s.ID, f.Raw)
	}
}

func roomNames(rooms []proto.RoomSummary) map[string]int {
	out := make(map[string]int, len(rooms))
	for _, r := range rooms {
		out[r.Name] = r.UserCount
	}
	return out
}

package core

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// Room groups sessions subscribed to the same channel and keeps its recent history.
type Room struct {
	name      string
	permanent bool

	mu      sync.Mutex
	members []*Session
	history *history
}

// NewRoom constructs a room with no members.
func NewRoom(name string, maxHistory int, permanent bool) *Room {
	return &Room{
		name:      name,
		permanent: permanent,
		history:   newHistory(maxHistory),
	}
}

// Name returns the room key.
func (r *Room) Name() string {
	return r.name
}

// MemberCount returns the number of joined sessions.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Usernames returns member display names in join order.
func (r *Room) Usernames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usernamesLocked()
}

// History returns the stored messages oldest first.
func (r *Room) History() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.snapshot()
}

// Has reports whether the session is a member.
func (r *Room) Has(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexLocked(s) >= 0
}

func (r *Room) usernamesLocked() []string {
	names := make([]string, 0, len(r.members))
	for _, m := range r.members {
		names = append(names, m.Name())
	}
	return names
}

func (r *Room) indexLocked(s *Session) int {
	return slices.Index(r.members, s)
}

// join adds the session, announces it to the room and replays history to the joiner.
// Returns false if the session was already a member.
func (r *Room) join(s *Session, b *Broadcaster, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(s) >= 0 {
		return false
	}
	r.members = append(r.members, s)

	notice := NewNotification(r.name, fmt.Sprintf("%s has joined the room", s.Name()), now)
	b.toMembers(r.members, notice.Frame())
	b.toMembers(r.members, proto.NewUserList(r.usernamesLocked()))

	stored := r.history.snapshot()
	replay := make([]any, 0, len(stored))
	for _, m := range stored {
		replay = append(replay, m.Frame())
	}
	b.ToOne(s, proto.NewHistory(r.name, replay))
	return true
}

// leave removes the session and announces it to the remaining members.
// Returns the remaining member count and whether the session was a member.
func (r *Room) leave(s *Session, b *Broadcaster, now time.Time) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(s)
	if idx < 0 {
		return len(r.members), false
	}
	r.members = slices.Delete(r.members, idx, idx+1)

	notice := NewNotification(r.name, fmt.Sprintf("%s has left the room", s.Name()), now)
	b.toMembers(r.members, notice.Frame())
	b.toMembers(r.members, proto.NewUserList(r.usernamesLocked()))
	return len(r.members), true
}

// appendAndBroadcast stores a text or media message and fans it out.
func (r *Room) appendAndBroadcast(m Message, b *Broadcaster) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history.push(m)
	b.toMembers(r.members, m.Frame())
}

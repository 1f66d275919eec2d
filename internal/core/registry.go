package core

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/metrics"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// DefaultRoom is joined when a join request names no room.
const DefaultRoom = "general"

// DefaultRooms exist from startup and are never removed.
var DefaultRooms = []string{"general", "random", "help"}

// RoomSummary is a point-in-time view of one room.
type RoomSummary struct {
	Name      string
	UserCount int
}

// Registry owns every Room, keyed by name. Membership changes go through the
// registry so that a room is never removed while a join into it is in flight.
type Registry struct {
	bcast      *Broadcaster
	metrics    *metrics.Recorder
	maxHistory int
	now        func() time.Time

	mu    sync.Mutex
	rooms map[string]*Room
	order []string
}

// NewRegistry creates a registry seeded with the default rooms.
func NewRegistry(maxHistory int, b *Broadcaster, rec *metrics.Recorder) *Registry {
	g := &Registry{
		bcast:      b,
		metrics:    rec,
		maxHistory: maxHistory,
		now:        time.Now,
		rooms:      make(map[string]*Room),
	}
	for _, name := range DefaultRooms {
		g.insertLocked(NewRoom(name, maxHistory, true))
	}
	return g
}

// Get returns the named room.
func (g *Registry) Get(name string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[name]
	return r, ok
}

// Len returns the number of rooms.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Ensure returns the named room, creating it when missing. Creation is
// announced to every connected session.
func (g *Registry) Ensure(name string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, created := g.ensureLocked(name)
	if created {
		g.announceLocked()
	}
	return r, created
}

// Create adds a new empty room on explicit request. The name is trimmed.
// On success the room list and a global notice go out to every session.
func (g *Registry) Create(name string) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyRoomName
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.rooms[name]; exists {
		return nil, ErrRoomExists
	}
	r := NewRoom(name, g.maxHistory, false)
	g.insertLocked(r)
	g.announceLocked()
	g.bcast.ToAll(proto.NewNotification(fmt.Sprintf("New room \"%s\" created", name), ""))
	return r, nil
}

// Remove deletes the named room unless it is a default room.
func (g *Registry) Remove(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.removeLocked(name) {
		return false
	}
	g.announceLocked()
	return true
}

// Summaries lists rooms with their member counts in creation order.
func (g *Registry) Summaries() []RoomSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.summariesLocked()
}

// connect registers a session and sends it the current room list, atomically
// with respect to room creation and removal.
func (g *Registry) connect(s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bcast.register(s)
	g.bcast.ToOne(s, roomListFrame(g.summariesLocked()))
}

// join moves an unjoined session into the named room, creating it if needed.
func (g *Registry) join(s *Session, name string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, created := g.ensureLocked(name)
	s.setRoom(r.name)
	r.join(s, g.bcast, g.now())
	if created {
		g.announceLocked()
	}
	return r
}

// leave takes the session out of its current room. An emptied non-default
// room is removed. Returns false if the session was not joined.
func (g *Registry) leave(s *Session) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := s.Room()
	if name == "" {
		return false
	}
	s.setRoom("")

	r, ok := g.rooms[name]
	if !ok {
		return false
	}
	remaining, wasMember := r.leave(s, g.bcast, g.now())
	if !wasMember {
		return false
	}
	if remaining == 0 && g.removeLocked(name) {
		g.announceLocked()
	}
	return true
}

func (g *Registry) ensureLocked(name string) (*Room, bool) {
	if r, ok := g.rooms[name]; ok {
		return r, false
	}
	r := NewRoom(name, g.maxHistory, false)
	g.insertLocked(r)
	return r, true
}

func (g *Registry) insertLocked(r *Room) {
	g.rooms[r.name] = r
	g.order = append(g.order, r.name)
	g.metrics.SetRooms(len(g.rooms))
}

func (g *Registry) removeLocked(name string) bool {
	r, ok := g.rooms[name]
	if !ok || r.permanent {
		return false
	}
	delete(g.rooms, name)
	if idx := slices.Index(g.order, name); idx >= 0 {
		g.order = slices.Delete(g.order, idx, idx+1)
	}
	g.metrics.SetRooms(len(g.rooms))
	return true
}

func (g *Registry) summariesLocked() []RoomSummary {
	out := make([]RoomSummary, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, RoomSummary{Name: name, UserCount: g.rooms[name].MemberCount()})
	}
	return out
}

func (g *Registry) announceLocked() {
	g.bcast.ToAll(roomListFrame(g.summariesLocked()))
}

func roomListFrame(summaries []RoomSummary) proto.RoomList {
	rooms := make([]proto.RoomSummary, 0, len(summaries))
	for _, s := range summaries {
		rooms = append(rooms, proto.RoomSummary{Name: s.Name, UserCount: s.UserCount})
	}
	return proto.NewRoomList(rooms)
}

package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

func TestHubJoinBroadcastAndLeave(t *testing.T) {
	hub := newTestHub(t)

	alice := connect(t, hub, "a")
	bob := connect(t, hub, "b")

	join(t, hub, alice, "alice", "lobby")

	got := drain(t, alice)
	types := make([]string, 0, len(got))
	for _, f := range got {
		types = append(types, f.Type)
	}
	want := []string{proto.TypeNotification, proto.TypeUserList, proto.TypeHistory, proto.TypeRoomList}
	if !slices.Equal(types, want) {
		t.Fatalf("alice frames = %v, want %v", types, want)
	}
	if got[0].Message != "alice has joined the room" || got[0].Room != "lobby" {
		t.Fatalf("unexpected join notification: %s", got[0].Raw)
	}
	if !slices.Equal(got[1].Users, []string{"alice"}) {
		t.Fatalf("unexpected user list: %v", got[1].Users)
	}
	if got[2].Room != "lobby" || len(got[2].Messages) != 0 {
		t.Fatalf("expected empty lobby history, got %s", got[2].Raw)
	}

	// The room list reaches every socket, not only lobby members.
	list := mustFrame(t, bob, proto.TypeRoomList)
	if count, ok := roomNames(list.Rooms)["lobby"]; !ok || count != 1 {
		t.Fatalf("expected lobby with one user in room list, got %+v", list.Rooms)
	}
	expectNoFrames(t, bob)

	join(t, hub, bob, "bob", "lobby")

	note := mustFrame(t, alice, proto.TypeNotification)
	if note.Message != "bob has joined the room" {
		t.Fatalf("unexpected notification: %q", note.Message)
	}
	users := mustFrame(t, alice, proto.TypeUserList)
	if !slices.Equal(users.Users, []string{"alice", "bob"}) {
		t.Fatalf("unexpected user list: %v", users.Users)
	}
	expectNoFrames(t, alice)

	users = mustFrame(t, bob, proto.TypeUserList)
	if !slices.Equal(users.Users, []string{"alice", "bob"}) {
		t.Fatalf("unexpected user list for bob: %v", users.Users)
	}
	mustFrame(t, bob, proto.TypeHistory)
	expectNoFrames(t, bob)

	hub.Dispatch(alice, proto.Chat{Message: "  hi  "})
	for _, s := range []*Session{alice, bob} {
		msg := mustFrame(t, s, proto.TypeMessage)
		if msg.Message != "hi" || msg.Username != "alice" || msg.Room != "lobby" || msg.Timestamp == 0 {
			t.Fatalf("unexpected message frame: %s", msg.Raw)
		}
	}

	hub.Disconnect(alice)
	if !alice.Closed() {
		t.Fatal("expected alice session to be closed")
	}
	left := mustFrame(t, bob, proto.TypeNotification)
	if left.Message != "alice has left the room" || left.Room != "lobby" {
		t.Fatalf("unexpected leave notification: %s", left.Raw)
	}
	users = mustFrame(t, bob, proto.TypeUserList)
	if !slices.Equal(users.Users, []string{"bob"}) {
		t.Fatalf("unexpected user list after leave: %v", users.Users)
	}

	hub.Disconnect(bob)
	if _, ok := hub.Registry().Get("lobby"); ok {
		t.Fatal("expected empty lobby to be removed")
	}
	if hub.SessionCount() != 0 {
		t.Fatalf("expected no sessions, got %d", hub.SessionCount())
	}
}

func TestHubBlankMessageIsDropped(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")
	bob := connect(t, hub, "b")
	join(t, hub, alice, "alice", "general")
	join(t, hub, bob, "bob", "general")
	drain(t, alice)
	drain(t, bob)

	hub.Dispatch(alice, proto.Chat{Message: "   "})
	hub.Dispatch(alice, proto.Chat{Message: ""})

	expectNoFrames(t, alice)
	expectNoFrames(t, bob)
	room, _ := hub.Registry().Get("general")
	if n := len(room.History()); n != 0 {
		t.Fatalf("expected empty history, got %d entries", n)
	}
}

func TestHubSendWithoutJoinIsIgnored(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")

	hub.Dispatch(alice, proto.Chat{Message: "hi"})
	hub.Dispatch(alice, proto.Media{Kind: proto.TypeImage})
	hub.Dispatch(alice, proto.Typing{Raw: json.RawMessage(`{"type":"typing"}`)})

	expectNoFrames(t, alice)
	for _, name := range DefaultRooms {
		room, _ := hub.Registry().Get(name)
		if len(room.History()) != 0 {
			t.Fatalf("room %s has unexpected history", name)
		}
	}
}

func TestHubHistoryReplayGoesToJoinerOnly(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")
	join(t, hub, alice, "alice", "random")

	total := DefaultMaxHistory + 50
	for i := range total {
		hub.Dispatch(alice, proto.Chat{Message: fmt.Sprintf("m%d", i)})
	}
	drain(t, alice)

	bob := connect(t, hub, "b")
	join(t, hub, bob, "bob", "random")

	hist := mustFrame(t, bob, proto.TypeHistory)
	if len(hist.Messages) != DefaultMaxHistory {
		t.Fatalf("expected %d history entries, got %d", DefaultMaxHistory, len(hist.Messages))
	}
	var first, last proto.ChatMessage
	if err := json.Unmarshal(hist.Messages[0], &first); err != nil {
		t.Fatalf("decode first history entry: %v", err)
	}
	if err := json.Unmarshal(hist.Messages[len(hist.Messages)-1], &last); err != nil {
		t.Fatalf("decode last history entry: %v", err)
	}
	if first.Message != "m50" || last.Message != fmt.Sprintf("m%d", total-1) {
		t.Fatalf("unexpected history window: first=%q last=%q", first.Message, last.Message)
	}

	for _, f := range drain(t, alice) {
		if f.Type == proto.TypeHistory {
			t.Fatal("existing member must not receive the joiner's history")
		}
	}
}

func TestHubCreateRoom(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")
	bob := connect(t, hub, "b")

	hub.Dispatch(alice, proto.CreateRoom{Room: "   "})
	errFrame := mustFrame(t, alice, proto.TypeError)
	if errFrame.Message != "Room name cannot be empty" || errFrame.Code != ErrCodeEmptyRoomName {
		t.Fatalf("unexpected error frame: %s", errFrame.Raw)
	}

	hub.Dispatch(alice, proto.CreateRoom{Room: "help"})
	errFrame = mustFrame(t, alice, proto.TypeError)
	if errFrame.Message != "Room already exists" {
		t.Fatalf("unexpected error frame: %s", errFrame.Raw)
	}

	expectNoFrames(t, alice)
	expectNoFrames(t, bob)
	if n := hub.Registry().Len(); n != len(DefaultRooms) {
		t.Fatalf("registry mutated by failed create: %d rooms", n)
	}

	hub.Dispatch(alice, proto.CreateRoom{Room: "  news "})
	for _, s := range []*Session{alice, bob} {
		list := mustFrame(t, s, proto.TypeRoomList)
		if count, ok := roomNames(list.Rooms)["news"]; !ok || count != 0 {
			t.Fatalf("expected empty news room in list, got %+v", list.Rooms)
		}
		note := mustFrame(t, s, proto.TypeNotification)
		if note.Message != `New room "news" created` || note.Room != "" {
			t.Fatalf("unexpected global notification: %s", note.Raw)
		}
	}

	hub.Dispatch(bob, proto.CreateRoom{Room: "news"})
	if f := mustFrame(t, bob, proto.TypeError); f.Code != ErrCodeRoomExists {
		t.Fatalf("expected room_exists, got %s", f.Raw)
	}
}

func TestHubRemovesEmptyRoomsButKeepsDefaults(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")

	join(t, hub, alice, "alice", "general")
	join(t, hub, alice, "alice", "side")
	if alice.Room() != "side" {
		t.Fatalf("expected alice in side, got %q", alice.Room())
	}

	general, ok := hub.Registry().Get("general")
	if !ok {
		t.Fatal("default room general was removed")
	}
	if general.MemberCount() != 0 {
		t.Fatalf("expected general to be empty, got %d", general.MemberCount())
	}

	drain(t, alice)
	join(t, hub, alice, "alice", "help")
	if _, ok := hub.Registry().Get("side"); ok {
		t.Fatal("expected side to be removed after its last member left")
	}
	var sawList bool
	for _, f := range drain(t, alice) {
		if f.Type != proto.TypeRoomList {
			continue
		}
		sawList = true
		if _, ok := roomNames(f.Rooms)["side"]; ok {
			t.Fatalf("removed room still listed: %+v", f.Rooms)
		}
	}
	if !sawList {
		t.Fatal("expected a room list after removal")
	}

	hub.Disconnect(alice)
	names := roomNames(roomListFrame(hub.Registry().Summaries()).Rooms)
	for _, name := range DefaultRooms {
		if _, ok := names[name]; !ok {
			t.Fatalf("default room %s missing after everyone left", name)
		}
	}
}

func TestHubJoinDefaults(t *testing.T) {
	hub := newTestHub(t)
	anon := connect(t, hub, "x")

	hub.Dispatch(anon, proto.Join{Username: "   ", Room: "  "})

	if anon.Name() != AnonymousName || anon.Room() != DefaultRoom {
		t.Fatalf("expected Anonymous in general, got %q in %q", anon.Name(), anon.Room())
	}
	note := mustFrame(t, anon, proto.TypeNotification)
	if note.Message != "Anonymous has joined the room" {
		t.Fatalf("unexpected notification: %q", note.Message)
	}
}

func TestHubSwitchingRoomsLeavesPrevious(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")
	bob := connect(t, hub, "b")
	join(t, hub, alice, "alice", "general")
	join(t, hub, bob, "bob", "general")
	drain(t, alice)
	drain(t, bob)

	join(t, hub, alice, "alice", "random")

	note := mustFrame(t, bob, proto.TypeNotification)
	if note.Message != "alice has left the room" {
		t.Fatalf("unexpected notification: %q", note.Message)
	}
	users := mustFrame(t, bob, proto.TypeUserList)
	if !slices.Equal(users.Users, []string{"bob"}) {
		t.Fatalf("unexpected user list: %v", users.Users)
	}
	expectNoFrames(t, bob)

	general, _ := hub.Registry().Get("general")
	random, _ := hub.Registry().Get("random")
	if general.Has(alice) || !random.Has(alice) {
		t.Fatal("alice must be a member of exactly the room she joined last")
	}
}

func TestHubMedia(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")
	bob := connect(t, hub, "b")
	join(t, hub, alice, "alice", "general")
	join(t, hub, bob, "bob", "general")
	drain(t, alice)
	drain(t, bob)

	hub.Dispatch(alice, proto.Media{Kind: proto.TypeImage, FileName: "cat.png"})
	errFrame := mustFrame(t, alice, proto.TypeError)
	if errFrame.Message != "Invalid file data" {
		t.Fatalf("unexpected error: %s", errFrame.Raw)
	}
	expectNoFrames(t, bob)

	hub.Dispatch(alice, proto.Media{Kind: proto.TypeAudio, FileData: "data:audio/ogg;base64,AAAA"})
	mustFrame(t, alice, proto.TypeError)
	expectNoFrames(t, bob)

	hub.Dispatch(alice, proto.Media{Kind: "gif", Payload: "AAAA", FileName: "cat.gif"})
	if f := mustFrame(t, alice, proto.TypeError); f.Code != ErrCodeInvalidMedia {
		t.Fatalf("unexpected error for unknown media kind: %s", f.Raw)
	}
	expectNoFrames(t, bob)

	hub.Dispatch(alice, proto.Media{Kind: proto.TypeVideo, Payload: "AAAA", FileName: "clip.mp4"})
	for _, s := range []*Session{alice, bob} {
		f := mustFrame(t, s, proto.TypeVideo)
		if f.FileData != "AAAA" || f.FileName != "clip.mp4" || f.Username != "alice" || f.Room != "general" {
			t.Fatalf("unexpected media frame: %s", f.Raw)
		}
	}

	room, _ := hub.Registry().Get("general")
	hist := room.History()
	if len(hist) != 1 || hist[0].Kind != MessageMedia || hist[0].Media.Kind != MediaVideo {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestHubTypingIsRelayedNotStored(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")
	bob := connect(t, hub, "b")
	join(t, hub, alice, "alice", "help")
	join(t, hub, bob, "bob", "help")
	drain(t, alice)
	drain(t, bob)

	raw := json.RawMessage(`{"type":"typing","username":"alice","isTyping":true}`)
	hub.Dispatch(alice, proto.Typing{Raw: raw})

	for _, s := range []*Session{alice, bob} {
		f := mustFrame(t, s, proto.TypeTyping)
		if string(f.Raw) != string(raw) {
			t.Fatalf("typing payload altered: %s", f.Raw)
		}
	}
	room, _ := hub.Registry().Get("help")
	if len(room.History()) != 0 {
		t.Fatal("typing indicator must not be stored")
	}
}

func TestHubUnknownAndRejectedFrames(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")

	hub.Dispatch(alice, proto.Unknown{Type: "dance"})
	expectNoFrames(t, alice)

	hub.Reject(alice, ErrInvalidFrame)
	f := mustFrame(t, alice, proto.TypeError)
	if f.Message != "Invalid message format" || f.Code != ErrCodeInvalidFrame {
		t.Fatalf("unexpected error frame: %s", f.Raw)
	}

	hub.Reject(alice, fmt.Errorf("boom"))
	if f := mustFrame(t, alice, proto.TypeError); f.Code != ErrCodeInvalidFrame {
		t.Fatalf("non-domain errors map to invalid_frame, got %s", f.Raw)
	}
}

func TestHubSkipsClosedAndFullSessions(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "a")
	slow := NewSession("slow", 1)
	hub.Connect(slow) // room list fills the single slot
	join(t, hub, alice, "alice", "general")
	join(t, hub, slow, "slow", "general")
	drain(t, alice)

	for i := range 10 {
		hub.Dispatch(alice, proto.Chat{Message: fmt.Sprintf("m%d", i)})
	}
	if n := len(drain(t, alice)); n != 10 {
		t.Fatalf("expected 10 messages for alice, got %d", n)
	}

	slow.Close()
	hub.Dispatch(alice, proto.Chat{Message: "after close"})
	mustFrame(t, alice, proto.TypeMessage)
}

func TestHubShutdownClosesSessions(t *testing.T) {
	hub := newTestHub(t)
	sessions := []*Session{connect(t, hub, "a"), connect(t, hub, "b")}

	hub.Shutdown()

	for _, s := range sessions {
		select {
		case <-s.Done():
		default:
			t.Fatalf("session %s still open after shutdown", s.ID)
		}
	}
}

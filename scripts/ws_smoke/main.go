package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

type frame struct {
	Type     string          `json:"type"`
	Username string          `json:"username"`
	Message  string          `json:"message"`
	Room     string          `json:"room"`
	Users    []string        `json:"users"`
	Rooms    json.RawMessage `json:"rooms"`
	Messages json.RawMessage `json:"messages"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/", "WebSocket address")
	user := flag.String("user", "tester", "username to join with")
	room := flag.String("room", "general", "room name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v map[string]string) error {
		if err := wsjson.Write(ctx, conn, v); err != nil {
			return fmt.Errorf("send %s: %w", v["type"], err)
		}
		return nil
	}

	if err := send(map[string]string{"type": proto.TypeJoin, "username": *user, "room": *room}); err != nil {
		return err
	}
	if err := send(map[string]string{"type": proto.TypeMessage, "message": *text}); err != nil {
		return err
	}

	for {
		var in frame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch in.Type {
		case proto.TypeRoomList:
			fmt.Printf("rooms: %s\n", in.Rooms)
		case proto.TypeUserList:
			fmt.Printf("users: %v\n", in.Users)
		case proto.TypeHistory:
			fmt.Printf("history for %s: %s\n", in.Room, in.Messages)
		case proto.TypeNotification:
			fmt.Printf("notice: %s\n", in.Message)
		case proto.TypeError:
			return fmt.Errorf("server error: %s", in.Message)
		case proto.TypeMessage:
			fmt.Printf("message: room=%s user=%s text=%q\n", in.Room, in.Username, in.Message)
			if in.Username == *user && in.Message == *text {
				return nil
			}
		default:
			fmt.Printf("frame: type=%s\n", in.Type)
		}
	}
}

package proto

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame type discriminators carried in the "type" field.
const (
	TypeJoin       = "join"
	TypeMessage    = "message"
	TypeImage      = "image"
	TypeVideo      = "video"
	TypeAudio      = "audio"
	TypeCreateRoom = "create_room"
	TypeTyping     = "typing"

	TypeRoomList     = "room_list"
	TypeUserList     = "user_list"
	TypeNotification = "notification"
	TypeHistory      = "history"
	TypeError        = "error"
)

// ErrMalformed is returned by DecodeInbound for frames that are not valid JSON
// objects or whose fields have the wrong shape.
var ErrMalformed = errors.New("malformed frame")

// Inbound is a decoded client frame. The set of implementations is closed:
// Join, Chat, Media, CreateRoom, Typing and Unknown.
type Inbound interface {
	inbound()
}

// Join asks to enter a room under a display name.
type Join struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// Chat is a plain text message for the current room.
type Chat struct {
	Message string `json:"message"`
}

// Media carries an opaque image, video or audio payload.
type Media struct {
	Kind     string `json:"type"`
	FileData string `json:"fileData"`
	Payload  string `json:"payload"`
	FileName string `json:"fileName"`
}

// Data returns the encoded payload, accepting either field name.
func (m Media) Data() string {
	if m.FileData != "" {
		return m.FileData
	}
	return m.Payload
}

// CreateRoom asks for a new, empty room.
type CreateRoom struct {
	Room string `json:"room"`
}

// Typing is relayed to the room verbatim.
type Typing struct {
	Raw json.RawMessage
}

// Unknown is any well-formed frame with an unrecognized type.
type Unknown struct {
	Type string
}

func (Join) inbound()       {}
func (Chat) inbound()       {}
func (Media) inbound()      {}
func (CreateRoom) inbound() {}
func (Typing) inbound()     {}
func (Unknown) inbound()    {}

// DecodeInbound parses one client frame into its typed variant.
func DecodeInbound(data []byte) (Inbound, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch envelope.Type {
	case TypeJoin:
		var join Join
		return decodeInto(data, &join, func() Inbound { return join })
	case TypeMessage:
		var chat Chat
		return decodeInto(data, &chat, func() Inbound { return chat })
	case TypeImage, TypeVideo, TypeAudio:
		var media Media
		return decodeInto(data, &media, func() Inbound { return media })
	case TypeCreateRoom:
		var create CreateRoom
		return decodeInto(data, &create, func() Inbound { return create })
	case TypeTyping:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return Typing{Raw: raw}, nil
	default:
		return Unknown{Type: envelope.Type}, nil
	}
}

func decodeInto(data []byte, dst any, result func() Inbound) (Inbound, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return result(), nil
}

// RoomSummary is one entry of a room_list frame.
type RoomSummary struct {
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
}

// RoomList announces the rooms that currently exist.
type RoomList struct {
	Type  string        `json:"type"`
	Rooms []RoomSummary `json:"rooms"`
}

// UserList lists display names of the members of a room.
type UserList struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// Notification is a system generated text line.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Room    string `json:"room,omitempty"`
}

// ChatMessage is a text message as delivered to room members.
type ChatMessage struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Room      string `json:"room"`
	Timestamp int64  `json:"timestamp"`
}

// MediaMessage is a media message as delivered to room members.
type MediaMessage struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	FileData  string `json:"fileData"`
	FileName  string `json:"fileName"`
	Room      string `json:"room"`
	Timestamp int64  `json:"timestamp"`
}

// History replays stored messages to a joining member.
type History struct {
	Type     string `json:"type"`
	Room     string `json:"room"`
	Messages []any  `json:"messages"`
}

// Error describes a protocol-level error sent to a single connection.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NewRoomList builds a room_list frame.
func NewRoomList(rooms []RoomSummary) RoomList {
	if rooms == nil {
		rooms = []RoomSummary{}
	}
	return RoomList{Type: TypeRoomList, Rooms: rooms}
}

// NewUserList builds a user_list frame.
func NewUserList(users []string) UserList {
	if users == nil {
		users = []string{}
	}
	return UserList{Type: TypeUserList, Users: users}
}

// NewNotification builds a notification frame; room may be empty for global notices.
func NewNotification(text, room string) Notification {
	return Notification{Type: TypeNotification, Message: text, Room: room}
}

// NewHistory builds a history frame.
func NewHistory(room string, messages []any) History {
	if messages == nil {
		messages = []any{}
	}
	return History{Type: TypeHistory, Room: room, Messages: messages}
}

// NewError builds an error frame.
func NewError(code, msg string) Error {
	return Error{Type: TypeError, Code: code, Message: msg}
}

// Encode serializes an outbound frame.
func Encode(frame any) ([]byte, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

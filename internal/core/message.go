package core

import (
	"strings"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// MessageKind tags the variant held by a Message.
type MessageKind int

const (
	// MessageText is a user text message.
	MessageText MessageKind = iota
	// MessageMedia is an opaque image, video or audio payload.
	MessageMedia
	// MessageNotification is a system notice. Never stored in history.
	MessageNotification
)

func (k MessageKind) String() string {
	switch k {
	case MessageText:
		return "text"
	case MessageMedia:
		return "media"
	case MessageNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// MediaKind is the media flavour, matching the wire frame type.
type MediaKind string

const (
	MediaImage MediaKind = proto.TypeImage
	MediaVideo MediaKind = proto.TypeVideo
	MediaAudio MediaKind = proto.TypeAudio
)

// ParseMediaKind maps a frame type to a MediaKind.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case MediaImage, MediaVideo, MediaAudio:
		return MediaKind(s), true
	default:
		return "", false
	}
}

// Media is the payload of a media message.
type Media struct {
	Kind     MediaKind
	Payload  string
	FileName string
}

// Message is the domain model for a chat message. Exactly one variant is set:
// Body for text and notification, Media for media.
type Message struct {
	Kind      MessageKind
	Room      string
	Author    string
	Body      string
	Media     *Media
	CreatedAt time.Time
}

// NewTextMessage builds a text message from raw user input.
func NewTextMessage(room, author, text string, at time.Time) (Message, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return Message{}, ErrEmptyMessage
	}
	return Message{
		Kind:      MessageText,
		Room:      room,
		Author:    author,
		Body:      body,
		CreatedAt: at,
	}, nil
}

// NewMediaMessage builds a media message. Payload and file name must be non-empty.
func NewMediaMessage(room, author string, media Media, at time.Time) (Message, error) {
	if _, ok := ParseMediaKind(string(media.Kind)); !ok {
		return Message{}, ErrInvalidMedia
	}
	if media.Payload == "" || media.FileName == "" {
		return Message{}, ErrInvalidMedia
	}
	return Message{
		Kind:      MessageMedia,
		Room:      room,
		Author:    author,
		Media:     &media,
		CreatedAt: at,
	}, nil
}

// NewNotification builds a system notice for a room.
func NewNotification(room, text string, at time.Time) Message {
	return Message{
		Kind:      MessageNotification,
		Room:      room,
		Body:      text,
		CreatedAt: at,
	}
}

// Frame converts the message into its outbound wire form.
func (m Message) Frame() any {
	switch m.Kind {
	case MessageText:
		return proto.ChatMessage{
			Type:      proto.TypeMessage,
			Username:  m.Author,
			Message:   m.Body,
			Room:      m.Room,
			Timestamp: m.CreatedAt.UnixMilli(),
		}
	case MessageMedia:
		return proto.MediaMessage{
			Type:      string(m.Media.Kind),
			Username:  m.Author,
			FileData:  m.Media.Payload,
			FileName:  m.Media.FileName,
			Room:      m.Room,
			Timestamp: m.CreatedAt.UnixMilli(),
		}
	default:
		return proto.NewNotification(m.Body, m.Room)
	}
}

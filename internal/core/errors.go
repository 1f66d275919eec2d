package core

// Error codes for domain errors.
const (
	ErrCodeEmptyRoomName = "empty_room_name"
	ErrCodeRoomExists    = "room_exists"
	ErrCodeInvalidMedia  = "invalid_media"
	ErrCodeEmptyMessage  = "empty_message"
	ErrCodeInvalidFrame  = "invalid_frame"
	ErrCodeRateLimited   = "rate_limited"
)

var (
	ErrEmptyRoomName = coreError(ErrCodeEmptyRoomName, "Room name cannot be empty")
	ErrRoomExists    = coreError(ErrCodeRoomExists, "Room already exists")
	ErrInvalidMedia  = coreError(ErrCodeInvalidMedia, "Invalid file data")
	ErrEmptyMessage  = coreError(ErrCodeEmptyMessage, "Message cannot be empty")
	ErrInvalidFrame  = coreError(ErrCodeInvalidFrame, "Invalid message format")
	ErrRateLimited   = coreError(ErrCodeRateLimited, "Rate limit exceeded")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

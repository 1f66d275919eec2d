package core

// DefaultMaxHistory bounds the number of messages kept per room.
const DefaultMaxHistory = 100

// history is a fixed-capacity FIFO ring. The oldest entry is overwritten once full.
type history struct {
	buf   []Message
	start int
	size  int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = DefaultMaxHistory
	}
	return &history{buf: make([]Message, capacity)}
}

func (h *history) push(m Message) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = m
		h.size++
		return
	}
	h.buf[h.start] = m
	h.start = (h.start + 1) % len(h.buf)
}

// snapshot returns the stored messages oldest first.
func (h *history) snapshot() []Message {
	out := make([]Message, h.size)
	for i := range h.size {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *history) len() int {
	return h.size
}

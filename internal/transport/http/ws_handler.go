package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

var errSessionClosed = errors.New("session closed by server")

// WSHandler upgrades HTTP connections and bridges them to a core.Session.
type WSHandler struct {
	hub    *core.Hub
	cfg    *config.Config
	log    *zerolog.Logger
	accept *websocket.AcceptOptions
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		cfg:    cfg,
		log:    logger,
		accept: acceptOptions(cfg.AllowedOrigins, logger),
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.log.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	conn.SetReadLimit(h.cfg.MaxPayloadBytes)

	session := core.NewSession(uuid.NewString(), h.cfg.SendBuffer)
	h.hub.Connect(session)
	defer h.hub.Disconnect(session)

	h.log.Info().Str("session_id", session.ID).Str("remote_addr", r.RemoteAddr).Msg("client connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case errors.Is(err, errSessionClosed):
		status = websocket.StatusGoingAway
		reason = "server shutting down"
	case err != nil && !errors.Is(err, context.Canceled):
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = "connection error"
			h.log.Warn().Err(err).Str("session_id", session.ID).Msg("ws connection closed with error")
		}
	}

	h.log.Info().Str("session_id", session.ID).Str("user", session.Name()).Msg("client disconnected")
	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	limiter := newRateLimiter(h.cfg.RateLimitPerMinute)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			h.log.Debug().Str("session_id", session.ID).Msg("inbound frame rate limited")
			h.hub.Reject(session, core.ErrRateLimited)
			continue
		}
		if typ != websocket.MessageText {
			h.hub.Reject(session, core.ErrInvalidFrame)
			continue
		}

		inbound, err := proto.DecodeInbound(data)
		if err != nil {
			h.log.Debug().Err(err).Str("session_id", session.ID).Msg("failed to decode inbound")
			h.hub.Reject(session, core.ErrInvalidFrame)
			continue
		}
		h.hub.Dispatch(session, inbound)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		select {
		case frame := <-session.Outbox():
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				h.log.Error().Err(err).Str("session_id", session.ID).Msg("write ws frame")
				return err
			}
		case <-session.Done():
			return errSessionClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

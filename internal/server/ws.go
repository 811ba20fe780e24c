package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/nongzhi-ai/nongzhi/internal/chat"
	"github.com/nongzhi-ai/nongzhi/internal/observe"
)

// wsWriteTimeout bounds a single event write so one stalled client cannot
// pin a turn forever.
const wsWriteTimeout = 10 * time.Second

// wsEvent is the JSON frame sent to WebSocket clients: the turn event kind
// plus its kind-specific payload.
type wsEvent struct {
	Kind chat.EventKind `json:"kind"`
	Data any            `json:"data"`
}

// handleChatWS serves the WebSocket chat transport. The client sends one
// chatRequest frame per turn; the server answers with a stream of wsEvent
// frames ending in "done" or "error", then waits for the next request on the
// same connection.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		observe.Logger(r.Context()).Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "server shutting down")

	log := observe.Logger(r.Context())
	ctx := r.Context()

	for {
		var req chatRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Debug("websocket read failed", "error", err)
			return
		}
		if msg := req.validate(); msg != "" {
			if err := s.writeWSEvent(ctx, conn, chat.Event{
				Kind: chat.EventError,
				Data: chat.ErrorPayload{Message: msg},
			}); err != nil {
				return
			}
			continue
		}

		sess := s.sessions.GetOrCreate(req.SessionID)
		sink := func(ev chat.Event) error {
			return s.writeWSEvent(ctx, conn, ev)
		}

		if _, err := s.orch.RunTurn(ctx, sess, req.Message, sink); err != nil {
			log.Warn("chat turn failed", "session_id", req.SessionID, "error", err)
			// Sink failures mean the connection is gone; anything else was
			// already reported as an error event.
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (s *Server) writeWSEvent(ctx context.Context, conn *websocket.Conn, ev chat.Event) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, wsEvent{Kind: ev.Kind, Data: ev.Data})
}

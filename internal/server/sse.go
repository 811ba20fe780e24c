package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nongzhi-ai/nongzhi/internal/chat"
	"github.com/nongzhi-ai/nongzhi/internal/observe"
)

// handleChat runs one chat turn and streams its events as Server-Sent Events.
// Each turn event becomes one SSE message with the event kind as the SSE
// event name and the JSON payload as its data line. The stream ends with a
// "done" event on success or an "error" event on failure; client disconnects
// abort the turn through the sink error path.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体解析失败")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	sess := s.sessions.GetOrCreate(req.SessionID)

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Tell nginx-style proxies not to buffer the stream.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	sink := func(ev chat.Event) error {
		data, err := json.Marshal(ev.Data)
		if err != nil {
			return fmt.Errorf("server: marshal %s event: %w", ev.Kind, err)
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
			return err
		}
		return rc.Flush()
	}

	if _, err := s.orch.RunTurn(r.Context(), sess, req.Message, sink); err != nil {
		// The orchestrator already emitted an error event where possible;
		// at this point the response status is committed.
		observe.Logger(r.Context()).Warn("chat turn failed",
			"session_id", req.SessionID, "error", err)
	}
}

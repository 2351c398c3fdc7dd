package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/leofalp/polyprompt/core/dispatch"
	"github.com/leofalp/polyprompt/providers/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Socket message types. The client sends one dispatch request, optionally
// followed by a cancel message; the server answers with started, one update
// per transition and a final done carrying every terminal snapshot.
const (
	messageStarted = "started"
	messageUpdate  = "update"
	messageDone    = "done"
	messageError   = "error"
	messageCancel  = "cancel"
)

type socketMessage struct {
	Type       string            `json:"type"`
	DispatchID string            `json:"dispatch_id,omitempty"`
	Target     *dispatch.Target  `json:"target,omitempty"`
	Targets    []dispatch.Target `json:"targets,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// socketWriter serializes writes; update callbacks arrive concurrently.
type socketWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *socketWriter) send(message socketMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(message)
}

func (s *Server) handleDispatchSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // the upgrader already replied
	}
	defer conn.Close()
	writer := &socketWriter{conn: conn}

	ctx := c.Request().Context()
	var body dispatchRequest
	if err := conn.ReadJSON(&body); err != nil {
		_ = writer.send(socketMessage{Type: messageError, Error: "invalid dispatch request: " + err.Error()})
		return nil
	}
	req, err := body.request()
	if err != nil {
		_ = writer.send(socketMessage{Type: messageError, Error: err.Error()})
		return nil
	}
	agents, err := s.agents(ctx, body)
	if err != nil {
		_ = writer.send(socketMessage{Type: messageError, Error: err.Error()})
		return nil
	}

	// Updates wait until started has been written.
	ready := make(chan struct{})
	handle := s.opts.Coordinator.Dispatch(ctx, agents, req, func(target dispatch.Target) {
		<-ready
		if err := writer.send(socketMessage{Type: messageUpdate, Target: &target}); err != nil {
			s.opts.Observer.Debug(ctx, "dropping socket update", observability.Error(err))
		}
	})
	_ = writer.send(socketMessage{Type: messageStarted, DispatchID: handle.ID})
	close(ready)

	// A cancel message or a closed socket cancels the dispatch.
	go func() {
		for {
			var message socketMessage
			if err := conn.ReadJSON(&message); err != nil {
				handle.Cancel()
				return
			}
			if message.Type == messageCancel {
				handle.Cancel()
			}
		}
	}()

	targets := handle.Wait()
	_ = writer.send(socketMessage{Type: messageDone, DispatchID: handle.ID, Targets: targets})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return nil
}

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/observability"
)

// SSE event names written by the stream route.
const (
	eventDelta  = "delta"
	eventTarget = "target"
)

type deltaEvent struct {
	Text      string `json:"text"`
	Reasoning bool   `json:"reasoning,omitempty"`
}

// handleAgentStream streams one stored agent's answer as SSE: a delta event
// per fragment, then a single target event with the terminal snapshot.
func (s *Server) handleAgentStream(c echo.Context) error {
	var body promptRequest
	if err := decodeRequestBody(c, &body); err != nil {
		return err
	}
	req, err := body.request()
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	agent, err := s.opts.Agents.AgentConfig(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	response := c.Response()
	header := response.Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set(echo.HeaderCacheControl, "no-cache")
	header.Set(echo.HeaderConnection, "keep-alive")
	response.WriteHeader(http.StatusOK)

	var writeErr error
	target := s.opts.Coordinator.StreamTarget(ctx, agent, req, func(delta ai.StreamDelta) {
		if delta.Terminal || writeErr != nil {
			return
		}
		writeErr = writeSSEEvent(response, eventDelta, deltaEvent{Text: delta.Text, Reasoning: delta.Reasoning})
		response.Flush()
	})
	if writeErr != nil {
		s.opts.Observer.Warn(ctx, "client went away during stream",
			observability.String(observability.AttrAgentID, agent.ID),
			observability.Error(writeErr),
		)
		return nil
	}
	if err := writeSSEEvent(response, eventTarget, target); err != nil {
		return nil
	}
	response.Flush()
	return nil
}

func writeSSEEvent(w io.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return fmt.Errorf("write SSE event name: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write SSE data: %w", err)
	}
	return nil
}

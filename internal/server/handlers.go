package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/core/cost"
	"github.com/leofalp/polyprompt/core/dispatch"
	"github.com/leofalp/polyprompt/core/overview"
	"github.com/leofalp/polyprompt/core/parse"
	"github.com/leofalp/polyprompt/core/store"
	"github.com/leofalp/polyprompt/providers/ai"
)

// promptRequest is the prompt part shared by every dispatching route.
type promptRequest struct {
	Prompt   string       `json:"prompt,omitempty"`
	System   string       `json:"system,omitempty"`
	Messages []ai.Message `json:"messages,omitempty"`
	Params   ai.Params    `json:"params"`
}

func (p promptRequest) request() (ai.Request, error) {
	req := ai.Request{System: p.System, Messages: p.Messages, Params: p.Params}
	if p.Prompt != "" {
		req.Messages = append(req.Messages, ai.Message{Role: ai.RoleUser, Content: p.Prompt})
	}
	if len(req.Turns()) == 0 {
		return ai.Request{}, badRequest("a prompt or at least one user message is required")
	}
	return req, nil
}

// dispatchRequest names stored agents by id and may add inline agents.
// Inline agents carry no credential; it comes from provider defaults or
// the environment.
type dispatchRequest struct {
	promptRequest
	Agents       []string             `json:"agents"`
	AgentConfigs []config.AgentConfig `json:"agent_configs,omitempty"`
}

func (s *Server) agents(ctx context.Context, body dispatchRequest) ([]config.AgentConfig, error) {
	agents := make([]config.AgentConfig, 0, len(body.Agents)+len(body.AgentConfigs))
	for _, id := range body.Agents {
		agent, err := s.opts.Agents.AgentConfig(ctx, id)
		if err != nil {
			return nil, toHTTPError(err)
		}
		agents = append(agents, agent)
	}
	agents = append(agents, body.AgentConfigs...)
	if len(agents) == 0 {
		return nil, badRequest("at least one agent is required")
	}
	return agents, nil
}

type dispatchResponse struct {
	DispatchID string             `json:"dispatch_id"`
	Targets    []targetView       `json:"targets"`
	Overview   *overview.Overview `json:"overview,omitempty"`
}

// targetView adds the decoded answer for JSON-mode dispatches.
type targetView struct {
	dispatch.Target
	JSON any `json:"json,omitempty"`
}

func viewTargets(targets []dispatch.Target, jsonMode bool) []targetView {
	views := make([]targetView, len(targets))
	for i, target := range targets {
		views[i] = targetView{Target: target}
		if jsonMode && target.Status == dispatch.StatusSuccess {
			if decoded, err := parse.ResultAs[any](target.Result); err == nil {
				views[i].JSON = decoded
			}
		}
	}
	return views
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type providerView struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Shape              string        `json:"shape"`
	Streaming          string        `json:"streaming"`
	DefaultModel       string        `json:"default_model"`
	Endpoints          []string      `json:"endpoints"`
	Supported          []ai.ParamKey `json:"supported"`
	CredentialOptional bool          `json:"credential_optional,omitempty"`
}

func (s *Server) handleProviders(c echo.Context) error {
	descriptors := s.opts.Registry.List()
	views := make([]providerView, 0, len(descriptors))
	for _, d := range descriptors {
		view := providerView{
			ID:                 d.ID,
			Name:               d.Name,
			Shape:              string(d.Shape),
			Streaming:          string(d.Streaming),
			DefaultModel:       d.DefaultModel,
			Supported:          d.SupportedKeys(),
			CredentialOptional: d.CredentialOptional,
		}
		for _, endpoint := range d.Endpoints {
			view.Endpoints = append(view.Endpoints, endpoint.Purpose)
		}
		views = append(views, view)
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) handlePricing(c echo.Context) error {
	if s.opts.Pricing == nil {
		return c.JSON(http.StatusOK, []cost.PricedModel{})
	}
	return c.JSON(http.StatusOK, s.opts.Pricing.Known())
}

func (s *Server) handleAgents(c echo.Context) error {
	lister, ok := s.opts.Agents.(AgentLister)
	if !ok {
		return requestError{Status: http.StatusNotImplemented, Message: "agent store cannot list agents", Type: "server_error"}
	}
	return c.JSON(http.StatusOK, lister.Agents())
}

// handleDispatch runs a dispatch and answers once every target is terminal.
func (s *Server) handleDispatch(c echo.Context) error {
	var body dispatchRequest
	if err := decodeRequestBody(c, &body); err != nil {
		return err
	}
	req, err := body.request()
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	agents, err := s.agents(ctx, body)
	if err != nil {
		return err
	}

	handle := s.opts.Coordinator.Dispatch(ctx, agents, req, nil)
	targets := handle.Wait()
	return c.JSON(http.StatusOK, dispatchResponse{
		DispatchID: handle.ID,
		Targets:    viewTargets(targets, req.Params.JSONMode != nil && *req.Params.JSONMode),
		Overview:   overview.FromTargets(handle.ID, targets),
	})
}

func (s *Server) handleDispatches(c echo.Context) error {
	if s.opts.History == nil {
		return requestError{Status: http.StatusNotFound, Message: "history is disabled", Type: "not_found_error"}
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	summaries, err := s.opts.History.Dispatches(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if summaries == nil {
		summaries = []store.DispatchSummary{}
	}
	return c.JSON(http.StatusOK, summaries)
}

func (s *Server) handleDispatchHistory(c echo.Context) error {
	if s.opts.History == nil {
		return requestError{Status: http.StatusNotFound, Message: "history is disabled", Type: "not_found_error"}
	}
	id := c.Param("id")
	targets, err := s.opts.History.Dispatch(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return requestError{Status: http.StatusNotFound, Message: "unknown dispatch " + id, Type: "not_found_error"}
	}
	return c.JSON(http.StatusOK, dispatchResponse{
		DispatchID: id,
		Targets:    viewTargets(targets, false),
		Overview:   overview.FromTargets(id, targets),
	})
}

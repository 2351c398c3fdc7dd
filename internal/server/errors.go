package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/providers/ai"
)

type requestError struct {
	Status  int
	Message string
	Type    string
}

func (e requestError) Error() string {
	return e.Message
}

func badRequest(format string, args ...any) requestError {
	return requestError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...), Type: "invalid_request_error"}
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func writeError(c echo.Context, status int, message, errType string) error {
	var payload errorBody
	payload.Error.Message = message
	payload.Error.Type = errType
	return c.JSON(status, payload)
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr.Message, reqErr.Type)
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = writeError(c, he.Code, fmt.Sprint(he.Message), "invalid_request_error")
		return
	}
	_ = writeError(c, http.StatusInternalServerError, "internal server error", "server_error")
}

// toHTTPError maps lookup and resolution failures to client errors.
func toHTTPError(err error) error {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	if errors.Is(err, config.ErrAgentNotFound) {
		return requestError{Status: http.StatusNotFound, Message: err.Error(), Type: "not_found_error"}
	}
	var aiErr *ai.Error
	if errors.As(err, &aiErr) && (aiErr.Kind == ai.KindUnknownProvider || aiErr.Kind == ai.KindMissingCredential || aiErr.Kind == ai.KindConfig) {
		return badRequest("%s", aiErr.Error())
	}
	return err
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest("invalid JSON payload: %v", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

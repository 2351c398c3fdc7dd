package codec

import (
	"errors"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/ai/anthropic"
	"github.com/leofalp/polyprompt/providers/ai/gemini"
	"github.com/leofalp/polyprompt/providers/ai/openai"
	"github.com/leofalp/polyprompt/providers/registry"
)

// Normalize turns a complete provider response into a Result. The status is
// always preserved in Result.HTTPStatus. A non-2xx status or an error object
// in the body yields an HTTP error carrying status and body; an unreadable
// body yields a parse error.
func Normalize(cfg config.EffectiveConfig, status int, body []byte) ai.Result {
	if status < 200 || status >= 300 {
		httpErr := ai.HTTPError(status, string(body))
		if message := providerMessage(cfg, body); message != "" {
			httpErr.Message = message
		}
		return ai.Result{HTTPStatus: status, Error: httpErr}
	}

	result, err := decodeBody(cfg, body)
	result.HTTPStatus = status
	if err != nil {
		normalized := ai.AsError(err)
		if normalized.Kind == ai.KindHTTP {
			normalized.StatusCode = status
			normalized.Body = utils.TruncateString(string(body), utils.DefaultMaxStringLength)
		}
		result.Error = normalized
	}
	return result
}

func decodeBody(cfg config.EffectiveConfig, body []byte) (ai.Result, error) {
	switch cfg.Shape {
	case registry.ShapeOpenAI:
		return openai.Normalize(body, cfg.Provider.ThinkTags)
	case registry.ShapeAnthropic:
		return anthropic.Normalize(body)
	case registry.ShapeGemini:
		return gemini.Normalize(body)
	}
	return ai.Result{}, ai.NewError(ai.KindParse, "unhandled response shape %q", cfg.Shape)
}

// providerMessage extracts the provider's own error message from an error
// body, if it has the family's error object.
func providerMessage(cfg config.EffectiveConfig, body []byte) string {
	_, err := decodeBody(cfg, body)
	var aiErr *ai.Error
	if errors.As(err, &aiErr) && aiErr.Kind == ai.KindHTTP {
		return aiErr.Message
	}
	return ""
}

// ErrorFromStatus classifies a *utils.StatusError returned when a stream
// request is refused before any event.
func ErrorFromStatus(cfg config.EffectiveConfig, statusErr *utils.StatusError) *ai.Error {
	httpErr := ai.HTTPError(statusErr.StatusCode, statusErr.Body)
	if message := providerMessage(cfg, []byte(statusErr.Body)); message != "" {
		httpErr.Message = message
	}
	return httpErr
}

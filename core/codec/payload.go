package codec

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/internal/utils"
	"github.com/leofalp/polyprompt/providers/ai"
	"github.com/leofalp/polyprompt/providers/ai/anthropic"
	"github.com/leofalp/polyprompt/providers/ai/gemini"
	"github.com/leofalp/polyprompt/providers/ai/openai"
	"github.com/leofalp/polyprompt/providers/registry"
)

// Payload is a ready-to-send provider request: encoded body plus the headers
// and query parameters the auth scheme requires.
type Payload struct {
	Method string      `json:"method"`
	URL    string      `json:"url"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"-"`

	auth registry.Auth
}

// HTTPRequest converts the payload for the utils send helpers.
func (p *Payload) HTTPRequest() utils.Request {
	return utils.Request{Method: p.Method, URL: p.URL, Header: p.Header, Body: p.Body}
}

// Redacted returns a copy safe to store or display: the credential is masked
// in headers and in the query string.
func (p *Payload) Redacted() *Payload {
	out := &Payload{Method: p.Method, URL: p.URL, Header: p.Header.Clone(), Body: p.Body, auth: p.auth}
	switch p.auth.Scheme {
	case registry.AuthBearer:
		if value := out.Header.Get("Authorization"); value != "" {
			out.Header.Set("Authorization", "Bearer "+utils.MaskSecret(strings.TrimPrefix(value, "Bearer ")))
		}
	case registry.AuthHeader:
		if value := out.Header.Get(p.auth.Name); value != "" {
			out.Header.Set(p.auth.Name, utils.MaskSecret(value))
		}
	case registry.AuthQuery:
		if parsed, err := url.Parse(p.URL); err == nil {
			query := parsed.Query()
			if value := query.Get(p.auth.Name); value != "" {
				query.Set(p.auth.Name, utils.MaskSecret(value))
				parsed.RawQuery = query.Encode()
				out.URL = parsed.String()
			}
		}
	}
	return out
}

// Translate builds the provider payload for req under cfg. Parameters are
// taken from cfg.Params and filtered to the keys the provider declares;
// unsupported keys are dropped without error.
func Translate(req ai.Request, cfg config.EffectiveConfig, stream bool) (*Payload, error) {
	params := cfg.Params.Only(cfg.Provider.Supported)

	var (
		body []byte
		err  error
	)
	switch cfg.Shape {
	case registry.ShapeOpenAI:
		body, err = openai.Translate(req, params, cfg.Model, stream)
	case registry.ShapeAnthropic:
		body, err = anthropic.Translate(req, params, cfg.Model, stream)
	case registry.ShapeGemini:
		body, err = gemini.Translate(req, params, cfg.Model, stream)
	default:
		return nil, fmt.Errorf("provider %q: unhandled request shape %q", cfg.Provider.ID, cfg.Shape)
	}
	if err != nil {
		return nil, fmt.Errorf("translating request for %q: %w", cfg.Provider.ID, err)
	}

	payload := &Payload{
		Method: http.MethodPost,
		URL:    cfg.URL(stream),
		Header: make(http.Header),
		Body:   body,
		auth:   cfg.Auth,
	}
	payload.Header.Set("Content-Type", "application/json")
	for name, value := range cfg.Provider.Headers {
		payload.Header.Set(name, value)
	}
	if err := applyAuth(payload, cfg.Auth, cfg.Credential); err != nil {
		return nil, err
	}
	return payload, nil
}

// applyAuth places the credential exactly once, where the scheme says. An
// empty credential (providers that need none) leaves the payload untouched.
func applyAuth(payload *Payload, auth registry.Auth, credential string) error {
	if credential == "" {
		return nil
	}
	switch auth.Scheme {
	case registry.AuthBearer:
		payload.Header.Set("Authorization", "Bearer "+credential)
	case registry.AuthHeader:
		payload.Header.Set(auth.Name, credential)
	case registry.AuthQuery:
		parsed, err := url.Parse(payload.URL)
		if err != nil {
			return fmt.Errorf("parsing endpoint URL: %w", err)
		}
		query := parsed.Query()
		query.Set(auth.Name, credential)
		parsed.RawQuery = query.Encode()
		payload.URL = parsed.String()
	default:
		return fmt.Errorf("unhandled auth scheme %q", auth.Scheme)
	}
	return nil
}

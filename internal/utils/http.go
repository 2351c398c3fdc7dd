package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leofalp/polyprompt/providers/observability"
)

// maxResponseBodySize caps how much of a response body is read (10 MB).
const maxResponseBodySize int64 = 10 * 1024 * 1024

// Request is a fully prepared provider call: the codec has already encoded
// the body and applied authentication.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// StatusError is returned by DoStream when the provider answers with a
// non-2xx status before any event was sent.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(e.Body, DefaultMaxStringLength))
}

func newHTTPRequest(ctx context.Context, request Request) (*http.Request, error) {
	method := request.Method
	if method == "" {
		method = http.MethodPost
	}
	httpRequest, err := http.NewRequestWithContext(ctx, method, request.URL, bytes.NewReader(request.Body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	for key, values := range request.Header {
		for _, value := range values {
			httpRequest.Header.Add(key, value)
		}
	}
	if httpRequest.Header.Get("Content-Type") == "" {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	return httpRequest, nil
}

// DoSync sends request and reads the whole response body. A non-2xx status is
// not an error here: the caller decides how to classify it from the returned
// status and body. err is non-nil only for transport failures.
func DoSync(ctx context.Context, client *http.Client, request Request) (status int, body []byte, err error) {
	span := observability.SpanFromContext(ctx)
	if client == nil {
		client = http.DefaultClient
	}

	httpRequest, err := newHTTPRequest(ctx, request)
	if err != nil {
		return 0, nil, err
	}
	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, httpRequest.Method),
			observability.String(observability.AttrHTTPURL, redactQuery(httpRequest)),
			observability.Int(observability.AttrHTTPRequestBodySize, len(request.Body)),
		)
	}

	start := time.Now()
	response, err := client.Do(httpRequest)
	elapsed := time.Since(start)
	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error", observability.Error(err), observability.Duration(observability.AttrHTTPDuration, elapsed))
		}
		return 0, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(ctx, response.Body)

	body, err = io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("error reading response body: %w", err)
	}
	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(body)),
			observability.Duration(observability.AttrHTTPDuration, elapsed),
		)
	}
	return response.StatusCode, body, nil
}

// DoStream sends request asking for an event stream and returns the open
// response. The caller must close the body. A non-2xx status is read, closed
// and returned as *StatusError.
func DoStream(ctx context.Context, client *http.Client, request Request) (*http.Response, error) {
	span := observability.SpanFromContext(ctx)
	if client == nil {
		client = http.DefaultClient
	}

	httpRequest, err := newHTTPRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	response, err := client.Do(httpRequest)
	elapsed := time.Since(start)
	if err != nil {
		if span != nil {
			span.AddEvent("http.stream_request.error", observability.Error(err), observability.Duration(observability.AttrHTTPDuration, elapsed))
		}
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(ctx, response.Body)
		body, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return nil, fmt.Errorf("non-2xx status %d (failed to read body: %w)", response.StatusCode, readErr)
		}
		return nil, &StatusError{StatusCode: response.StatusCode, Body: string(body)}
	}

	if span != nil {
		span.AddEvent("http.stream_response.started",
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Duration(observability.AttrHTTPDuration, elapsed),
		)
	}
	return response, nil
}

// CloseWithLog closes closer and logs a failure through the context observer.
func CloseWithLog(ctx context.Context, closer io.Closer) {
	if err := closer.Close(); err != nil {
		observability.LoggerFrom(ctx).Warn(ctx, "failed to close response body", observability.Error(err))
	}
}

// redactQuery returns the request URL without its query string, which may
// carry a credential.
func redactQuery(request *http.Request) string {
	clone := *request.URL
	clone.RawQuery = ""
	return clone.String()
}

package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxSSELineSize is the maximum size of a single SSE line (1 MB); the bufio
// default of 64 KiB is too small for long completions.
const maxSSELineSize = 1 * 1024 * 1024

// SSEEvent is one dispatched Server-Sent Event. Type is empty when the event
// had no "event:" field.
type SSEEvent struct {
	Type string
	Data string
}

// SSEScanner reads events from an SSE stream. Multi-line data fields are
// joined with newlines, comments and unknown fields are skipped. Protocol
// sentinels such as "[DONE]" are returned as ordinary data; interpreting
// them is the decoder's job.
type SSEScanner struct {
	scanner *bufio.Scanner
}

func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next event carrying data. It returns io.EOF when the input
// ends cleanly and a wrapped error when reading fails. A trailing event
// without its blank-line terminator is still returned.
func (s *SSEScanner) Next() (SSEEvent, error) {
	var event SSEEvent
	var data []string

	for s.scanner.Scan() {
		line := strings.TrimSuffix(s.scanner.Text(), "\r")

		if line == "" {
			if len(data) > 0 {
				event.Data = strings.Join(data, "\n")
				return event, nil
			}
			event = SSEEvent{}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event.Type = strings.TrimSpace(value)
		case "data":
			data = append(data, value)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return SSEEvent{}, fmt.Errorf("SSE scanner error: %w", err)
	}
	if len(data) > 0 {
		event.Data = strings.Join(data, "\n")
		return event, nil
	}
	return SSEEvent{}, io.EOF
}

package utils

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSSEScanner_EventsInOrder(t *testing.T) {
	input := "data: first\n\nevent: message_delta\ndata: second\n\n: keep-alive\n\ndata: [DONE]\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	want := []SSEEvent{
		{Data: "first"},
		{Type: "message_delta", Data: "second"},
		{Data: "[DONE]"},
	}
	for _, expected := range want {
		event, err := scanner.Next()
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if event != expected {
			t.Errorf("expected %+v, got %+v", expected, event)
		}
	}
	if _, err := scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// TestSSEScanner_MultiLineData verifies that consecutive data lines form one
// payload and that CRLF line endings are tolerated.
func TestSSEScanner_MultiLineData(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: line1\r\ndata:line2\r\n\r\n"))
	event, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if event.Data != "line1\nline2" {
		t.Errorf("unexpected payload %q", event.Data)
	}
}

// TestSSEScanner_EventTypeDoesNotLeak checks that an event type without data
// does not attach to the next event.
func TestSSEScanner_EventTypeDoesNotLeak(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("event: ping\n\ndata: x\n\n"))
	event, err := scanner.Next()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if event.Type != "" || event.Data != "x" {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestSSEScanner_TrailingEventWithoutBlankLine(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: tail"))
	event, err := scanner.Next()
	if err != nil || event.Data != "tail" {
		t.Fatalf("expected trailing event, got %+v, %v", event, err)
	}
	if _, err := scanner.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "data: partial\n\n"), nil
	}
	return 0, errors.New("connection reset")
}

func TestSSEScanner_ReadErrorIsNotEOF(t *testing.T) {
	scanner := NewSSEScanner(&failingReader{})
	if event, err := scanner.Next(); err != nil || event.Data != "partial" {
		t.Fatalf("expected first event, got %+v, %v", event, err)
	}
	_, err := scanner.Next()
	if err == nil || err == io.EOF {
		t.Fatalf("expected read error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error should wrap the cause, got %v", err)
	}
}

func TestSSEScanner_LineTooLong(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: " + strings.Repeat("x", maxSSELineSize+1) + "\n\n"))
	_, err := scanner.Next()
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Errorf("expected bufio.ErrTooLong, got %v", err)
	}
}

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aki/agentbox/internal/core/mailbox"
)

// ConsoleSink renders deliveries as styled blocks for a terminal
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink creates a console sink writing to w
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Deliver writes one message block
func (s *ConsoleSink) Deliver(_ context.Context, d mailbox.Delivery) error {
	rule := DimStyle.Render(strings.Repeat("─", 40))

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s %s %s\n", MailboxIcon, HeaderStyle.Render("message from"), SenderStyle.Render(d.Sender))
	fmt.Fprintf(&b, "   %s %s\n", DimStyle.Render("file:    "), d.Name)
	fmt.Fprintf(&b, "   %s %s\n", DimStyle.Render("received:"), d.ArrivedAt.Format(time.ANSIC))
	b.WriteString(rule + "\n")
	b.WriteString(d.Body)
	if !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(rule + "\n")

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, b.String())
	return err
}

// JSONSink writes one JSON object per delivery
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink creates a JSON-lines sink writing to w
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

// Deliver encodes d as a single line
func (s *JSONSink) Deliver(_ context.Context, d mailbox.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(d)
}

// NewSink returns the delivery sink for format
func NewSink(format OutputFormat, w io.Writer) (mailbox.Sink, error) {
	switch format {
	case FormatPretty:
		return NewConsoleSink(w), nil
	case FormatJSON:
		return NewJSONSink(w), nil
	case FormatPlain:
		return mailbox.NewWriterSink(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

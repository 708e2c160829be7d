package mailbox

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Sink consumes delivered messages
type Sink interface {
	Deliver(ctx context.Context, d Delivery) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, d Delivery) error

// Deliver implements Sink
func (f SinkFunc) Deliver(ctx context.Context, d Delivery) error {
	return f(ctx, d)
}

const rule = "----------------------------------------"

// WriterSink writes every delivery as a plain text block: a header with
// sender, file name and arrival time, the body, then a footer
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Deliver implements Sink
func (s *WriterSink) Deliver(_ context.Context, d Delivery) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n[message]%s\n", rule)
	fmt.Fprintf(&b, "  sender:   %s\n", d.Sender)
	fmt.Fprintf(&b, "  file:     %s\n", d.Name)
	fmt.Fprintf(&b, "  received: %s\n", d.ArrivedAt.Format(time.ANSIC))
	b.WriteString(rule + "\n")
	b.WriteString(d.Body)
	if !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(rule + "[end]\n")

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, b.String())
	return err
}

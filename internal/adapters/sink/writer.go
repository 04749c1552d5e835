package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.trai.ch/xs/internal/core/domain"
)

// WriterSink writes annotated modules to a writer, one after another.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Execute writes the annotated module followed by a newline.
func (s *WriterSink) Execute(_ context.Context, module domain.Module) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, module.Annotated()+"\n"); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExecution, err)
	}
	return nil
}

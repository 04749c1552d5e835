package ports

import (
	"context"

	"go.trai.ch/xs/internal/core/domain"
)

// ExecutionSink makes compiled code run as a module.
//
//go:generate mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks
type ExecutionSink interface {
	// Execute runs module and releases any transient resources afterwards.
	// Failures are reported as domain.ErrExecution and never retried.
	Execute(ctx context.Context, module domain.Module) error
}

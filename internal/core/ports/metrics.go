package ports

import (
	"time"

	"go.trai.ch/xs/internal/core/domain"
)

// LoadMetrics records loader activity.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type LoadMetrics interface {
	// ObserveState counts a state entered by the fetch orchestrator.
	ObserveState(state domain.LoadState)
	// ObserveLoad records a finished load. kind is "ok" or the error kind.
	ObserveLoad(origin domain.Origin, kind string, elapsed time.Duration)
	// ObservePersistFailure counts an absorbed cache write failure.
	ObservePersistFailure()
}

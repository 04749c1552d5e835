package ports

import (
	"context"

	"go.trai.ch/xs/internal/core/domain"
)

// SourceFetcher fetches raw source files.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type SourceFetcher interface {
	// Fetch performs the request and returns the response for any HTTP status.
	// An error is returned only when no response was received.
	Fetch(ctx context.Context, req domain.SourceRequest) (*domain.SourceResponse, error)
}

package ports

import (
	"context"
	"net/url"

	"go.trai.ch/xs/internal/core/domain"
)

//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks

// ArtifactResolver looks up prebuilt artifacts by fingerprint.
type ArtifactResolver interface {
	// Lookup returns the prebuilt code for fingerprint served by endpoint.
	// found is false when the artifact does not exist.
	Lookup(ctx context.Context, endpoint *url.URL, fingerprint string, reload bool) (code string, found bool, err error)
}

// Transformer compiles source code through the remote transform service.
type Transformer interface {
	// Transform posts req to endpoint and returns the compiled code.
	// A non-2xx status is reported as domain.ErrFetch, an in-body error as *domain.TransformError.
	Transform(ctx context.Context, endpoint *url.URL, req domain.TransformRequest) (string, error)
}
